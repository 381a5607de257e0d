package repository

import (
	"context"

	"github.com/BishoyAdelAziz/backend/internal/database"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

// DepartmentRoleRepository handles the registry of role labels per
// department.
type DepartmentRoleRepository struct{}

// NewDepartmentRoleRepository creates a new instance of DepartmentRoleRepository.
func NewDepartmentRoleRepository() *DepartmentRoleRepository {
	return &DepartmentRoleRepository{}
}

// Create inserts a new department role.
func (r *DepartmentRoleRepository) Create(ctx context.Context, dr *models.DepartmentRole) error {
	query := `
		INSERT INTO department_roles (id, department, role, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := database.DB.QueryRow(ctx, query, dr.ID, dr.Department, dr.Role, dr.CreatedBy).
		Scan(&dr.CreatedAt)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// FindByID retrieves a department role by id.
func (r *DepartmentRoleRepository) FindByID(ctx context.Context, id string) (*models.DepartmentRole, error) {
	query := `
		SELECT id, department, role, created_by, created_at
		FROM department_roles
		WHERE id = $1
	`

	var dr models.DepartmentRole
	err := database.DB.QueryRow(ctx, query, id).Scan(
		&dr.ID, &dr.Department, &dr.Role, &dr.CreatedBy, &dr.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dr, nil
}

// ListByDepartment retrieves role labels alphabetically, for one
// department or for all when the filter is empty.
func (r *DepartmentRoleRepository) ListByDepartment(ctx context.Context, department models.Department) ([]models.DepartmentRole, error) {
	query := `
		SELECT id, department, role, created_by, created_at
		FROM department_roles
		WHERE ($1 = '' OR department = $1)
		ORDER BY department, role
	`

	rows, err := database.DB.Query(ctx, query, string(department))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.DepartmentRole
	for rows.Next() {
		var dr models.DepartmentRole
		if err := rows.Scan(&dr.ID, &dr.Department, &dr.Role, &dr.CreatedBy, &dr.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, dr)
	}
	return roles, rows.Err()
}

// Update persists the department and role label.
func (r *DepartmentRoleRepository) Update(ctx context.Context, dr *models.DepartmentRole) error {
	query := `UPDATE department_roles SET department = $2, role = $3 WHERE id = $1`

	tag, err := database.DB.Exec(ctx, query, dr.ID, dr.Department, dr.Role)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a department role permanently.
func (r *DepartmentRoleRepository) Delete(ctx context.Context, id string) error {
	tag, err := database.DB.Exec(ctx, `DELETE FROM department_roles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
