package repository

import (
	"context"

	"github.com/BishoyAdelAziz/backend/internal/database"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

// UserRepository handles user account persistence: authentication lookups,
// OTP state, and the admin dashboard user management.
type UserRepository struct{}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = `id, name, email, password_hash, role, department,
		department_role_id, password_changed_at, active, is_verified,
		otp, otp_expires, created_at, updated_at`

// FindByEmail retrieves a user by email address (stored lowercase).
// Used during login and the OTP flows; returns the full record including
// the password hash.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, query, email)
}

// FindByID retrieves a user by id. Used by the authentication middleware
// on every protected request.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var (
		u          models.User
		department *string
	)

	err := database.DB.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &department,
		&u.DepartmentRoleID, &u.PasswordChangedAt, &u.Active, &u.IsVerified,
		&u.OTP, &u.OTPExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if department != nil {
		u.Department = models.Department(*department)
	}
	return &u, nil
}

// List retrieves users with optional role, department and name/email
// substring filters. Password hashes are not selected.
func (r *UserRepository) List(ctx context.Context, role models.Role, department models.Department, search string) ([]models.User, error) {
	query := `
		SELECT id, name, email, role, department, department_role_id,
			active, is_verified, created_at, updated_at
		FROM users
		WHERE ($1 = '' OR role = $1)
		  AND ($2 = '' OR department = $2)
		  AND ($3 = '' OR name ILIKE '%' || $3 || '%' OR email ILIKE '%' || $3 || '%')
		ORDER BY created_at DESC
	`

	rows, err := database.DB.Query(ctx, query, string(role), string(department), search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var (
			u          models.User
			department *string
		)
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.Role, &department, &u.DepartmentRoleID,
			&u.Active, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if department != nil {
			u.Department = models.Department(*department)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create inserts a new user. Password must be pre-hashed with bcrypt.
// Returns ErrDuplicate when the email is already registered.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, department,
			department_role_id, active, is_verified, otp, otp_expires)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	var department interface{}
	if u.Department != "" {
		department = string(u.Department)
	}

	err := database.DB.QueryRow(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, department,
		u.DepartmentRoleID, u.Active, u.IsVerified, u.OTP, u.OTPExpires,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// Update persists every mutable user field, including OTP and
// password-change state. Returns ErrDuplicate on an email collision.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, password_hash = $4, role = $5,
			department = $6, department_role_id = $7, password_changed_at = $8,
			active = $9, is_verified = $10, otp = $11, otp_expires = $12,
			updated_at = now()
		WHERE id = $1
	`

	var department interface{}
	if u.Department != "" {
		department = string(u.Department)
	}

	tag, err := database.DB.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, department,
		u.DepartmentRoleID, u.PasswordChangedAt, u.Active, u.IsVerified,
		u.OTP, u.OTPExpires,
	)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user permanently.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := database.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByEmail removes a user by email. Used by the admin seed CLI.
func (r *UserRepository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := database.DB.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	return err
}
