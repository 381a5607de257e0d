package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BishoyAdelAziz/backend/internal/database"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

// ProjectRepository handles project persistence. A project row owns its
// installments and staged pending edit as JSONB columns, and carries an
// edit_version counter used for compare-and-swap writes on the
// edit-approval workflow.
type ProjectRepository struct{}

// NewProjectRepository creates a new instance of ProjectRepository.
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{}
}

const projectColumns = `id, name, description, client_id, budget, deposit, currency,
		exchange_rate, start_date, end_date, status, installments,
		completion_percentage, created_by, pending_edit, edit_requested_by,
		edit_status, edit_notes, edit_version, created_at, updated_at`

// Create inserts a new project. The caller populates ID, timestamps are
// database-generated and scanned back.
func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	installments, err := json.Marshal(p.Installments)
	if err != nil {
		return fmt.Errorf("failed to encode installments: %w", err)
	}

	query := `
		INSERT INTO projects (id, name, description, client_id, budget, deposit,
			currency, exchange_rate, start_date, end_date, status, installments,
			completion_percentage, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	err = database.DB.QueryRow(ctx, query,
		p.ID, p.Name, p.Description, p.ClientID, p.Budget, p.Deposit,
		p.Currency, p.ExchangeRate, p.StartDate, p.EndDate, p.Status,
		installments, p.CompletionPercentage, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// FindByID retrieves a project by id, including its embedded documents.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(database.DB.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List retrieves projects, optionally filtered by status and by a
// case-insensitive substring of the client's name or email.
func (r *ProjectRepository) List(ctx context.Context, status models.ProjectStatus, client string) ([]models.Project, error) {
	query := `
		SELECT p.id, p.name, p.description, p.client_id, p.budget, p.deposit,
			p.currency, p.exchange_rate, p.start_date, p.end_date, p.status,
			p.installments, p.completion_percentage, p.created_by,
			p.pending_edit, p.edit_requested_by, p.edit_status, p.edit_notes,
			p.edit_version, p.created_at, p.updated_at
		FROM projects p
		JOIN clients c ON p.client_id = c.id
		WHERE ($1 = '' OR p.status = $1)
		  AND ($2 = '' OR c.name ILIKE '%' || $2 || '%' OR c.email ILIKE '%' || $2 || '%')
		ORDER BY p.created_at DESC
	`

	rows, err := database.DB.Query(ctx, query, string(status), client)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// Update persists the mutable project fields. Used by the admin PATCH
// path; edit-workflow transitions go through UpdateEditStateCAS instead.
func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	installments, err := json.Marshal(p.Installments)
	if err != nil {
		return fmt.Errorf("failed to encode installments: %w", err)
	}

	query := `
		UPDATE projects
		SET name = $2, description = $3, client_id = $4, budget = $5,
			deposit = $6, currency = $7, exchange_rate = $8, start_date = $9,
			end_date = $10, status = $11, installments = $12,
			completion_percentage = $13, updated_at = now()
		WHERE id = $1
	`

	tag, err := database.DB.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.ClientID, p.Budget, p.Deposit,
		p.Currency, p.ExchangeRate, p.StartDate, p.EndDate, p.Status,
		installments, p.CompletionPercentage,
	)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateEditStateCAS persists an edit-workflow transition with a
// compare-and-swap on edit_version. The write covers every field a
// transition may touch (budget, installments, completion, staged edit and
// its bookkeeping). If the stored version no longer matches
// expectedVersion the write is refused and ErrVersionConflict is
// returned, so two racing transitions cannot both win.
func (r *ProjectRepository) UpdateEditStateCAS(ctx context.Context, p *models.Project, expectedVersion int64) error {
	installments, err := json.Marshal(p.Installments)
	if err != nil {
		return fmt.Errorf("failed to encode installments: %w", err)
	}

	var pendingEdit interface{}
	if p.PendingEdit != nil {
		data, err := json.Marshal(p.PendingEdit)
		if err != nil {
			return fmt.Errorf("failed to encode pending edit: %w", err)
		}
		pendingEdit = data
	}

	query := `
		UPDATE projects
		SET budget = $2, installments = $3, completion_percentage = $4,
			pending_edit = $5, edit_requested_by = $6, edit_status = $7,
			edit_notes = $8, edit_version = edit_version + 1, updated_at = now()
		WHERE id = $1 AND edit_version = $9
	`

	var editStatus interface{}
	if p.EditStatus != models.EditStatusNone {
		editStatus = string(p.EditStatus)
	}

	tag, err := database.DB.Exec(ctx, query,
		p.ID, p.Budget, installments, p.CompletionPercentage,
		pendingEdit, p.EditRequestedBy, editStatus, p.EditNotes,
		expectedVersion,
	)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}

	p.EditVersion = expectedVersion + 1
	return nil
}

// Delete removes a project permanently.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := database.DB.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanProject reads one project row, decoding the JSONB documents.
func scanProject(row pgx.Row) (*models.Project, error) {
	var (
		p               models.Project
		description     *string
		installmentsRaw []byte
		pendingEditRaw  []byte
		editStatus      *string
		editNotes       *string
		endDate         *time.Time
	)

	err := row.Scan(
		&p.ID, &p.Name, &description, &p.ClientID, &p.Budget, &p.Deposit,
		&p.Currency, &p.ExchangeRate, &p.StartDate, &endDate, &p.Status,
		&installmentsRaw, &p.CompletionPercentage, &p.CreatedBy,
		&pendingEditRaw, &p.EditRequestedBy, &editStatus, &editNotes,
		&p.EditVersion, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description != nil {
		p.Description = *description
	}
	p.EndDate = endDate
	if editStatus != nil {
		p.EditStatus = models.EditStatus(*editStatus)
	}
	if editNotes != nil {
		p.EditNotes = *editNotes
	}

	if len(installmentsRaw) > 0 {
		if err := json.Unmarshal(installmentsRaw, &p.Installments); err != nil {
			return nil, fmt.Errorf("failed to decode installments: %w", err)
		}
	}
	if p.Installments == nil {
		p.Installments = []models.Installment{}
	}

	if len(pendingEditRaw) > 0 {
		var pe models.PendingEdit
		if err := json.Unmarshal(pendingEditRaw, &pe); err != nil {
			return nil, fmt.Errorf("failed to decode pending edit: %w", err)
		}
		p.PendingEdit = &pe
	}

	return &p, nil
}
