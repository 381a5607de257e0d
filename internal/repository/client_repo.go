package repository

import (
	"context"

	"github.com/BishoyAdelAziz/backend/internal/database"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

// ClientRepository handles client contact records. Plain CRUD, no
// lifecycle.
type ClientRepository struct{}

// NewClientRepository creates a new instance of ClientRepository.
func NewClientRepository() *ClientRepository {
	return &ClientRepository{}
}

const clientColumns = `id, name, email, phone, company_name, created_at, updated_at`

// List retrieves all clients, optionally filtered by a name/email/company
// substring, newest first.
func (r *ClientRepository) List(ctx context.Context, search string) ([]models.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%'
			OR email ILIKE '%' || $1 || '%'
			OR company_name ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
	`

	rows, err := database.DB.Query(ctx, query, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// FindByID retrieves a client by id.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	c, err := scanClient(database.DB.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new client.
func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	query := `
		INSERT INTO clients (id, name, email, phone, company_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := database.DB.QueryRow(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.CompanyName,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// Update persists all mutable client fields.
func (r *ClientRepository) Update(ctx context.Context, c *models.Client) error {
	query := `
		UPDATE clients
		SET name = $2, email = $3, phone = $4, company_name = $5, updated_at = now()
		WHERE id = $1
	`

	tag, err := database.DB.Exec(ctx, query, c.ID, c.Name, c.Email, c.Phone, c.CompanyName)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a client permanently.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	tag, err := database.DB.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (*models.Client, error) {
	var (
		c           models.Client
		phone       *string
		companyName *string
	)

	err := row.Scan(&c.ID, &c.Name, &c.Email, &phone, &companyName, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if phone != nil {
		c.Phone = *phone
	}
	if companyName != nil {
		c.CompanyName = *companyName
	}
	return &c, nil
}
