// Client repository tests verify directory CRUD and the search filter.
package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/BishoyAdelAziz/backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clientColumns = []string{
	"id", "name", "email", "phone", "company_name", "created_at", "updated_at",
}

// TestClientRepository_List verifies listing with the substring filter
// and the nullable phone/company columns.
func TestClientRepository_List(t *testing.T) {
	mock := withMockDB(t)
	testTime := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)

	phone := "+201000000000"
	rows := pgxmock.NewRows(clientColumns).
		AddRow("client-1", "Acme", "contact@acme.com", &phone, nil, testTime, testTime).
		AddRow("client-2", "Beta Corp", "hello@beta.com", nil, nil, testTime, testTime)

	mock.ExpectQuery("SELECT (.+) FROM clients").
		WithArgs("acme").
		WillReturnRows(rows)

	repo := repository.NewClientRepository()
	clients, err := repo.List(context.Background(), "acme")

	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "+201000000000", clients[0].Phone)
	assert.Empty(t, clients[1].Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestClientRepository_FindByID verifies single lookup and the missing
// record case.
func TestClientRepository_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := withMockDB(t)
		testTime := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)

		rows := pgxmock.NewRows(clientColumns).
			AddRow("client-1", "Acme", "contact@acme.com", nil, nil, testTime, testTime)

		mock.ExpectQuery("SELECT (.+) FROM clients WHERE id").
			WithArgs("client-1").
			WillReturnRows(rows)

		repo := repository.NewClientRepository()
		client, err := repo.FindByID(context.Background(), "client-1")

		require.NoError(t, err)
		assert.Equal(t, "Acme", client.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock := withMockDB(t)

		mock.ExpectQuery("SELECT (.+) FROM clients WHERE id").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		repo := repository.NewClientRepository()
		client, err := repo.FindByID(context.Background(), "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, client)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestClientRepository_Create verifies the insert and the duplicate
// email translation.
func TestClientRepository_Create(t *testing.T) {
	client := func() *models.Client {
		return &models.Client{
			ID:    "client-1",
			Name:  "Acme",
			Email: "contact@acme.com",
		}
	}

	t.Run("successful creation", func(t *testing.T) {
		mock := withMockDB(t)
		testTime := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)
		c := client()

		mock.ExpectQuery("INSERT INTO clients").
			WithArgs(c.ID, c.Name, c.Email, c.Phone, c.CompanyName).
			WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).
				AddRow(testTime, testTime))

		repo := repository.NewClientRepository()
		err := repo.Create(context.Background(), c)

		require.NoError(t, err)
		assert.Equal(t, testTime, c.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock := withMockDB(t)
		c := client()

		mock.ExpectQuery("INSERT INTO clients").
			WithArgs(c.ID, c.Name, c.Email, c.Phone, c.CompanyName).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		repo := repository.NewClientRepository()
		err := repo.Create(context.Background(), c)

		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestClientRepository_Update verifies the update and the missing-row
// case.
func TestClientRepository_Update(t *testing.T) {
	client := &models.Client{
		ID: "client-1", Name: "Acme Renamed", Email: "contact@acme.com",
	}

	t.Run("updates existing client", func(t *testing.T) {
		mock := withMockDB(t)

		mock.ExpectExec("UPDATE clients").
			WithArgs(client.ID, client.Name, client.Email, client.Phone, client.CompanyName).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := repository.NewClientRepository()
		err := repo.Update(context.Background(), client)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing client", func(t *testing.T) {
		mock := withMockDB(t)

		mock.ExpectExec("UPDATE clients").
			WithArgs(client.ID, client.Name, client.Email, client.Phone, client.CompanyName).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := repository.NewClientRepository()
		err := repo.Update(context.Background(), client)

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
