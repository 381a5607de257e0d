// Package repository_test provides unit tests for the repository layer.
// Tests use pgxmock v4 for database mocking and follow table-driven
// testing patterns.
package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/BishoyAdelAziz/backend/internal/database"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/BishoyAdelAziz/backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var projectColumns = []string{
	"id", "name", "description", "client_id", "budget", "deposit", "currency",
	"exchange_rate", "start_date", "end_date", "status", "installments",
	"completion_percentage", "created_by", "pending_edit", "edit_requested_by",
	"edit_status", "edit_notes", "edit_version", "created_at", "updated_at",
}

func withMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	oldDB := database.DB
	database.DB = mock
	t.Cleanup(func() { database.DB = oldDB })

	return mock
}

// projectRow builds a full projects row. Installments and the pending
// edit are encoded the way the JSONB columns come back from the driver.
func projectRow(t *testing.T, p models.Project) *pgxmock.Rows {
	t.Helper()
	testTime := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)

	installments, err := json.Marshal(p.Installments)
	require.NoError(t, err)

	var pendingEdit []byte
	if p.PendingEdit != nil {
		pendingEdit, err = json.Marshal(p.PendingEdit)
		require.NoError(t, err)
	}

	var description *string
	if p.Description != "" {
		description = &p.Description
	}
	var editStatus *string
	if p.EditStatus != models.EditStatusNone {
		s := string(p.EditStatus)
		editStatus = &s
	}
	var editNotes *string
	if p.EditNotes != "" {
		editNotes = &p.EditNotes
	}

	return pgxmock.NewRows(projectColumns).AddRow(
		p.ID, p.Name, description, p.ClientID, p.Budget, p.Deposit,
		string(p.Currency), p.ExchangeRate, p.StartDate, p.EndDate,
		string(p.Status), installments, p.CompletionPercentage, p.CreatedBy,
		pendingEdit, p.EditRequestedBy, editStatus, editNotes,
		p.EditVersion, testTime, testTime,
	)
}

// TestProjectRepository_FindByID verifies project lookup, including the
// decoding of the JSONB installments and pending edit documents.
func TestProjectRepository_FindByID(t *testing.T) {
	budget := 8000.0
	startDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("successful lookup decodes embedded documents", func(t *testing.T) {
		mock := withMockDB(t)

		stored := models.Project{
			ID:       "proj-1",
			Name:     "Website Redesign",
			ClientID: "client-1",
			Budget:   5000,
			Currency: models.CurrencyEGP,
			Status:   models.StatusActive,
			Installments: []models.Installment{
				{RefNo: "ABC12345", Amount: 1000, PaymentMethod: models.PaymentBankTransfer,
					Status: models.InstallmentCompleted, Currency: models.CurrencyEGP},
			},
			CompletionPercentage: 20,
			CreatedBy:            "user-1",
			StartDate:            startDate,
			EditStatus:           models.EditStatusPending,
			PendingEdit:          &models.PendingEdit{Budget: &budget},
			EditVersion:          3,
		}

		mock.ExpectQuery("SELECT (.+) FROM projects WHERE id").
			WithArgs("proj-1").
			WillReturnRows(projectRow(t, stored))

		repo := repository.NewProjectRepository()
		project, err := repo.FindByID(context.Background(), "proj-1")

		require.NoError(t, err)
		assert.Equal(t, "Website Redesign", project.Name)
		require.Len(t, project.Installments, 1)
		assert.Equal(t, "ABC12345", project.Installments[0].RefNo)
		require.NotNil(t, project.PendingEdit)
		assert.Equal(t, 8000.0, *project.PendingEdit.Budget)
		assert.Equal(t, int64(3), project.EditVersion)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock := withMockDB(t)

		mock.ExpectQuery("SELECT (.+) FROM projects WHERE id").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		repo := repository.NewProjectRepository()
		project, err := repo.FindByID(context.Background(), "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, project)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestProjectRepository_List verifies listing with the status and client
// substring filters. The query joins clients for the substring match.
func TestProjectRepository_List(t *testing.T) {
	mock := withMockDB(t)
	startDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := models.Project{
		ID: "proj-1", Name: "First", ClientID: "client-1", Budget: 5000,
		Currency: models.CurrencyEGP, Status: models.StatusActive,
		CreatedBy: "user-1", StartDate: startDate,
	}
	second := models.Project{
		ID: "proj-2", Name: "Second", ClientID: "client-1", Budget: 7000,
		Currency: models.CurrencyEGP, Status: models.StatusActive,
		CreatedBy: "user-1", StartDate: startDate,
	}

	rows := projectRow(t, first)
	installments, err := json.Marshal(second.Installments)
	require.NoError(t, err)
	rows.AddRow(
		second.ID, second.Name, nil, second.ClientID, second.Budget, nil,
		string(second.Currency), nil, second.StartDate, nil,
		string(second.Status), installments, 0.0, second.CreatedBy,
		nil, nil, nil, nil, int64(0),
		startDate, startDate,
	)

	mock.ExpectQuery("SELECT (.+) FROM projects p JOIN clients c").
		WithArgs("active", "acme").
		WillReturnRows(rows)

	repo := repository.NewProjectRepository()
	projects, err := repo.List(context.Background(), models.StatusActive, "acme")

	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "First", projects[0].Name)
	assert.NotNil(t, projects[1].Installments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestProjectRepository_Create verifies the insert and the scan-back of
// the database-generated timestamps.
func TestProjectRepository_Create(t *testing.T) {
	mock := withMockDB(t)
	testTime := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)

	project := &models.Project{
		ID:        "proj-1",
		Name:      "Website Redesign",
		ClientID:  "client-1",
		Budget:    5000,
		Currency:  models.CurrencyEGP,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.StatusPlanned,
		CreatedBy: "user-1",
	}

	mock.ExpectQuery("INSERT INTO projects").
		WithArgs(project.ID, project.Name, project.Description, project.ClientID,
			project.Budget, project.Deposit, project.Currency, project.ExchangeRate,
			project.StartDate, project.EndDate, project.Status, pgxmock.AnyArg(),
			project.CompletionPercentage, project.CreatedBy).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(testTime, testTime))

	repo := repository.NewProjectRepository()
	err := repo.Create(context.Background(), project)

	require.NoError(t, err)
	assert.Equal(t, testTime, project.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestProjectRepository_UpdateEditStateCAS verifies the compare-and-swap
// write of the edit workflow: a matching version succeeds and bumps the
// in-memory version, a stale version returns ErrVersionConflict.
func TestProjectRepository_UpdateEditStateCAS(t *testing.T) {
	budget := 9000.0
	requestedBy := "user-2"

	project := func() *models.Project {
		return &models.Project{
			ID:              "proj-1",
			Budget:          5000,
			EditRequestedBy: &requestedBy,
			EditStatus:      models.EditStatusPending,
			PendingEdit:     &models.PendingEdit{Budget: &budget},
			EditVersion:     2,
		}
	}

	t.Run("matching version wins", func(t *testing.T) {
		mock := withMockDB(t)
		p := project()

		mock.ExpectExec("UPDATE projects").
			WithArgs(p.ID, p.Budget, pgxmock.AnyArg(), p.CompletionPercentage,
				pgxmock.AnyArg(), p.EditRequestedBy, "pending", p.EditNotes,
				int64(2)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := repository.NewProjectRepository()
		err := repo.UpdateEditStateCAS(context.Background(), p, 2)

		require.NoError(t, err)
		assert.Equal(t, int64(3), p.EditVersion)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version loses the race", func(t *testing.T) {
		mock := withMockDB(t)
		p := project()

		mock.ExpectExec("UPDATE projects").
			WithArgs(p.ID, p.Budget, pgxmock.AnyArg(), p.CompletionPercentage,
				pgxmock.AnyArg(), p.EditRequestedBy, "pending", p.EditNotes,
				int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := repository.NewProjectRepository()
		err := repo.UpdateEditStateCAS(context.Background(), p, 1)

		assert.ErrorIs(t, err, repository.ErrVersionConflict)
		assert.Equal(t, int64(2), p.EditVersion)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestProjectRepository_Update verifies the full-field update used by
// the admin PATCH path.
func TestProjectRepository_Update(t *testing.T) {
	mock := withMockDB(t)

	project := &models.Project{
		ID:        "proj-1",
		Name:      "Renamed",
		ClientID:  "client-1",
		Budget:    5000,
		Currency:  models.CurrencyEGP,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:    models.StatusOnHold,
	}

	mock.ExpectExec("UPDATE projects").
		WithArgs(project.ID, project.Name, project.Description, project.ClientID,
			project.Budget, project.Deposit, project.Currency, project.ExchangeRate,
			project.StartDate, project.EndDate, project.Status, pgxmock.AnyArg(),
			project.CompletionPercentage).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := repository.NewProjectRepository()
	err := repo.Update(context.Background(), project)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestProjectRepository_Delete verifies hard deletion and the missing-row
// case.
func TestProjectRepository_Delete(t *testing.T) {
	t.Run("deletes existing project", func(t *testing.T) {
		mock := withMockDB(t)

		mock.ExpectExec("DELETE FROM projects WHERE id").
			WithArgs("proj-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := repository.NewProjectRepository()
		err := repo.Delete(context.Background(), "proj-1")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing project", func(t *testing.T) {
		mock := withMockDB(t)

		mock.ExpectExec("DELETE FROM projects WHERE id").
			WithArgs("missing").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := repository.NewProjectRepository()
		err := repo.Delete(context.Background(), "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
