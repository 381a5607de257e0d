// Package models_test provides unit tests for the data model behavior:
// the role-based project view, the password-change cutoff, and the
// pending edit emptiness check.
package models_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/BishoyAdelAziz/backend/internal/models"
)

// TestNewProjectView verifies the role-based serialization policy:
// financial fields are present for admin and moderator viewers and
// absent from the marshaled output for regular users.
func TestNewProjectView(t *testing.T) {
	deposit := 500.0
	project := models.Project{
		ID:       "proj-1",
		Name:     "Website Redesign",
		ClientID: "client-1",
		Budget:   5000,
		Deposit:  &deposit,
		Currency: models.CurrencyEGP,
		Status:   models.StatusActive,
		Installments: []models.Installment{
			{RefNo: "ABC12345", Amount: 1000, Status: models.InstallmentCompleted},
		},
		CompletionPercentage: 20,
		StartDate:            time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name          string
		viewer        models.Role
		wantFinancial bool
	}{
		{name: "admin", viewer: models.RoleAdmin, wantFinancial: true},
		{name: "moderator", viewer: models.RoleModerator, wantFinancial: true},
		{name: "user", viewer: models.RoleUser, wantFinancial: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := models.NewProjectView(&project, tt.viewer)

			data, err := json.Marshal(view)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			out := string(data)

			if !strings.Contains(out, `"projectName":"Website Redesign"`) {
				t.Errorf("project name missing from output: %s", out)
			}

			for _, field := range []string{"budget", "deposit", "installments", "completionPercentage"} {
				present := strings.Contains(out, `"`+field+`"`)
				if present != tt.wantFinancial {
					t.Errorf("field %q present=%v, want %v (role %s)", field, present, tt.wantFinancial, tt.viewer)
				}
			}
		})
	}
}

// TestNewProjectView_ZeroBudgetStillVisible verifies admins see a budget
// of 0 explicitly rather than having the field dropped.
func TestNewProjectView_ZeroBudgetStillVisible(t *testing.T) {
	project := models.Project{ID: "proj-1", Name: "Free", Budget: 0}

	view := models.NewProjectView(&project, models.RoleAdmin)
	if view.Budget == nil {
		t.Fatal("budget should be present for admin viewers")
	}
	if *view.Budget != 0 {
		t.Errorf("expected budget 0, got %v", *view.Budget)
	}

	data, _ := json.Marshal(view)
	if !strings.Contains(string(data), `"budget":0`) {
		t.Errorf("zero budget not serialized: %s", data)
	}
}

// TestChangedPasswordAfter verifies the token cutoff comparison. The
// check works at second granularity, matching the token's iat claim.
func TestChangedPasswordAfter(t *testing.T) {
	base := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		changedAt *time.Time
		issuedAt  time.Time
		want      bool
	}{
		{name: "never changed", changedAt: nil, issuedAt: base, want: false},
		{name: "changed before issue", changedAt: timePtr(base.Add(-time.Hour)), issuedAt: base, want: false},
		{name: "changed after issue", changedAt: timePtr(base.Add(time.Hour)), issuedAt: base, want: true},
		{name: "changed same second", changedAt: timePtr(base.Add(500 * time.Millisecond)), issuedAt: base, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := models.User{PasswordChangedAt: tt.changedAt}
			if got := user.ChangedPasswordAfter(tt.issuedAt); got != tt.want {
				t.Errorf("ChangedPasswordAfter() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPendingEditIsEmpty verifies the emptiness rule used to reject
// no-op edit requests.
func TestPendingEditIsEmpty(t *testing.T) {
	budget := 9000.0

	tests := []struct {
		name string
		edit models.PendingEdit
		want bool
	}{
		{name: "nothing staged", edit: models.PendingEdit{}, want: true},
		{name: "budget staged", edit: models.PendingEdit{Budget: &budget}, want: false},
		{
			name: "installments staged",
			edit: models.PendingEdit{Installments: []models.Installment{{RefNo: "ABC12345"}}},
			want: false,
		},
		{
			name: "empty installment list counts as a change",
			edit: models.PendingEdit{Installments: []models.Installment{}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.edit.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestEnumValidators spot-checks the enum helpers used across request
// validation.
func TestEnumValidators(t *testing.T) {
	if !models.ValidRole(models.RoleModerator) {
		t.Error("moderator should be a valid role")
	}
	if models.ValidRole("superuser") {
		t.Error("superuser should not be a valid role")
	}
	if !models.ValidProjectStatus(models.StatusOnHold) {
		t.Error("on_hold should be a valid status")
	}
	if models.ValidProjectStatus("archived") {
		t.Error("archived should not be a valid status")
	}
	if !models.ValidCurrency(models.CurrencyUSD) || models.ValidCurrency("EUR") {
		t.Error("currency validation mismatch")
	}
	if !models.ValidDepartment(models.DepartmentMarketing) || models.ValidDepartment("Sales") {
		t.Error("department validation mismatch")
	}
}

func timePtr(t time.Time) *time.Time { return &t }
