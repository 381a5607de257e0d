// This file contains unit tests for the authentication and authorization
// middleware.
//
// Tests verify:
//   - Bearer header and cookie token extraction
//   - Token validation and the password-change cutoff
//   - Account state checks and role gating
package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BishoyAdelAziz/backend/internal/auth"
	"github.com/BishoyAdelAziz/backend/internal/config"
	"github.com/BishoyAdelAziz/backend/internal/database"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}
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

var userColumns = []string{
	"id", "name", "email", "password_hash", "role", "department",
	"department_role_id", "password_changed_at", "active", "is_verified",
	"otp", "otp_expires", "created_at", "updated_at",
}

// expectUserLookup queues the FindByID row the middleware loads for each
// request.
func expectUserLookup(mock pgxmock.PgxPoolIface, u models.User) {
	testTime := time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC)

	var department *string
	if u.Department != "" {
		d := string(u.Department)
		department = &d
	}

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(u.ID).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(
			u.ID, u.Name, u.Email, "hash", string(u.Role), department,
			nil, u.PasswordChangedAt, u.Active, u.IsVerified,
			nil, nil, testTime, testTime,
		))
}

// protectedApp builds a fiber app with one authenticated route that
// echoes the principal set in the context.
func protectedApp(cfg *config.Config, extra ...fiber.Handler) *fiber.App {
	app := fiber.New()

	handlers := []fiber.Handler{Authenticate(cfg)}
	handlers = append(handlers, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		role, _ := c.Locals("user_role").(models.Role)
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"role":    string(role),
		})
	})

	app.Get("/protected", handlers...)
	return app
}

// TestAuthenticate_ValidToken verifies access with a bearer header and
// with the jwt cookie.
func TestAuthenticate_ValidToken(t *testing.T) {
	cfg := testConfig()
	token, err := auth.GenerateToken("user-1", []byte(cfg.JWTSecret), cfg.JWTExpiry)
	require.NoError(t, err)

	activeUser := models.User{
		ID: "user-1", Email: "test@example.com", Role: models.RoleUser,
		Department: models.DepartmentSoftware, Active: true, IsVerified: true,
	}

	t.Run("bearer header", func(t *testing.T) {
		mock := withMockDB(t)
		expectUserLookup(mock, activeUser)

		app := protectedApp(cfg)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "user-1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("jwt cookie fallback", func(t *testing.T) {
		mock := withMockDB(t)
		expectUserLookup(mock, activeUser)

		app := protectedApp(cfg)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Add("Cookie", "jwt="+token)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestAuthenticate_Rejections verifies the 401 paths: missing token,
// expired token, deactivated account, and a token issued before the last
// password change.
func TestAuthenticate_Rejections(t *testing.T) {
	cfg := testConfig()

	t.Run("missing token", func(t *testing.T) {
		app := protectedApp(cfg)
		req := httptest.NewRequest("GET", "/protected", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := auth.GenerateToken("user-1", []byte(cfg.JWTSecret), -time.Minute)
		require.NoError(t, err)

		app := protectedApp(cfg)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+expired)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong signing secret", func(t *testing.T) {
		forged, err := auth.GenerateToken("user-1", []byte("other-secret"), time.Hour)
		require.NoError(t, err)

		app := protectedApp(cfg)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+forged)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("deactivated account", func(t *testing.T) {
		token, err := auth.GenerateToken("user-1", []byte(cfg.JWTSecret), cfg.JWTExpiry)
		require.NoError(t, err)

		mock := withMockDB(t)
		expectUserLookup(mock, models.User{
			ID: "user-1", Role: models.RoleUser, Active: false, IsVerified: true,
		})

		app := protectedApp(cfg)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("token issued before password change", func(t *testing.T) {
		token, err := auth.GenerateToken("user-1", []byte(cfg.JWTSecret), cfg.JWTExpiry)
		require.NoError(t, err)

		// Password changed after the token was issued.
		changedAt := time.Now().Add(time.Minute)
		mock := withMockDB(t)
		expectUserLookup(mock, models.User{
			ID: "user-1", Role: models.RoleUser, Active: true, IsVerified: true,
			PasswordChangedAt: &changedAt,
		})

		app := protectedApp(cfg)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "Password changed recently")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestRequireRoles verifies the role gate: allowed roles pass, others
// get 403.
func TestRequireRoles(t *testing.T) {
	cfg := testConfig()
	token, err := auth.GenerateToken("user-1", []byte(cfg.JWTSecret), cfg.JWTExpiry)
	require.NoError(t, err)

	tests := []struct {
		name       string
		userRole   models.Role
		allowed    []models.Role
		wantStatus int
	}{
		{
			name:       "admin allowed on admin route",
			userRole:   models.RoleAdmin,
			allowed:    []models.Role{models.RoleAdmin},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "moderator allowed on shared route",
			userRole:   models.RoleModerator,
			allowed:    []models.Role{models.RoleAdmin, models.RoleModerator},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "user blocked from admin route",
			userRole:   models.RoleUser,
			allowed:    []models.Role{models.RoleAdmin},
			wantStatus: fiber.StatusForbidden,
		},
		{
			name:       "admin blocked from moderator-only route",
			userRole:   models.RoleAdmin,
			allowed:    []models.Role{models.RoleModerator},
			wantStatus: fiber.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := withMockDB(t)
			expectUserLookup(mock, models.User{
				ID: "user-1", Role: tt.userRole, Active: true, IsVerified: true,
			})

			app := protectedApp(cfg, RequireRoles(tt.allowed...))
			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
