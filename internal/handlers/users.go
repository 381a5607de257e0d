// This file handles the admin dashboard user management operations.
package handlers

import (
	"strings"

	"github.com/BishoyAdelAziz/backend/internal/config"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/BishoyAdelAziz/backend/internal/repository"
	"github.com/BishoyAdelAziz/backend/internal/security"
	"github.com/BishoyAdelAziz/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserHandler handles the admin dashboard user CRUD. Accounts created
// here are pre-verified: the admin vouches for the address, so no OTP
// round trip is needed.
type UserHandler struct {
	userRepo       *repository.UserRepository
	authService    *services.AuthService
	validator      *security.ValidationService
	securityLogger *security.Logger
	cfg            *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(cfg *config.Config, mailer services.Mailer, securityLogger *security.Logger) *UserHandler {
	return &UserHandler{
		userRepo:       repository.NewUserRepository(),
		authService:    services.NewAuthService(cfg, mailer),
		validator:      security.NewValidationService(),
		securityLogger: securityLogger,
		cfg:            cfg,
	}
}

// List retrieves users with optional role, department and name/email
// substring filters.
//
// Route: GET /api/dashboard/users?role=&department=&search= (admin)
func (h *UserHandler) List(c *fiber.Ctx) error {
	role := models.Role(c.Query("role"))
	if role != "" && !models.ValidRole(role) {
		return respondError(c, h.cfg, security.ValidationErrors{{Field: "role", Message: "invalid role"}})
	}
	department := models.Department(c.Query("department"))
	if department != "" && !models.ValidDepartment(department) {
		return respondError(c, h.cfg, security.ValidationErrors{{Field: "department", Message: "invalid department"}})
	}

	users, err := h.userRepo.List(c.Context(), role, department, c.Query("search"))
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"results": len(users),
		"users":   users,
	})
}

// Get retrieves a single user by id.
//
// Route: GET /api/dashboard/users/:id (admin)
func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.userRepo.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"user":   user,
	})
}

// Create adds a pre-verified user account.
//
// Route: POST /api/dashboard/users (admin)
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	var errs security.ValidationErrors
	if err := h.validator.ValidateName(req.Name); err != nil {
		errs = append(errs, security.FieldError{Field: "name", Message: err.Error()})
	}
	if err := h.validator.ValidateEmail(req.Email); err != nil {
		errs = append(errs, security.FieldError{Field: "email", Message: err.Error()})
	}
	if err := h.validator.ValidatePassword(req.Password); err != nil {
		errs = append(errs, security.FieldError{Field: "password", Message: err.Error()})
	}
	if !models.ValidRole(req.Role) {
		errs = append(errs, security.FieldError{Field: "role", Message: "invalid role"})
	}
	if req.Role != models.RoleAdmin && !models.ValidDepartment(req.Department) {
		errs = append(errs, security.FieldError{Field: "department", Message: "department must be Software or Marketing"})
	}
	if len(errs) > 0 {
		return respondError(c, h.cfg, errs)
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
		IsVerified:   true,
	}
	if req.Role != models.RoleAdmin {
		user.Department = req.Department
	}

	if err := h.userRepo.Create(c.Context(), user); err != nil {
		return respondError(c, h.cfg, err)
	}

	actorID, _ := c.Locals("user_id").(string)
	actorEmail, _ := c.Locals("user_email").(string)
	h.securityLogger.SecurityEvent(security.EventRegistration,
		actorID, actorEmail, c.IP(), c.Get(fiber.HeaderUserAgent),
		map[string]interface{}{"created_user_id": user.ID})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"user":   user,
	})
}

// Update applies a partial update to a user record. Passwords are not
// changed here; users change their own through the auth endpoints.
//
// Route: PATCH /api/dashboard/users/:id (admin)
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	user, err := h.userRepo.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	if req.Name != nil {
		if err := h.validator.ValidateName(*req.Name); err != nil {
			return respondError(c, h.cfg, security.ValidationErrors{{Field: "name", Message: err.Error()}})
		}
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		if err := h.validator.ValidateEmail(*req.Email); err != nil {
			return respondError(c, h.cfg, security.ValidationErrors{{Field: "email", Message: err.Error()}})
		}
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			return respondError(c, h.cfg, security.ValidationErrors{{Field: "role", Message: "invalid role"}})
		}
		user.Role = *req.Role
	}
	if req.Department != nil {
		if !models.ValidDepartment(*req.Department) {
			return respondError(c, h.cfg, security.ValidationErrors{{Field: "department", Message: "invalid department"}})
		}
		user.Department = *req.Department
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.userRepo.Update(c.Context(), user); err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"user":   user,
	})
}

// Delete removes a user permanently.
//
// Route: DELETE /api/dashboard/users/:id (admin)
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.userRepo.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, h.cfg, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
