// This file handles the department role catalog operations.
package handlers

import (
	"strings"

	"github.com/BishoyAdelAziz/backend/internal/config"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/BishoyAdelAziz/backend/internal/repository"
	"github.com/BishoyAdelAziz/backend/internal/security"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// DepartmentRoleHandler handles the per-department role catalog used to
// label users within Software and Marketing.
type DepartmentRoleHandler struct {
	roleRepo *repository.DepartmentRoleRepository
	cfg      *config.Config
}

// NewDepartmentRoleHandler creates a new instance of DepartmentRoleHandler.
func NewDepartmentRoleHandler(cfg *config.Config) *DepartmentRoleHandler {
	return &DepartmentRoleHandler{
		roleRepo: repository.NewDepartmentRoleRepository(),
		cfg:      cfg,
	}
}

// List retrieves catalog entries, optionally filtered to one department.
//
// Routes: GET /api/department-roles and GET /api/department-roles/:department
// (any authenticated role)
func (h *DepartmentRoleHandler) List(c *fiber.Ctx) error {
	department := models.Department(c.Params("department", c.Query("department")))
	if department != "" && !models.ValidDepartment(department) {
		return respondError(c, h.cfg, security.ValidationErrors{{Field: "department", Message: "invalid department"}})
	}

	roles, err := h.roleRepo.ListByDepartment(c.Context(), department)
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"results": len(roles),
		"roles":   roles,
	})
}

// Create adds a catalog entry.
//
// Route: POST /api/department-roles (admin)
func (h *DepartmentRoleHandler) Create(c *fiber.Ctx) error {
	var req models.CreateDepartmentRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	var errs security.ValidationErrors
	if !models.ValidDepartment(req.Department) {
		errs = append(errs, security.FieldError{Field: "department", Message: "department must be Software or Marketing"})
	}
	if strings.TrimSpace(req.Role) == "" {
		errs = append(errs, security.FieldError{Field: "role", Message: "role name is required"})
	}
	if len(errs) > 0 {
		return respondError(c, h.cfg, errs)
	}

	createdBy, _ := c.Locals("user_id").(string)
	role := &models.DepartmentRole{
		ID:         uuid.NewString(),
		Department: req.Department,
		Role:       strings.TrimSpace(req.Role),
		CreatedBy:  createdBy,
	}

	if err := h.roleRepo.Create(c.Context(), role); err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"role":   role,
	})
}

// Update renames or moves a catalog entry.
//
// Route: PATCH /api/department-roles/:id (admin)
func (h *DepartmentRoleHandler) Update(c *fiber.Ctx) error {
	var req models.UpdateDepartmentRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	role, err := h.roleRepo.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	if req.Department != nil {
		if !models.ValidDepartment(*req.Department) {
			return respondError(c, h.cfg, security.ValidationErrors{{Field: "department", Message: "invalid department"}})
		}
		role.Department = *req.Department
	}
	if req.Role != nil {
		if strings.TrimSpace(*req.Role) == "" {
			return respondError(c, h.cfg, security.ValidationErrors{{Field: "role", Message: "role name is required"}})
		}
		role.Role = strings.TrimSpace(*req.Role)
	}

	if err := h.roleRepo.Update(c.Context(), role); err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"role":   role,
	})
}

// Delete removes a catalog entry permanently.
//
// Route: DELETE /api/department-roles/:id (admin)
func (h *DepartmentRoleHandler) Delete(c *fiber.Ctx) error {
	if err := h.roleRepo.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, h.cfg, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
