// This file handles project lifecycle operations: CRUD, listing with
// filters, and the edit-approval workflow.
package handlers

import (
	"github.com/BishoyAdelAziz/backend/internal/config"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/BishoyAdelAziz/backend/internal/security"
	"github.com/BishoyAdelAziz/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ProjectHandler handles project-related HTTP requests. Every response
// passes through the role-based view so financial fields never leak to
// regular users.
type ProjectHandler struct {
	projectService *services.ProjectService
	securityLogger *security.Logger
	cfg            *config.Config
}

// NewProjectHandler creates a new instance of ProjectHandler.
func NewProjectHandler(cfg *config.Config, securityLogger *security.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: services.NewProjectService(),
		securityLogger: securityLogger,
		cfg:            cfg,
	}
}

// viewerRole reads the authenticated role from the request context.
func viewerRole(c *fiber.Ctx) models.Role {
	role, _ := c.Locals("user_role").(models.Role)
	return role
}

// Create builds a new project owned by the authenticated principal.
//
// Route: POST /api/projects (admin, moderator)
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var req models.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	createdBy, _ := c.Locals("user_id").(string)
	project, err := h.projectService.Create(c.Context(), req, createdBy)
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"project": models.NewProjectView(project, viewerRole(c)),
	})
}

// List retrieves projects, optionally filtered by status and a client
// name/email substring.
//
// Route: GET /api/projects?status=&client= (any authenticated role)
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	status := models.ProjectStatus(c.Query("status"))
	client := c.Query("client")

	projects, err := h.projectService.List(c.Context(), status, client)
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	views := models.NewProjectViews(projects, viewerRole(c))
	return c.JSON(fiber.Map{
		"status":   "success",
		"results":  len(views),
		"projects": views,
	})
}

// Get retrieves a single project by id.
//
// Route: GET /api/projects/:id (any authenticated role)
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	project, err := h.projectService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"project": models.NewProjectView(project, viewerRole(c)),
	})
}

// Update applies a partial update directly, bypassing the approval
// workflow. Admin only.
//
// Route: PATCH /api/projects/:id (admin)
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	var req models.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	project, err := h.projectService.Update(c.Context(), c.Params("id"), req)
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"project": models.NewProjectView(project, viewerRole(c)),
	})
}

// Delete removes a project permanently.
//
// Route: DELETE /api/projects/:id (admin)
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	if err := h.projectService.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, h.cfg, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RequestEdit stages a budget/installments change for admin approval.
//
// Route: POST /api/projects/:id/request-edit (moderator)
func (h *ProjectHandler) RequestEdit(c *fiber.Ctx) error {
	var req models.RequestEditRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	requestedBy, _ := c.Locals("user_id").(string)
	project, err := h.projectService.RequestEdit(c.Context(), c.Params("id"), req, requestedBy)
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	email, _ := c.Locals("user_email").(string)
	h.securityLogger.SecurityEvent(security.EventEditRequested,
		requestedBy, email, c.IP(), c.Get(fiber.HeaderUserAgent),
		map[string]interface{}{"project_id": project.ID})

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Edit request submitted for approval",
		"project": models.NewProjectView(project, viewerRole(c)),
	})
}

// ApproveEdit decides the pending edit request: approve merges the
// staged changes, reject discards them.
//
// Route: POST /api/projects/:id/approve-edit (admin)
func (h *ProjectHandler) ApproveEdit(c *fiber.Ctx) error {
	var req models.ApproveEditRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	project, err := h.projectService.DecideEdit(c.Context(), c.Params("id"), req.Approve, req.Notes)
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	event := security.EventEditApproved
	message := "Edit request approved"
	if !req.Approve {
		event = security.EventEditRejected
		message = "Edit request rejected"
	}

	actorID, _ := c.Locals("user_id").(string)
	email, _ := c.Locals("user_email").(string)
	h.securityLogger.SecurityEvent(event,
		actorID, email, c.IP(), c.Get(fiber.HeaderUserAgent),
		map[string]interface{}{"project_id": project.ID})

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"project": models.NewProjectView(project, viewerRole(c)),
	})
}
