// This file handles client directory operations.
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

// ClientHandler handles client directory HTTP requests. Clients are
// plain directory records, so the handler talks to the repository
// directly.
type ClientHandler struct {
	clientRepo *repository.ClientRepository
	validator  *security.ValidationService
	cfg        *config.Config
}

// NewClientHandler creates a new instance of ClientHandler.
func NewClientHandler(cfg *config.Config) *ClientHandler {
	return &ClientHandler{
		clientRepo: repository.NewClientRepository(),
		validator:  security.NewValidationService(),
		cfg:        cfg,
	}
}

func (h *ClientHandler) validate(client *models.Client) error {
	var errs security.ValidationErrors
	if err := h.validator.ValidateName(client.Name); err != nil {
		errs = append(errs, security.FieldError{Field: "name", Message: err.Error()})
	}
	if err := h.validator.ValidateEmail(client.Email); err != nil {
		errs = append(errs, security.FieldError{Field: "email", Message: err.Error()})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// List retrieves clients, optionally filtered by a name/email/company
// substring.
//
// Route: GET /api/clients?search= (any authenticated role)
func (h *ClientHandler) List(c *fiber.Ctx) error {
	clients, err := h.clientRepo.List(c.Context(), c.Query("search"))
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"results": len(clients),
		"clients": clients,
	})
}

// Get retrieves a single client by id.
//
// Route: GET /api/clients/:id (any authenticated role)
func (h *ClientHandler) Get(c *fiber.Ctx) error {
	client, err := h.clientRepo.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"client": client,
	})
}

// Create adds a client to the directory.
//
// Route: POST /api/clients (admin, moderator)
func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var req models.CreateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	client := &models.Client{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		CompanyName: strings.TrimSpace(req.CompanyName),
	}

	if err := h.validate(client); err != nil {
		return respondError(c, h.cfg, err)
	}
	if err := h.clientRepo.Create(c.Context(), client); err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"client": client,
	})
}

// Update applies a partial update: only fields present in the body change.
//
// Route: PATCH /api/clients/:id (admin, moderator)
func (h *ClientHandler) Update(c *fiber.Ctx) error {
	var req models.UpdateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	client, err := h.clientRepo.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		client.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.CompanyName != nil {
		client.CompanyName = strings.TrimSpace(*req.CompanyName)
	}

	if err := h.validate(client); err != nil {
		return respondError(c, h.cfg, err)
	}
	if err := h.clientRepo.Update(c.Context(), client); err != nil {
		return respondError(c, h.cfg, err)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"client": client,
	})
}

// Delete removes a client permanently.
//
// Route: DELETE /api/clients/:id (admin)
func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	if err := h.clientRepo.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, h.cfg, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
