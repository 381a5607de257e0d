// Package handlers implements the HTTP request handlers for the back
// office API. Handlers parse typed request bodies, delegate to the
// services layer, and translate service errors to JSON responses.
package handlers

import (
	"errors"

	"github.com/BishoyAdelAziz/backend/internal/config"
	"github.com/BishoyAdelAziz/backend/internal/repository"
	"github.com/BishoyAdelAziz/backend/internal/security"
	"github.com/BishoyAdelAziz/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// respondError maps a service or repository error to the API's JSON
// error shape. Validation failures carry per-field details; everything
// unexpected becomes an opaque 500 outside development.
func respondError(c *fiber.Ctx, cfg *config.Config, err error) error {
	var validationErrs security.ValidationErrors
	if errors.As(err, &validationErrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"errors":  validationErrs,
		})
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return respondStatus(c, fiber.StatusNotFound, "Resource not found")
	case errors.Is(err, repository.ErrDuplicate):
		return respondStatus(c, fiber.StatusConflict, "A record with these details already exists")
	case errors.Is(err, repository.ErrVersionConflict):
		return respondStatus(c, fiber.StatusConflict, "The project was modified by someone else. Please reload and try again.")
	case errors.Is(err, services.ErrEmailTaken):
		return respondStatus(c, fiber.StatusConflict, "Email already registered")
	case errors.Is(err, services.ErrInvalidCredentials):
		return respondStatus(c, fiber.StatusBadRequest, "Invalid email or password")
	case errors.Is(err, services.ErrEmailNotVerified):
		return respondStatus(c, fiber.StatusUnauthorized, "Please verify your email before logging in")
	case errors.Is(err, services.ErrAccountInactive):
		return respondStatus(c, fiber.StatusUnauthorized, "This account has been deactivated")
	case errors.Is(err, services.ErrInvalidOTP),
		errors.Is(err, services.ErrEmailAlreadyVerified),
		errors.Is(err, services.ErrPasswordMismatch),
		errors.Is(err, services.ErrWrongPassword),
		errors.Is(err, services.ErrEmptyEditRequest),
		errors.Is(err, services.ErrEditAlreadyPending),
		errors.Is(err, services.ErrNoPendingEdit),
		errors.Is(err, services.ErrExchangeRateRequired):
		return respondStatus(c, fiber.StatusBadRequest, err.Error())
	}

	message := "Something went wrong"
	if cfg.IsDevelopment() {
		message = err.Error()
	}
	return respondStatus(c, fiber.StatusInternalServerError, message)
}

func respondStatus(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// respondBadBody is the uniform response for malformed JSON bodies.
func respondBadBody(c *fiber.Ctx) error {
	return respondStatus(c, fiber.StatusBadRequest, "Invalid request body")
}
