// This file handles authentication operations: registration, email
// verification, login, and the password reset and change flows.
package handlers

import (
	"errors"
	"time"

	"github.com/BishoyAdelAziz/backend/internal/config"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/BishoyAdelAziz/backend/internal/security"
	"github.com/BishoyAdelAziz/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	authService    *services.AuthService
	securityLogger *security.Logger
	loginLimiter   *security.RateLimiter
	forgotLimiter  *security.RateLimiter
	cfg            *config.Config
}

// NewAuthHandler creates a new instance of AuthHandler.
//
// Parameters:
//   - cfg: Application configuration (JWT, cookie and rate-limit settings)
//   - mailer: Outbound mail collaborator for OTP delivery
//   - securityLogger: Logger for security events
//   - loginLimiter: Per-IP limiter for login attempts
//   - forgotLimiter: Per-IP limiter for forgot-password requests
func NewAuthHandler(cfg *config.Config, mailer services.Mailer, securityLogger *security.Logger,
	loginLimiter, forgotLimiter *security.RateLimiter) *AuthHandler {
	return &AuthHandler{
		authService:    services.NewAuthService(cfg, mailer),
		securityLogger: securityLogger,
		loginLimiter:   loginLimiter,
		forgotLimiter:  forgotLimiter,
		cfg:            cfg,
	}
}

// Register creates a new unverified account and sends a verification OTP.
//
// Route: POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	user, err := h.authService.Register(c.Context(), req)
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	h.securityLogger.SecurityEvent(security.EventRegistration,
		user.ID, user.Email, c.IP(), c.Get(fiber.HeaderUserAgent), nil)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Registration successful. Please check your email for the verification code.",
		"user":    user.Summary(),
	})
}

// VerifyEmail confirms the OTP sent at registration and logs the user in.
//
// Route: POST /api/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req models.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	token, user, err := h.authService.VerifyEmail(c.Context(), req.Email, req.OTP)
	if err != nil {
		return respondError(c, h.cfg, err)
	}

	h.securityLogger.SecurityEvent(security.EventEmailVerified,
		user.ID, user.Email, c.IP(), c.Get(fiber.HeaderUserAgent), nil)

	h.setJWTCookie(c, token)
	return c.JSON(models.AuthResponse{
		Message: "Email verified successfully",
		Token:   token,
		User:    user.Summary(),
	})
}

// Login authenticates credentials and issues a bearer token. The token
// is also set as an httpOnly cookie for browser clients. Attempts are
// rate limited per client IP.
//
// Route: POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	if !h.loginLimiter.Allow(c.IP()) {
		h.securityLogger.SecurityEvent(security.EventRateLimited,
			"", "", c.IP(), c.Get(fiber.HeaderUserAgent),
			map[string]interface{}{"endpoint": "login"})
		return respondStatus(c, fiber.StatusTooManyRequests, "Too many login attempts. Please try again later.")
	}

	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	token, user, err := h.authService.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		h.securityLogger.SecurityEvent(security.EventLoginFailure,
			"", req.Email, c.IP(), c.Get(fiber.HeaderUserAgent), nil)
		return respondError(c, h.cfg, err)
	}

	// Successful login resets the attempt budget for this IP.
	h.loginLimiter.Reset(c.IP())
	h.securityLogger.SecurityEvent(security.EventLoginSuccess,
		user.ID, user.Email, c.IP(), c.Get(fiber.HeaderUserAgent), nil)

	h.setJWTCookie(c, token)
	return c.JSON(models.AuthResponse{
		Token: token,
		User:  user.Summary(),
	})
}

// Logout clears the jwt cookie. Bearer tokens simply expire.
//
// Route: POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Logged out",
	})
}

// ForgotPassword sends a password reset OTP to a verified account.
// Unknown or unverified emails get an explicit 400. Rate limited per
// client IP.
//
// Route: POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	if !h.forgotLimiter.Allow(c.IP()) {
		h.securityLogger.SecurityEvent(security.EventRateLimited,
			"", "", c.IP(), c.Get(fiber.HeaderUserAgent),
			map[string]interface{}{"endpoint": "forgot-password"})
		return respondStatus(c, fiber.StatusTooManyRequests, "Too many requests. Please try again later.")
	}

	var req models.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	if err := h.authService.ForgotPassword(c.Context(), req.Email); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return respondStatus(c, fiber.StatusBadRequest, "No account found with that email")
		}
		if errors.Is(err, services.ErrEmailNotVerified) {
			return respondStatus(c, fiber.StatusBadRequest, "Please verify your email first")
		}
		return respondError(c, h.cfg, err)
	}

	h.securityLogger.SecurityEvent(security.EventOTPDispatched,
		"", req.Email, c.IP(), c.Get(fiber.HeaderUserAgent), nil)

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Password reset code sent to your email.",
	})
}

// ResetPassword sets a new password after OTP verification.
//
// Route: POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	if err := h.authService.ResetPassword(c.Context(), req); err != nil {
		return respondError(c, h.cfg, err)
	}

	h.securityLogger.SecurityEvent(security.EventPasswordReset,
		"", req.Email, c.IP(), c.Get(fiber.HeaderUserAgent), nil)

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Password reset successfully. Please log in with your new password.",
	})
}

// ChangePassword updates the password of the authenticated principal.
//
// Route: POST /api/auth/change-password (authenticated)
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req models.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	userID, _ := c.Locals("user_id").(string)
	if err := h.authService.ChangePassword(c.Context(), userID, req); err != nil {
		return respondError(c, h.cfg, err)
	}

	email, _ := c.Locals("user_email").(string)
	h.securityLogger.SecurityEvent(security.EventPasswordChanged,
		userID, email, c.IP(), c.Get(fiber.HeaderUserAgent), nil)

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Password changed successfully",
	})
}

// setJWTCookie stores the token as an httpOnly cookie for browser
// clients. API clients use the token from the response body instead.
func (h *AuthHandler) setJWTCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token,
		Expires:  time.Now().Add(time.Duration(h.cfg.CookieExpiryDays) * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
