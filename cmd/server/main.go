// Package main is the entry point for the back office API server.
// It initializes configuration, the database connection, migrations,
// and all HTTP routes.
package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/BishoyAdelAziz/backend/internal/config"
	"github.com/BishoyAdelAziz/backend/internal/database"
	"github.com/BishoyAdelAziz/backend/internal/handlers"
	"github.com/BishoyAdelAziz/backend/internal/middleware"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/BishoyAdelAziz/backend/internal/security"
	"github.com/BishoyAdelAziz/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load configuration from the environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection pool
	if err := database.Connect(database.Config{URL: cfg.DatabaseURL}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Apply schema migrations before accepting traffic
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize structured security logger
	securityLogger := security.NewLogger()

	// Initialize rate limiters for the sensitive auth endpoints.
	// Login: cfg.LoginRateLimit attempts, refilling one per 12s.
	loginRateLimiter := security.NewRateLimiter(cfg.LoginRateLimit, 12*time.Second)
	defer loginRateLimiter.Stop()

	// Forgot password: cfg.ForgotPasswordRateLimit requests per hour.
	forgotRateLimiter := security.NewRateLimiter(cfg.ForgotPasswordRateLimit, 20*time.Minute)
	defer forgotRateLimiter.Stop()

	// OTP delivery boundary. Swap for an SMTP implementation when
	// outbound mail credentials are provisioned.
	mailer := services.NewLogMailer(securityLogger)

	// Create Fiber application
	app := fiber.New(fiber.Config{
		AppName:      "Back Office API",
		ErrorHandler: errorHandler(securityLogger),
	})

	// Panic recovery (should be first)
	app.Use(recover.New())

	// Request logging in JSON format
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		securityLogger.HTTPRequest(
			c.Method(), c.Path(), c.Response().StatusCode(),
			time.Since(start).Milliseconds(),
			c.IP(), c.Get(fiber.HeaderUserAgent),
		)
		return err
	})

	// Initialize HTTP request handlers
	authHandler := handlers.NewAuthHandler(cfg, mailer, securityLogger, loginRateLimiter, forgotRateLimiter)
	projectHandler := handlers.NewProjectHandler(cfg, securityLogger)
	clientHandler := handlers.NewClientHandler(cfg)
	userHandler := handlers.NewUserHandler(cfg, mailer, securityLogger)
	roleHandler := handlers.NewDepartmentRoleHandler(cfg)

	api := app.Group("/api")

	// ========================================
	// Auth Routes
	// ========================================
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/verify-email", authHandler.VerifyEmail)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/change-password", middleware.Authenticate(cfg), authHandler.ChangePassword)

	// ========================================
	// Project Routes (Protected & Role-Based)
	// ========================================
	projects := api.Group("/projects", middleware.Authenticate(cfg))
	projects.Get("/", projectHandler.List)
	projects.Get("/:id", projectHandler.Get)
	projects.Post("/",
		middleware.RequireRoles(models.RoleAdmin, models.RoleModerator),
		projectHandler.Create,
	)
	projects.Patch("/:id",
		middleware.RequireRoles(models.RoleAdmin),
		projectHandler.Update,
	)
	projects.Delete("/:id",
		middleware.RequireRoles(models.RoleAdmin),
		projectHandler.Delete,
	)

	// Edit-approval workflow: moderators request, admins decide.
	projects.Post("/:id/request-edit",
		middleware.RequireRoles(models.RoleModerator),
		projectHandler.RequestEdit,
	)
	projects.Post("/:id/approve-edit",
		middleware.RequireRoles(models.RoleAdmin),
		projectHandler.ApproveEdit,
	)

	// ========================================
	// Client Routes (Protected)
	// ========================================
	clients := api.Group("/clients", middleware.Authenticate(cfg))
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.Get)
	clients.Post("/",
		middleware.RequireRoles(models.RoleAdmin, models.RoleModerator),
		clientHandler.Create,
	)
	clients.Patch("/:id",
		middleware.RequireRoles(models.RoleAdmin, models.RoleModerator),
		clientHandler.Update,
	)
	clients.Delete("/:id",
		middleware.RequireRoles(models.RoleAdmin),
		clientHandler.Delete,
	)

	// ========================================
	// Department Role Catalog
	// ========================================
	roles := api.Group("/department-roles", middleware.Authenticate(cfg))
	roles.Get("/", roleHandler.List)
	roles.Get("/:department", roleHandler.List)
	roles.Post("/", middleware.RequireRoles(models.RoleAdmin), roleHandler.Create)
	roles.Patch("/:id", middleware.RequireRoles(models.RoleAdmin), roleHandler.Update)
	roles.Delete("/:id", middleware.RequireRoles(models.RoleAdmin), roleHandler.Delete)

	// ========================================
	// Admin Dashboard (User Management)
	// ========================================
	dashboard := api.Group("/dashboard",
		middleware.Authenticate(cfg),
		middleware.RequireRoles(models.RoleAdmin),
	)
	dashboard.Get("/users", userHandler.List)
	dashboard.Get("/users/:id", userHandler.Get)
	dashboard.Post("/users", userHandler.Create)
	dashboard.Patch("/users/:id", userHandler.Update)
	dashboard.Delete("/users/:id", userHandler.Delete)

	// ========================================
	// Start HTTP Server
	// ========================================
	fmt.Printf("🚀 Back office API starting on port %s (%s)\n", cfg.Port, cfg.Env)
	securityLogger.Info("Server started successfully")

	if err := app.Listen(":" + cfg.Port); err != nil {
		securityLogger.Critical("Failed to start server", err)
		log.Fatalf("Failed to start server: %v", err)
	}
}

// errorHandler turns unhandled errors into the API's JSON error shape.
func errorHandler(logger *security.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Something went wrong"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		} else {
			logger.Error("Unhandled request error", err)
		}

		return c.Status(code).JSON(fiber.Map{
			"status":  "error",
			"message": message,
		})
	}
}
