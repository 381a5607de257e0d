// Package main seeds an administrator account. Intended for first-time
// setup and local development; any existing account with the same email
// is replaced.
//
// Usage:
//
//	create-admin -email admin@example.com -password 'Str0ngpass' -name "Admin"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/BishoyAdelAziz/backend/internal/config"
	"github.com/BishoyAdelAziz/backend/internal/database"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/BishoyAdelAziz/backend/internal/repository"
	"github.com/BishoyAdelAziz/backend/internal/security"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password")
	name := flag.String("name", "Admin", "admin display name")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}
	*email = strings.ToLower(strings.TrimSpace(*email))

	validator := security.NewValidationService()
	if err := validator.ValidateEmail(*email); err != nil {
		log.Fatalf("invalid email: %v", err)
	}
	if err := validator.ValidatePassword(*password); err != nil {
		log.Fatalf("invalid password: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.Connect(database.Config{URL: cfg.DatabaseURL}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), cfg.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository()

	// Replace any previous account with this address.
	if err := userRepo.DeleteByEmail(ctx, *email); err != nil {
		log.Fatalf("Failed to remove existing account: %v", err)
	}

	admin := &models.User{
		ID:           uuid.NewString(),
		Name:         *name,
		Email:        *email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       true,
		IsVerified:   true,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}

	fmt.Printf("✅ Admin account created: %s (%s)\n", admin.Email, admin.ID)
}
