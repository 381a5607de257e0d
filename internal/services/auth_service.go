package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/BishoyAdelAziz/backend/internal/auth"
	"github.com/BishoyAdelAziz/backend/internal/config"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/BishoyAdelAziz/backend/internal/repository"
	"github.com/BishoyAdelAziz/backend/internal/security"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Authentication flow errors. Handlers map these to 400/401 responses.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailTaken           = errors.New("email already registered")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrEmailAlreadyVerified = errors.New("email already verified")
	ErrAccountInactive      = errors.New("account is not active")
	ErrInvalidOTP           = errors.New("invalid or expired OTP")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrWrongPassword        = errors.New("current password is incorrect")
)

// AuthService handles registration, credential verification, token issue,
// and the OTP-based verification and reset flows.
//
// Security notes:
//   - bcrypt comparison is constant-time
//   - the same error is returned for unknown email and wrong password
//   - OTPs are 6 random digits with a fixed validity window
type AuthService struct {
	userRepo  *repository.UserRepository
	validator *security.ValidationService
	mailer    Mailer
	cfg       *config.Config
}

// NewAuthService creates an authentication service.
func NewAuthService(cfg *config.Config, mailer Mailer) *AuthService {
	return &AuthService{
		userRepo:  repository.NewUserRepository(),
		validator: security.NewValidationService(),
		mailer:    mailer,
		cfg:       cfg,
	}
}

// Register creates an unverified account and dispatches a verification
// OTP to the given address.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var errs security.ValidationErrors
	if err := s.validator.ValidateName(req.Name); err != nil {
		errs = append(errs, security.FieldError{Field: "name", Message: err.Error()})
	}
	if err := s.validator.ValidateEmail(req.Email); err != nil {
		errs = append(errs, security.FieldError{Field: "email", Message: err.Error()})
	}
	if err := s.validator.ValidatePassword(req.Password); err != nil {
		errs = append(errs, security.FieldError{Field: "password", Message: err.Error()})
	}
	if !models.ValidRole(req.Role) {
		errs = append(errs, security.FieldError{Field: "role", Message: "invalid role"})
	}
	// Department is required for everyone except admins.
	if req.Role != models.RoleAdmin && !models.ValidDepartment(req.Department) {
		errs = append(errs, security.FieldError{Field: "department", Message: "department must be Software or Marketing"})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}
	otpExpires := time.Now().Add(s.cfg.OTPValidity)

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
		IsVerified:   false,
		OTP:          &otp,
		OTPExpires:   &otpExpires,
	}
	if req.Role != models.RoleAdmin {
		user.Department = req.Department
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	body := fmt.Sprintf("Hello %s,\n\nYour verification code is: %s\n\nThis code will expire in %d minutes.",
		user.Name, otp, int(s.cfg.OTPValidity.Minutes()))
	if err := s.mailer.Send(ctx, user.Email, "Verify Your Account", body); err != nil {
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}

	return user, nil
}

// VerifyEmail checks the OTP and, on success, marks the account verified
// and issues a token.
func (s *AuthService) VerifyEmail(ctx context.Context, email, otp string) (string, *models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if user.IsVerified {
		return "", nil, ErrEmailAlreadyVerified
	}
	if !s.otpMatches(user, otp) {
		return "", nil, ErrInvalidOTP
	}

	user.IsVerified = true
	user.OTP = nil
	user.OTPExpires = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Authenticate verifies credentials and account state and issues a token.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !user.IsVerified {
		return "", nil, ErrEmailNotVerified
	}
	if !user.Active {
		return "", nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ForgotPassword stores a fresh OTP on a verified account and dispatches
// it by mail.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !user.IsVerified {
		return ErrEmailNotVerified
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}
	otpExpires := time.Now().Add(s.cfg.OTPValidity)
	user.OTP = &otp
	user.OTPExpires = &otpExpires

	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	body := fmt.Sprintf("Hello %s,\n\nYour password reset code is: %s\n\nThis code will expire in %d minutes.",
		user.Name, otp, int(s.cfg.OTPValidity.Minutes()))
	return s.mailer.Send(ctx, user.Email, "Password Reset OTP", body)
}

// ResetPassword sets a new password after OTP verification. Existing
// tokens are invalidated via the password-changed timestamp.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := s.validator.ValidatePassword(req.NewPassword); err != nil {
		return security.ValidationErrors{{Field: "newPassword", Message: err.Error()}}
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if !s.otpMatches(user, req.OTP) {
		return ErrInvalidOTP
	}

	return s.setPassword(ctx, user, req.NewPassword)
}

// ChangePassword verifies the current password and sets a new one for an
// authenticated principal.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := s.validator.ValidatePassword(req.NewPassword); err != nil {
		return security.ValidationErrors{{Field: "newPassword", Message: err.Error()}}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	return s.setPassword(ctx, user, req.NewPassword)
}

// setPassword hashes and stores a new password, clears any OTP state and
// records the change timestamp. The timestamp is backdated one second so
// a token issued in the same instant stays valid.
func (s *AuthService) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := s.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	changedAt := time.Now().Add(-time.Second)
	user.PasswordHash = hash
	user.PasswordChangedAt = &changedAt
	user.OTP = nil
	user.OTPExpires = nil

	return s.userRepo.Update(ctx, user)
}

// HashPassword generates a bcrypt hash of the plaintext password using
// the configured cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// IssueToken signs a bearer token for the user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, []byte(s.cfg.JWTSecret), s.cfg.JWTExpiry)
}

// otpMatches checks the stored OTP value and expiry.
func (s *AuthService) otpMatches(user *models.User, otp string) bool {
	if user.OTP == nil || user.OTPExpires == nil {
		return false
	}
	if otp == "" || *user.OTP != otp {
		return false
	}
	return user.OTPExpires.After(time.Now())
}

// generateOTP returns a 6-digit numeric code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
