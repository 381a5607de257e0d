package security

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/BishoyAdelAziz/backend/internal/models"
)

// FieldError is one structured validation failure, safe to show to users.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates field failures for a single request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidationService provides centralized input validation.
// All methods return descriptive errors that are safe to show to users.
type ValidationService struct{}

// NewValidationService creates a new validation service.
func NewValidationService() *ValidationService {
	return &ValidationService{}
}

var (
	refNoPattern = regexp.MustCompile(`^[A-Z0-9]{8,12}$`)
	otpPattern   = regexp.MustCompile(`^\d{6}$`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitPattern = regexp.MustCompile(`[0-9]`)
)

// ValidateEmail validates email address format according to RFC 5322.
func (v *ValidationService) ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 255 {
		return fmt.Errorf("email must be less than 255 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword validates password strength: 8-128 characters with at
// least one uppercase letter, one lowercase letter and one number.
func (v *ValidationService) ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must be less than 128 characters")
	}
	if !upperPattern.MatchString(password) {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !lowerPattern.MatchString(password) {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !digitPattern.MatchString(password) {
		return fmt.Errorf("password must contain at least one number")
	}
	return nil
}

// ValidateName validates a person or client display name.
func (v *ValidationService) ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return fmt.Errorf("name must be between 2 and 50 characters")
	}
	return nil
}

// ValidateOTP validates the one-time code format: exactly 6 digits.
func (v *ValidationService) ValidateOTP(otp string) error {
	if !otpPattern.MatchString(otp) {
		return fmt.Errorf("invalid OTP format")
	}
	return nil
}

// ValidateProjectName validates project title length.
func (v *ValidationService) ValidateProjectName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("project name is required")
	}
	if n := utf8.RuneCountInString(name); n < 3 || n > 100 {
		return fmt.Errorf("project name must be between 3 and 100 characters")
	}
	return nil
}

// ValidateBudget enforces the minimum project budget.
func (v *ValidationService) ValidateBudget(budget float64) error {
	if budget < 1000 {
		return fmt.Errorf("minimum project budget is 1000")
	}
	return nil
}

// ValidateInstallments checks every embedded installment and rejects
// duplicate reference numbers within the project.
func (v *ValidationService) ValidateInstallments(installments []models.Installment) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]bool, len(installments))

	for i, inst := range installments {
		field := func(name string) string { return fmt.Sprintf("installments[%d].%s", i, name) }

		refNo := strings.ToUpper(strings.TrimSpace(inst.RefNo))
		if !refNoPattern.MatchString(refNo) {
			errs = append(errs, FieldError{field("refNo"), "refNo must be 8-12 alphanumeric characters"})
		} else if seen[refNo] {
			errs = append(errs, FieldError{field("refNo"), "duplicate installment refNo"})
		}
		seen[refNo] = true

		if inst.Amount < 100 {
			errs = append(errs, FieldError{field("amount"), "minimum installment amount is 100"})
		}
		if inst.PaymentDate.IsZero() {
			errs = append(errs, FieldError{field("paymentDate"), "payment date is required"})
		}
		if !models.ValidPaymentMethod(inst.PaymentMethod) {
			errs = append(errs, FieldError{field("paymentMethod"), "invalid payment method"})
		}
		if inst.Status != "" && !models.ValidInstallmentStatus(inst.Status) {
			errs = append(errs, FieldError{field("status"), "invalid installment status"})
		}
		if !models.ValidCurrency(inst.Currency) {
			errs = append(errs, FieldError{field("currency"), "currency must be EGP or USD"})
		}
		if utf8.RuneCountInString(inst.Notes) > 500 {
			errs = append(errs, FieldError{field("notes"), "notes cannot exceed 500 characters"})
		}
	}

	return errs
}
