package models

import "time"

// ============================================================================
// Data Transfer Objects (DTOs) - Request Bodies
// ============================================================================
//
// Every endpoint parses its body into one of these typed structs before any
// business logic runs. Pointer fields distinguish "absent" from zero values
// on partial updates.

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	ConfirmPassword string     `json:"confirmPassword"`
	Role            Role       `json:"role"`
	Department      Department `json:"department"`
}

// VerifyEmailRequest is the body for POST /api/auth/verify-email.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest is the body for POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body for POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePasswordRequest is the body for POST /api/auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// CreateProjectRequest is the body for POST /api/projects.
type CreateProjectRequest struct {
	ProjectName  string        `json:"projectName"`
	Description  string        `json:"description"`
	ClientID     string        `json:"client"`
	Budget       float64       `json:"budget"`
	Deposit      *float64      `json:"deposit"`
	Currency     Currency      `json:"currency"`
	ExchangeRate *float64      `json:"exchangeRate"`
	StartDate    time.Time     `json:"startDate"`
	EndDate      *time.Time    `json:"endDate"`
	Installments []Installment `json:"installments"`
}

// UpdateProjectRequest is the body for PATCH /api/projects/:id.
// Only non-nil fields are applied.
type UpdateProjectRequest struct {
	ProjectName  *string        `json:"projectName"`
	Description  *string        `json:"description"`
	ClientID     *string        `json:"client"`
	Budget       *float64       `json:"budget"`
	Deposit      *float64       `json:"deposit"`
	Currency     *Currency      `json:"currency"`
	ExchangeRate *float64       `json:"exchangeRate"`
	StartDate    *time.Time     `json:"startDate"`
	EndDate      *time.Time     `json:"endDate"`
	Status       *ProjectStatus `json:"status"`
	Installments []Installment  `json:"installments"`
}

// RequestEditRequest is the body for POST /api/projects/:id/request-edit.
// At least one of the two fields must be present.
type RequestEditRequest struct {
	Budget       *float64      `json:"budget"`
	Installments []Installment `json:"installments"`
}

// ApproveEditRequest is the body for POST /api/projects/:id/approve-edit.
type ApproveEditRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

// CreateClientRequest is the body for POST /api/clients.
type CreateClientRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
}

// UpdateClientRequest is the body for PATCH /api/clients/:id.
type UpdateClientRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"companyName"`
}

// CreateDepartmentRoleRequest is the body for POST /api/department-roles.
type CreateDepartmentRoleRequest struct {
	Department Department `json:"department"`
	Role       string     `json:"role"`
}

// UpdateDepartmentRoleRequest is the body for PATCH /api/department-roles/:id.
type UpdateDepartmentRoleRequest struct {
	Department *Department `json:"department"`
	Role       *string     `json:"role"`
}

// CreateUserRequest is the body for POST /api/dashboard/users.
type CreateUserRequest struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	Role       Role       `json:"role"`
	Department Department `json:"department"`
}

// UpdateUserRequest is the body for PATCH /api/dashboard/users/:id.
type UpdateUserRequest struct {
	Name       *string     `json:"name"`
	Email      *string     `json:"email"`
	Role       *Role       `json:"role"`
	Department *Department `json:"department"`
	Active     *bool       `json:"active"`
}

// ============================================================================
// Response envelopes
// ============================================================================

// UserSummary is the principal summary returned by auth endpoints.
type UserSummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Department Department `json:"department,omitempty"`
}

// Summary builds the auth-endpoint view of a user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
	}
}

// AuthResponse is returned by login and verify-email.
type AuthResponse struct {
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token"`
	User    UserSummary `json:"user"`
}
