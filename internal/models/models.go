// Package models defines the domain entities and data transfer objects for
// the back office API. It includes database models mapped to PostgreSQL
// tables, request DTOs validated at the boundary, and view models that
// apply the role-based serialization policy.
package models

import "time"

// ============================================================================
// Enumerations
// ============================================================================

// Role is a user's access role. Authorization is exact-match against an
// allow-list per operation; there is no role hierarchy.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// Department is the organizational unit a non-admin user belongs to.
type Department string

const (
	DepartmentSoftware  Department = "Software"
	DepartmentMarketing Department = "Marketing"
)

// ValidDepartment reports whether d is one of the known departments.
func ValidDepartment(d Department) bool {
	return d == DepartmentSoftware || d == DepartmentMarketing
}

// ProjectStatus is the coarse lifecycle state of a project. No transition
// graph is enforced; ordering is by convention only.
type ProjectStatus string

const (
	StatusPlanned   ProjectStatus = "planned"
	StatusActive    ProjectStatus = "active"
	StatusOnHold    ProjectStatus = "on_hold"
	StatusCompleted ProjectStatus = "completed"
	StatusCancelled ProjectStatus = "cancelled"
)

// ValidProjectStatus reports whether s is one of the known statuses.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case StatusPlanned, StatusActive, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Currency tags monetary values. Only EGP and USD are supported.
type Currency string

const (
	CurrencyEGP Currency = "EGP"
	CurrencyUSD Currency = "USD"
)

// ValidCurrency reports whether c is one of the supported currencies.
func ValidCurrency(c Currency) bool {
	return c == CurrencyEGP || c == CurrencyUSD
}

// PaymentMethod is how an installment was paid.
type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentCheck        PaymentMethod = "check"
	PaymentCash         PaymentMethod = "cash"
)

// ValidPaymentMethod reports whether m is one of the known methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentBankTransfer, PaymentCreditCard, PaymentCheck, PaymentCash:
		return true
	}
	return false
}

// InstallmentStatus is the settlement state of a single installment.
// Only completed installments count toward the completion percentage.
type InstallmentStatus string

const (
	InstallmentPending   InstallmentStatus = "pending"
	InstallmentCompleted InstallmentStatus = "completed"
	InstallmentFailed    InstallmentStatus = "failed"
	InstallmentRefunded  InstallmentStatus = "refunded"
)

// ValidInstallmentStatus reports whether s is one of the known statuses.
func ValidInstallmentStatus(s InstallmentStatus) bool {
	switch s {
	case InstallmentPending, InstallmentCompleted, InstallmentFailed, InstallmentRefunded:
		return true
	}
	return false
}

// EditStatus is the state of a project's edit-approval workflow.
// The zero value means no edit request has ever been made.
//
// Invariant: EditStatusPending <=> a non-empty PendingEdit is stored.
type EditStatus string

const (
	EditStatusNone     EditStatus = ""
	EditStatusPending  EditStatus = "pending"
	EditStatusApproved EditStatus = "approved"
	EditStatusRejected EditStatus = "rejected"
)

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// User represents a principal with role-based access control.
//
// Database Table: users
// Security Note: PasswordHash and OTP state are never serialized.
type User struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"` // unique, stored lowercase
	PasswordHash      string     `json:"-"`
	Role              Role       `json:"role"`
	Department        Department `json:"department,omitempty"` // required unless admin
	DepartmentRoleID  *string    `json:"departmentRole,omitempty"`
	PasswordChangedAt *time.Time `json:"-"` // tokens issued before this are invalid
	Active            bool       `json:"-"`
	IsVerified        bool       `json:"isVerified"`
	OTP               *string    `json:"-"`
	OTPExpires        *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// ChangedPasswordAfter reports whether the password was changed after the
// given token issue time. Such tokens must be rejected.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	// Compare at second precision: JWT iat claims carry unix seconds.
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

// Client is a simple contact record with no lifecycle beyond CRUD.
//
// Database Table: clients
type Client struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	CompanyName string    `json:"companyName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Installment is a payment record embedded in a project. Installments are
// owned sub-documents stored as JSONB; they are never referenced
// independently of their project.
type Installment struct {
	RefNo         string            `json:"refNo"` // 8-12 alphanumeric, unique per project
	Amount        float64           `json:"amount"`
	PaymentDate   time.Time         `json:"paymentDate"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	Status        InstallmentStatus `json:"status"`
	Currency      Currency          `json:"currency"`
	Notes         string            `json:"notes,omitempty"`
}

// PendingEdit is a staged, unapplied patch awaiting admin approval.
// Only fields explicitly present in the patch are applied on approval; a
// nil field means "leave untouched".
type PendingEdit struct {
	Budget       *float64      `json:"budget,omitempty"`
	Installments []Installment `json:"installments,omitempty"`
}

// IsEmpty reports whether the patch carries no changes at all.
func (p *PendingEdit) IsEmpty() bool {
	return p == nil || (p.Budget == nil && p.Installments == nil)
}

// Project represents a client engagement. Installments and the pending
// edit are embedded documents owned exclusively by the project.
//
// Database Table: projects
type Project struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"projectName"`
	Description          string        `json:"description,omitempty"`
	ClientID             string        `json:"client"`
	Budget               float64       `json:"budget"`
	Deposit              *float64      `json:"deposit,omitempty"`
	Currency             Currency      `json:"currency"`
	ExchangeRate         *float64      `json:"exchangeRate,omitempty"` // required > 0 for USD projects
	StartDate            time.Time     `json:"startDate"`
	EndDate              *time.Time    `json:"endDate,omitempty"`
	Status               ProjectStatus `json:"status"`
	Installments         []Installment `json:"installments"`
	CompletionPercentage float64       `json:"completionPercentage"` // derived, 2 dp
	CreatedBy            string        `json:"createdBy"`
	PendingEdit          *PendingEdit  `json:"pendingEdit,omitempty"`
	EditRequestedBy      *string       `json:"editRequestedBy,omitempty"`
	EditStatus           EditStatus    `json:"editStatus,omitempty"`
	EditNotes            string        `json:"editNotes,omitempty"`
	EditVersion          int64         `json:"-"` // optimistic-concurrency token
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// DepartmentRole is a (department, role-label, creator) tuple maintained
// by admins.
//
// Database Table: department_roles
type DepartmentRole struct {
	ID         string     `json:"id"`
	Department Department `json:"department"`
	Role       string     `json:"role"`
	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
}
