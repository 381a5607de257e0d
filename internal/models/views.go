package models

import "time"

// ============================================================================
// View Models - Role-based serialization policy
// ============================================================================

// ProjectView is the single serialization policy for projects. Financial
// fields (budget, deposit, exchange rate, installments, completion,
// pending edit) are only present for admin and moderator viewers; every
// handler that returns a project goes through this type so the stripping
// rule cannot drift between endpoints.
type ProjectView struct {
	ID              string        `json:"id"`
	ProjectName     string        `json:"projectName"`
	Description     string        `json:"description,omitempty"`
	ClientID        string        `json:"client"`
	Currency        Currency      `json:"currency"`
	StartDate       time.Time     `json:"startDate"`
	EndDate         *time.Time    `json:"endDate,omitempty"`
	Status          ProjectStatus `json:"status"`
	CreatedBy       string        `json:"createdBy"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	EditStatus      EditStatus    `json:"editStatus,omitempty"`
	EditRequestedBy *string       `json:"editRequestedBy,omitempty"`
	EditNotes       string        `json:"editNotes,omitempty"`

	// Financial fields, omitted for viewers outside {admin, moderator}.
	Budget               *float64      `json:"budget,omitempty"`
	Deposit              *float64      `json:"deposit,omitempty"`
	ExchangeRate         *float64      `json:"exchangeRate,omitempty"`
	Installments         []Installment `json:"installments,omitempty"`
	CompletionPercentage *float64      `json:"completionPercentage,omitempty"`
	PendingEdit          *PendingEdit  `json:"pendingEdit,omitempty"`
}

// CanViewFinancials reports whether the role may see monetary project data.
func CanViewFinancials(role Role) bool {
	return role == RoleAdmin || role == RoleModerator
}

// NewProjectView applies the serialization policy for the given viewer role.
func NewProjectView(p *Project, viewer Role) ProjectView {
	v := ProjectView{
		ID:              p.ID,
		ProjectName:     p.Name,
		Description:     p.Description,
		ClientID:        p.ClientID,
		Currency:        p.Currency,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		Status:          p.Status,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		EditStatus:      p.EditStatus,
		EditRequestedBy: p.EditRequestedBy,
		EditNotes:       p.EditNotes,
	}

	if CanViewFinancials(viewer) {
		budget := p.Budget
		completion := p.CompletionPercentage
		v.Budget = &budget
		v.Deposit = p.Deposit
		v.ExchangeRate = p.ExchangeRate
		v.Installments = p.Installments
		v.CompletionPercentage = &completion
		v.PendingEdit = p.PendingEdit
	}

	return v
}

// NewProjectViews applies the policy to a list.
func NewProjectViews(projects []Project, viewer Role) []ProjectView {
	views := make([]ProjectView, 0, len(projects))
	for i := range projects {
		views = append(views, NewProjectView(&projects[i], viewer))
	}
	return views
}
