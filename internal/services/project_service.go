// Package services provides the business logic layer for the back office
// API: the project lifecycle manager, authentication/OTP flows, and the
// mail collaborator boundary.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/BishoyAdelAziz/backend/internal/repository"
	"github.com/BishoyAdelAziz/backend/internal/security"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Edit-approval workflow errors. Handlers map these to 400 responses.
var (
	ErrEmptyEditRequest     = errors.New("no changes requested")
	ErrEditAlreadyPending   = errors.New("edit request already pending")
	ErrNoPendingEdit        = errors.New("no pending edit request")
	ErrExchangeRateRequired = errors.New("exchange rate is required for USD projects")
	ErrEndBeforeStart       = errors.New("end date must be after start date")
	ErrClientRequired       = errors.New("client is required")
)

// CompletedTotal sums the project's completed installments in the
// project's currency, rounded to 2 decimal places. Installments in the
// other currency are converted through the project exchange rate:
// USD amounts multiply by the rate, EGP amounts divide by it.
func CompletedTotal(p *models.Project) (float64, error) {
	total := decimal.Zero

	var rate decimal.Decimal
	if p.ExchangeRate != nil {
		rate = decimal.NewFromFloat(*p.ExchangeRate)
	}

	for _, inst := range p.Installments {
		if inst.Status != models.InstallmentCompleted {
			continue
		}

		amount := decimal.NewFromFloat(inst.Amount)
		if inst.Currency != p.Currency {
			if rate.LessThanOrEqual(decimal.Zero) {
				return 0, ErrExchangeRateRequired
			}
			if inst.Currency == models.CurrencyUSD && p.Currency == models.CurrencyEGP {
				amount = amount.Mul(rate)
			} else {
				amount = amount.Div(rate)
			}
		}
		total = total.Add(amount)
	}

	return total.Round(2).InexactFloat64(), nil
}

// CompletionPercentage derives the paid share of the budget from the
// completed installments: clamp(total/budget × 100, 0, 100), 2 decimal
// places. A budget of zero or less yields 0.
func CompletionPercentage(p *models.Project) (float64, error) {
	if p.Budget <= 0 {
		return 0, nil
	}

	total, err := CompletedTotal(p)
	if err != nil {
		return 0, err
	}

	pct := decimal.NewFromFloat(total).
		Div(decimal.NewFromFloat(p.Budget)).
		Mul(decimal.NewFromInt(100))

	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	if pct.IsNegative() {
		pct = decimal.Zero
	}

	return pct.Round(2).InexactFloat64(), nil
}

// RecomputeCompletion refreshes the derived completion percentage in place.
func RecomputeCompletion(p *models.Project) error {
	pct, err := CompletionPercentage(p)
	if err != nil {
		return err
	}
	p.CompletionPercentage = pct
	return nil
}

// StageEdit performs the none→pending transition in memory: the patch is
// stored verbatim, the requester recorded, and the workflow state set to
// pending. Rejected when the patch is empty or a request is already
// pending.
func StageEdit(p *models.Project, patch models.PendingEdit, requestedBy string) error {
	if patch.IsEmpty() {
		return ErrEmptyEditRequest
	}
	if p.EditStatus == models.EditStatusPending {
		return ErrEditAlreadyPending
	}

	p.PendingEdit = &patch
	p.EditRequestedBy = &requestedBy
	p.EditStatus = models.EditStatusPending
	return nil
}

// ApplyEditDecision performs the pending→approved or pending→rejected
// transition in memory. On approval, exactly the fields present in the
// staged patch are merged into the project and the completion percentage
// is recomputed; on rejection no substantive field changes. Either way
// the staged patch is cleared and the decision notes stored.
func ApplyEditDecision(p *models.Project, approve bool, notes string) error {
	if p.EditStatus != models.EditStatusPending {
		return ErrNoPendingEdit
	}

	if approve {
		if p.PendingEdit != nil {
			if p.PendingEdit.Budget != nil {
				p.Budget = *p.PendingEdit.Budget
			}
			if p.PendingEdit.Installments != nil {
				p.Installments = p.PendingEdit.Installments
			}
		}
		if err := RecomputeCompletion(p); err != nil {
			return err
		}
		p.EditStatus = models.EditStatusApproved
		if notes == "" {
			notes = "Edit approved"
		}
	} else {
		p.EditStatus = models.EditStatusRejected
		if notes == "" {
			notes = "Edit rejected"
		}
	}

	p.EditNotes = notes
	p.PendingEdit = nil
	return nil
}

// ProjectService owns the project lifecycle: creation, partial updates,
// the edit-approval workflow, and the monetary derivations. All
// persistence for workflow transitions goes through the repository's
// compare-and-swap write so concurrent transitions cannot both win.
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	clientRepo  *repository.ClientRepository
	validator   *security.ValidationService
}

// NewProjectService creates a project service with its repositories.
func NewProjectService() *ProjectService {
	return &ProjectService{
		projectRepo: repository.NewProjectRepository(),
		clientRepo:  repository.NewClientRepository(),
		validator:   security.NewValidationService(),
	}
}

// validate checks the substantive project fields shared by create and
// update paths.
func (s *ProjectService) validate(p *models.Project) error {
	var errs security.ValidationErrors

	if err := s.validator.ValidateProjectName(p.Name); err != nil {
		errs = append(errs, security.FieldError{Field: "projectName", Message: err.Error()})
	}
	if err := s.validator.ValidateBudget(p.Budget); err != nil {
		errs = append(errs, security.FieldError{Field: "budget", Message: err.Error()})
	}
	if !models.ValidCurrency(p.Currency) {
		errs = append(errs, security.FieldError{Field: "currency", Message: "currency must be EGP or USD"})
	}
	if p.Currency == models.CurrencyUSD && (p.ExchangeRate == nil || *p.ExchangeRate <= 0) {
		errs = append(errs, security.FieldError{Field: "exchangeRate", Message: ErrExchangeRateRequired.Error()})
	}
	if p.Deposit != nil && *p.Deposit < 0 {
		errs = append(errs, security.FieldError{Field: "deposit", Message: "deposit cannot be negative"})
	}
	if p.StartDate.IsZero() {
		errs = append(errs, security.FieldError{Field: "startDate", Message: "start date is required"})
	}
	if p.EndDate != nil && !p.EndDate.After(p.StartDate) {
		errs = append(errs, security.FieldError{Field: "endDate", Message: ErrEndBeforeStart.Error()})
	}
	if p.ClientID == "" {
		errs = append(errs, security.FieldError{Field: "client", Message: ErrClientRequired.Error()})
	}

	errs = append(errs, s.validator.ValidateInstallments(p.Installments)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Create builds and persists a new project. Status always starts at
// planned and the completion percentage is derived before the write.
func (s *ProjectService) Create(ctx context.Context, req models.CreateProjectRequest, createdBy string) (*models.Project, error) {
	p := &models.Project{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.ProjectName),
		Description:  strings.TrimSpace(req.Description),
		ClientID:     req.ClientID,
		Budget:       req.Budget,
		Deposit:      req.Deposit,
		Currency:     req.Currency,
		ExchangeRate: req.ExchangeRate,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       models.StatusPlanned,
		Installments: normalizeInstallments(req.Installments),
		CreatedBy:    createdBy,
	}
	if p.Currency == "" {
		p.Currency = models.CurrencyEGP
	}

	if err := s.validate(p); err != nil {
		return nil, err
	}

	if _, err := s.clientRepo.FindByID(ctx, p.ClientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, security.ValidationErrors{{Field: "client", Message: "client not found"}}
		}
		return nil, err
	}

	if err := RecomputeCompletion(p); err != nil {
		return nil, security.ValidationErrors{{Field: "exchangeRate", Message: err.Error()}}
	}

	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get retrieves a project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	return s.projectRepo.FindByID(ctx, id)
}

// List retrieves projects filtered by status and client substring.
func (s *ProjectService) List(ctx context.Context, status models.ProjectStatus, client string) ([]models.Project, error) {
	if status != "" && !models.ValidProjectStatus(status) {
		return nil, security.ValidationErrors{{Field: "status", Message: "invalid project status"}}
	}
	return s.projectRepo.List(ctx, status, client)
}

// Update applies a partial update: only fields present in the request
// change. The completion percentage is recomputed when budget or
// installments changed.
func (s *ProjectService) Update(ctx context.Context, id string, req models.UpdateProjectRequest) (*models.Project, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ProjectName != nil {
		p.Name = strings.TrimSpace(*req.ProjectName)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.ClientID != nil {
		p.ClientID = *req.ClientID
	}
	if req.Budget != nil {
		p.Budget = *req.Budget
	}
	if req.Deposit != nil {
		p.Deposit = req.Deposit
	}
	if req.Currency != nil {
		p.Currency = *req.Currency
	}
	if req.ExchangeRate != nil {
		p.ExchangeRate = req.ExchangeRate
	}
	if req.StartDate != nil {
		p.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		p.EndDate = req.EndDate
	}
	if req.Status != nil {
		if !models.ValidProjectStatus(*req.Status) {
			return nil, security.ValidationErrors{{Field: "status", Message: "invalid project status"}}
		}
		p.Status = *req.Status
	}
	if req.Installments != nil {
		p.Installments = normalizeInstallments(req.Installments)
	}

	if err := s.validate(p); err != nil {
		return nil, err
	}

	if req.Budget != nil || req.Installments != nil || req.Currency != nil || req.ExchangeRate != nil {
		if err := RecomputeCompletion(p); err != nil {
			return nil, security.ValidationErrors{{Field: "exchangeRate", Message: err.Error()}}
		}
	}

	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a project permanently.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.projectRepo.Delete(ctx, id)
}

// RequestEdit stages a budget/installments patch for admin approval.
// The patch itself is validated before staging so an approved edit can
// never introduce invalid data.
func (s *ProjectService) RequestEdit(ctx context.Context, id string, req models.RequestEditRequest, requestedBy string) (*models.Project, error) {
	patch := models.PendingEdit{Budget: req.Budget}
	if req.Installments != nil {
		patch.Installments = normalizeInstallments(req.Installments)
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyEditRequest
	}

	var errs security.ValidationErrors
	if patch.Budget != nil {
		if err := s.validator.ValidateBudget(*patch.Budget); err != nil {
			errs = append(errs, security.FieldError{Field: "budget", Message: err.Error()})
		}
	}
	errs = append(errs, s.validator.ValidateInstallments(patch.Installments)...)
	if len(errs) > 0 {
		return nil, errs
	}

	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Preview the merge so a patch that cannot be approved (staged
	// installments in the other currency with no exchange rate on the
	// project) is rejected here rather than at decision time.
	preview := *p
	if patch.Budget != nil {
		preview.Budget = *patch.Budget
	}
	if patch.Installments != nil {
		preview.Installments = patch.Installments
	}
	if err := RecomputeCompletion(&preview); err != nil {
		return nil, security.ValidationErrors{{Field: "exchangeRate", Message: err.Error()}}
	}

	loadedVersion := p.EditVersion
	if err := StageEdit(p, patch, requestedBy); err != nil {
		return nil, err
	}

	if err := s.projectRepo.UpdateEditStateCAS(ctx, p, loadedVersion); err != nil {
		return nil, err
	}
	return p, nil
}

// DecideEdit approves or rejects the pending edit request.
func (s *ProjectService) DecideEdit(ctx context.Context, id string, approve bool, notes string) (*models.Project, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	loadedVersion := p.EditVersion
	if err := ApplyEditDecision(p, approve, notes); err != nil {
		return nil, err
	}

	if err := s.projectRepo.UpdateEditStateCAS(ctx, p, loadedVersion); err != nil {
		return nil, err
	}
	return p, nil
}

// normalizeInstallments uppercases reference numbers and defaults the
// per-installment status and currency, mirroring the schema defaults.
func normalizeInstallments(installments []models.Installment) []models.Installment {
	out := make([]models.Installment, len(installments))
	for i, inst := range installments {
		inst.RefNo = strings.ToUpper(strings.TrimSpace(inst.RefNo))
		if inst.Status == "" {
			inst.Status = models.InstallmentPending
		}
		if inst.Currency == "" {
			inst.Currency = models.CurrencyEGP
		}
		inst.Notes = strings.TrimSpace(inst.Notes)
		out[i] = inst
	}
	return out
}
