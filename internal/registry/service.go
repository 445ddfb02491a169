package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"terra-offset/credit-exchange-backend/internal/inventory"
	"terra-offset/credit-exchange-backend/internal/ledger"
	"terra-offset/credit-exchange-backend/internal/pricing"
	"terra-offset/credit-exchange-backend/pkg/workflows"
)

var (
	// ErrNotFound means no project exists for the id
	ErrNotFound = errors.New("project not found")
	// ErrInvalidState means the project's current status forbids the
	// operation, e.g. editing or re-deciding an already reviewed project.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation marks malformed submission or decision input
	ErrValidation = errors.New("validation error")
)

// ListingCreator creates the tradable listing for a verified project
type ListingCreator interface {
	CreateListing(ctx context.Context, listing *inventory.Listing) error
}

// LedgerAppender mirrors registry events onto the audit trail
type LedgerAppender interface {
	Append(ctx context.Context, entry *ledger.Entry) (*ledger.Entry, error)
}

// Notifier delivers fire-and-forget notifications; failures never propagate
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, link string)
}

// SubmitProjectRequest carries an owner's submission
type SubmitProjectRequest struct {
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	ProjectType   ProjectType `json:"project_type"`
	Country       string      `json:"country"`
	Methodology   string      `json:"methodology"`
	VintageYear   int         `json:"vintage_year"`
	RequestedTons int64       `json:"requested_tons"`
	OwnerID       uuid.UUID   `json:"owner_id"`
}

// EditProjectRequest updates a project still under validation
type EditProjectRequest struct {
	Name          *string      `json:"name"`
	Description   *string      `json:"description"`
	ProjectType   *ProjectType `json:"project_type"`
	Country       *string      `json:"country"`
	Methodology   *string      `json:"methodology"`
	VintageYear   *int         `json:"vintage_year"`
	RequestedTons *int64       `json:"requested_tons"`
}

// DecideRequest carries a reviewer's decision. MRVScore is required for
// verification; it becomes the stored verifier confidence the pricing engine
// consumes.
type DecideRequest struct {
	Outcome  string `json:"outcome"`
	MRVScore int    `json:"mrv_score"`
}

// ProjectService owns the project approval state machine
type ProjectService interface {
	Submit(ctx context.Context, req SubmitProjectRequest) (*Project, error)
	Get(ctx context.Context, id uuid.UUID) (*Project, error)
	Edit(ctx context.Context, id uuid.UUID, req EditProjectRequest, ownerID uuid.UUID) (*Project, error)
	Decide(ctx context.Context, id uuid.UUID, req DecideRequest, reviewerID uuid.UUID) (*Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]Project, error)
}

type projectService struct {
	repo         ProjectRepository
	listings     ListingCreator
	ledger       LedgerAppender
	notifier     Notifier
	stateMachine *workflows.StateMachine
	logger       *zap.Logger
}

// NewService creates a new project registry service
func NewService(
	repo ProjectRepository,
	listings ListingCreator,
	ledgerSvc LedgerAppender,
	notifier Notifier,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		repo:         repo,
		listings:     listings,
		ledger:       ledgerSvc,
		notifier:     notifier,
		stateMachine: workflows.NewStateMachine(),
		logger:       logger,
	}
}

func (s *projectService) Submit(ctx context.Context, req SubmitProjectRequest) (*Project, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner_id is required", ErrValidation)
	}
	if !req.ProjectType.IsValid() {
		return nil, fmt.Errorf("%w: unknown project type %q", ErrValidation, req.ProjectType)
	}
	if req.RequestedTons <= 0 {
		return nil, fmt.Errorf("%w: requested_tons must be positive", ErrValidation)
	}
	if req.VintageYear <= 0 {
		return nil, fmt.Errorf("%w: vintage_year is required", ErrValidation)
	}

	project := &Project{
		ID:            uuid.New(),
		Name:          req.Name,
		Description:   req.Description,
		ProjectType:   req.ProjectType,
		Country:       req.Country,
		Methodology:   req.Methodology,
		VintageYear:   req.VintageYear,
		RequestedTons: req.RequestedTons,
		OwnerID:       req.OwnerID,
		Status:        workflows.StatusUnderValidation,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("Project submitted",
		zap.String("project_id", project.ID.String()),
		zap.String("name", project.Name),
		zap.String("owner_id", project.OwnerID.String()))

	return project, nil
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return project, nil
}

func (s *projectService) Edit(ctx context.Context, id uuid.UUID, req EditProjectRequest, ownerID uuid.UUID) (*Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if project.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: only the owner may edit a submission", ErrValidation)
	}
	if project.Status != workflows.StatusUnderValidation {
		return nil, fmt.Errorf("%w: project is already reviewed", ErrInvalidState)
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.ProjectType != nil {
		if !req.ProjectType.IsValid() {
			return nil, fmt.Errorf("%w: unknown project type %q", ErrValidation, *req.ProjectType)
		}
		project.ProjectType = *req.ProjectType
	}
	if req.Country != nil {
		project.Country = *req.Country
	}
	if req.Methodology != nil {
		project.Methodology = *req.Methodology
	}
	if req.VintageYear != nil {
		project.VintageYear = *req.VintageYear
	}
	if req.RequestedTons != nil {
		if *req.RequestedTons <= 0 {
			return nil, fmt.Errorf("%w: requested_tons must be positive", ErrValidation)
		}
		project.RequestedTons = *req.RequestedTons
	}

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// Decide performs the single allowed status transition for a project. On
// verification it prices the project, creates its listing with zero
// inventory, and mirrors an ISSUED entry for the requested tons onto the
// ledger: an audited promise of future issuance, not live supply.
func (s *projectService) Decide(ctx context.Context, id uuid.UUID, req DecideRequest, reviewerID uuid.UUID) (*Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Outcome != workflows.StatusVerified && req.Outcome != workflows.StatusRejected {
		return nil, fmt.Errorf("%w: outcome must be %s or %s", ErrValidation,
			workflows.StatusVerified, workflows.StatusRejected)
	}
	if !s.stateMachine.CanTransition(project.Status, req.Outcome) {
		return nil, fmt.Errorf("%w: project already reviewed", ErrInvalidState)
	}

	now := time.Now().UTC()
	project.ReviewedBy = &reviewerID
	project.ReviewedAt = &now

	if req.Outcome == workflows.StatusRejected {
		project.Status = workflows.StatusRejected
		if err := s.repo.Update(ctx, project); err != nil {
			return nil, fmt.Errorf("failed to record rejection: %w", err)
		}
		s.notifier.Notify(ctx, project.OwnerID, "Project Rejected",
			fmt.Sprintf("Your project %q was rejected during validation.", project.Name),
			"/developer/projects")
		return project, nil
	}

	if req.MRVScore < pricing.MRVScoreMin || req.MRVScore > pricing.MRVScoreMax {
		return nil, fmt.Errorf("%w: mrv_score must be between %d and %d", ErrValidation,
			pricing.MRVScoreMin, pricing.MRVScoreMax)
	}

	evaluation := pricing.Evaluate(pricing.Input{
		ProjectType: string(project.ProjectType),
		VintageYear: project.VintageYear,
		MRVScore:    req.MRVScore,
	})

	// The listing is the inseparable side effect of verification, so it is
	// created before the status is persisted: a failed create leaves the
	// project still decidable instead of verified with nothing to trade.
	listing := &inventory.Listing{
		ID:             project.ID,
		ProjectID:      project.ID,
		ProjectName:    project.Name,
		ProjectType:    string(project.ProjectType),
		Country:        project.Country,
		UnitPrice:      evaluation.UnitPrice,
		IntegrityScore: evaluation.IntegrityScore,
		AvailableTons:  0,
		VintageYear:    project.VintageYear,
	}
	if err := s.listings.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create credit listing: %w", err)
	}

	project.Status = workflows.StatusVerified
	project.MRVScore = &req.MRVScore
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to record verification: %w", err)
	}

	// Ledger mirror is advisory: a failed append is logged, never fatal
	entry := &ledger.Entry{
		TxHash:     ledger.NewTxHash(ledger.ActionIssued, project.ID.String(), "Registry", project.Name, float64(project.RequestedTons), now),
		Action:     ledger.ActionIssued,
		ListingID:  project.ID.String(),
		From:       "Registry",
		To:         project.Name,
		Timestamp:  now,
		AmountTons: float64(project.RequestedTons),
	}
	if _, err := s.ledger.Append(ctx, entry); err != nil {
		s.logger.Warn("Failed to append ISSUED ledger entry",
			zap.String("project_id", project.ID.String()),
			zap.Error(err))
	}

	s.notifier.Notify(ctx, project.OwnerID, "Project Verified",
		fmt.Sprintf("Your project %q was verified and listed at %s per tCO2e.", project.Name, evaluation.UnitPrice.StringFixed(2)),
		"/marketplace")

	s.logger.Info("Project verified",
		zap.String("project_id", project.ID.String()),
		zap.Int("integrity_score", evaluation.IntegrityScore),
		zap.String("unit_price", evaluation.UnitPrice.String()),
		zap.Int64("requested_tons", project.RequestedTons))

	return project, nil
}

func (s *projectService) List(ctx context.Context, filter ProjectFilter) ([]Project, error) {
	return s.repo.List(ctx, filter)
}
