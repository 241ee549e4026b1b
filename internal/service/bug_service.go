package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/media-catalog-api/internal/listing"
	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/repository"
	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
)

type bugRepository interface {
	List(ctx context.Context, reporterID *string) ([]models.Bug, error)
	FindByID(ctx context.Context, id string) (*models.Bug, error)
	Create(ctx context.Context, bug *models.Bug) error
	UpdateStatus(ctx context.Context, id string, next models.BugStatus, from []models.BugStatus) (*models.Bug, error)
	Assign(ctx context.Context, id string, assigneeID *string) (*models.Bug, error)
}

// CreateBugRequest is the payload for reporting a bug.
type CreateBugRequest struct {
	Title             string          `json:"title" validate:"required,max=200"`
	Description       string          `json:"description" validate:"required,min=10,max=2000"`
	Priority          models.Priority `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	BrowserDevice     *string         `json:"browser_device" validate:"omitempty,max=200"`
	AffectedContentID *string         `json:"affected_content_id"`
}

// UpdateBugStatusRequest moves a bug through its workflow.
type UpdateBugStatusRequest struct {
	Status models.BugStatus `json:"status" validate:"required,oneof=OPEN IN_PROGRESS FIXED VERIFIED CLOSED"`
}

// AssignBugRequest sets or clears the assignee.
type AssignBugRequest struct {
	AssignedToID *string `json:"assigned_to_id"`
}

// BugServiceConfig tunes the service.
type BugServiceConfig struct {
	EnforceTransitions bool
}

// BugService handles bug reports.
type BugService struct {
	repo      bugRepository
	limiter   rateLimiter
	audit     auditRecorder
	cache     viewRevalidator
	metrics   rejectionRecorder
	validator *validator.Validate
	logger    *zap.Logger
	cfg       BugServiceConfig
}

// BugServiceParams groups constructor dependencies.
type BugServiceParams struct {
	Repo      bugRepository
	Limiter   rateLimiter
	Audit     auditRecorder
	Cache     viewRevalidator
	Metrics   rejectionRecorder
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    BugServiceConfig
}

// NewBugService constructs the service.
func NewBugService(params BugServiceParams) *BugService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = NewValidator()
	}
	return &BugService{
		repo:      params.Repo,
		limiter:   params.Limiter,
		audit:     params.Audit,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		cfg:       params.Config,
	}
}

// Create files a bug with the caller as reporter.
func (s *BugService) Create(ctx context.Context, actor models.Actor, req CreateBugRequest) (*models.Bug, error) {
	req.Title = SanitizeString(req.Title)
	req.Description = SanitizeString(req.Description)
	req.BrowserDevice = sanitizeOptional(req.BrowserDevice)
	req.AffectedContentID = sanitizeOptional(req.AffectedContentID)
	if err := validateInput(s.validator, req); err != nil {
		return nil, err
	}
	if err := checkRate(ctx, s.limiter, "create-bug-"+actor.UserID, "create_bug", s.metrics, s.logger); err != nil {
		return nil, err
	}

	bug := &models.Bug{
		Title:             req.Title,
		Description:       req.Description,
		Priority:          req.Priority,
		Status:            models.BugOpen,
		BrowserDevice:     req.BrowserDevice,
		ReporterID:        actor.UserID,
		AffectedContentID: req.AffectedContentID,
	}
	if err := s.repo.Create(ctx, bug); err != nil {
		var missing *repository.MissingReferenceError
		if errors.As(err, &missing) {
			return nil, appErrors.Clonef(appErrors.ErrNotFound, "%s not found", missing.Entity)
		}
		s.logger.Error("failed to create bug", zap.Error(err))
		return nil, internalError(err, "failed to create bug")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionBugCreate, models.AuditResourceBug, bug.ID, nil,
		map[string]interface{}{"title": bug.Title, "priority": bug.Priority})
	revalidate(ctx, s.cache, PathBugs, PathDashboard)
	return bug, nil
}

// All returns every bug visible to the actor, newest first.
func (s *BugService) All(ctx context.Context, actor models.Actor) ([]models.Bug, error) {
	bugs, err := s.repo.List(ctx, actor.Scope())
	if err != nil {
		return nil, internalError(err, "failed to list bugs")
	}
	return bugs, nil
}

// List applies filters, search, sorting and pagination.
func (s *BugService) List(ctx context.Context, actor models.Actor, filter models.BugFilter, query ListQuery) ([]models.Bug, *models.Pagination, error) {
	bugs, err := s.All(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	if filter.Search == "" {
		filter.Search = query.Search
	}
	bugs = listing.FilterBugs(bugs, filter)
	listing.SortBugs(bugs, listing.ParseSort(query.SortBy, query.SortDir))
	page, pagination := listing.Paginate(bugs, query.Page, query.PageSize)
	return page, pagination, nil
}

// Get returns a bug. Viewers can only see bugs they reported.
func (s *BugService) Get(ctx context.Context, actor models.Actor, id string) (*models.Bug, error) {
	bug, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "bug not found", "failed to load bug")
	}
	if !actor.IsManager() && bug.ReporterID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "bug not found")
	}
	return bug, nil
}

// UpdateStatus changes the bug status.
func (s *BugService) UpdateStatus(ctx context.Context, actor models.Actor, id string, req UpdateBugStatusRequest) (*models.Bug, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if err := validateInput(s.validator, req); err != nil {
		return nil, err
	}

	var from []models.BugStatus
	if s.cfg.EnforceTransitions {
		from = models.BugSourcesFor(req.Status)
	}
	bug, err := s.repo.UpdateStatus(ctx, id, req.Status, from)
	if err != nil {
		var transition *repository.TransitionError
		if errors.As(err, &transition) {
			return nil, appErrors.Clonef(appErrors.ErrInvalidTransition, "cannot move bug from %s to %s",
				models.BugStatus(transition.From).Label(), req.Status.Label())
		}
		return nil, notFoundOr(err, "bug not found", "failed to update bug status")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionBugStatus, models.AuditResourceBug, id, nil,
		map[string]interface{}{"status": bug.Status})
	revalidate(ctx, s.cache, PathBugs, PathDashboard)
	return bug, nil
}

// Assign sets or clears the assignee. Only content managers can be assigned.
func (s *BugService) Assign(ctx context.Context, actor models.Actor, id string, req AssignBugRequest) (*models.Bug, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	req.AssignedToID = sanitizeOptional(req.AssignedToID)

	bug, err := s.repo.Assign(ctx, id, req.AssignedToID)
	if err != nil {
		var missing *repository.MissingReferenceError
		switch {
		case errors.As(err, &missing):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		case errors.Is(err, repository.ErrRoleMismatch):
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only content managers can be assigned bugs")
		}
		return nil, notFoundOr(err, "bug not found", "failed to assign bug")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionBugAssign, models.AuditResourceBug, id, nil,
		map[string]interface{}{"assigned_to_id": req.AssignedToID})
	revalidate(ctx, s.cache, PathBugs)
	return bug, nil
}
