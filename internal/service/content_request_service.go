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

type contentRequestRepository interface {
	List(ctx context.Context, viewerID *string) ([]models.ContentRequest, error)
	FindByID(ctx context.Context, id string) (*models.ContentRequest, error)
	Create(ctx context.Context, req *models.ContentRequest) error
	UpdateStatus(ctx context.Context, id string, next models.RequestStatus, from []models.RequestStatus) (*models.ContentRequest, error)
	AssignReviewer(ctx context.Context, id, reviewerID string) (*models.ContentRequest, error)
}

// CreateContentRequestRequest is the payload for submitting a request.
type CreateContentRequestRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"required,min=10,max=2000"`
	Priority    models.Priority `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	Category    string          `json:"category" validate:"required,max=100"`
}

// UpdateContentRequestStatusRequest moves a request through its workflow.
type UpdateContentRequestStatusRequest struct {
	Status models.RequestStatus `json:"status" validate:"required,oneof=PENDING IN_REVIEW APPROVED ADDED"`
}

// AssignContentRequestRequest names the reviewing manager.
type AssignContentRequestRequest struct {
	ReviewerID string `json:"reviewed_by" validate:"required"`
}

// ContentRequestServiceConfig tunes the service.
type ContentRequestServiceConfig struct {
	EnforceTransitions bool
}

// ContentRequestService handles viewer content requests.
type ContentRequestService struct {
	repo      contentRequestRepository
	limiter   rateLimiter
	audit     auditRecorder
	cache     viewRevalidator
	metrics   rejectionRecorder
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ContentRequestServiceConfig
}

// ContentRequestServiceParams groups constructor dependencies.
type ContentRequestServiceParams struct {
	Repo      contentRequestRepository
	Limiter   rateLimiter
	Audit     auditRecorder
	Cache     viewRevalidator
	Metrics   rejectionRecorder
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    ContentRequestServiceConfig
}

// NewContentRequestService constructs the service.
func NewContentRequestService(params ContentRequestServiceParams) *ContentRequestService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = NewValidator()
	}
	return &ContentRequestService{
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

// Create submits a request on behalf of the caller, who becomes its viewer.
func (s *ContentRequestService) Create(ctx context.Context, actor models.Actor, req CreateContentRequestRequest) (*models.ContentRequest, error) {
	req.Title = SanitizeString(req.Title)
	req.Description = SanitizeString(req.Description)
	req.Category = SanitizeString(req.Category)
	if err := validateInput(s.validator, req); err != nil {
		return nil, err
	}
	if err := checkRate(ctx, s.limiter, "create-content-request-"+actor.UserID, "create_content_request", s.metrics, s.logger); err != nil {
		return nil, err
	}

	request := &models.ContentRequest{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		Status:      models.RequestPending,
		ViewerID:    actor.UserID,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		var missing *repository.MissingReferenceError
		if errors.As(err, &missing) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		s.logger.Error("failed to create content request", zap.Error(err))
		return nil, internalError(err, "failed to create content request")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionRequestCreate, models.AuditResourceContentRequest, request.ID, nil,
		map[string]interface{}{"title": request.Title, "priority": request.Priority})
	revalidate(ctx, s.cache, PathContentRequests, PathDashboard)
	return request, nil
}

// All returns every request visible to the actor, newest first.
func (s *ContentRequestService) All(ctx context.Context, actor models.Actor) ([]models.ContentRequest, error) {
	requests, err := s.repo.List(ctx, actor.Scope())
	if err != nil {
		return nil, internalError(err, "failed to list content requests")
	}
	return requests, nil
}

// List applies filters, search, sorting and pagination to the visible
// requests.
func (s *ContentRequestService) List(ctx context.Context, actor models.Actor, filter models.ContentRequestFilter, query ListQuery) ([]models.ContentRequest, *models.Pagination, error) {
	requests, err := s.All(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	if filter.Search == "" {
		filter.Search = query.Search
	}
	requests = listing.FilterContentRequests(requests, filter)
	listing.SortContentRequests(requests, listing.ParseSort(query.SortBy, query.SortDir))
	page, pagination := listing.Paginate(requests, query.Page, query.PageSize)
	return page, pagination, nil
}

// Get returns a request. Viewers can only see their own.
func (s *ContentRequestService) Get(ctx context.Context, actor models.Actor, id string) (*models.ContentRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "content request not found", "failed to load content request")
	}
	if !actor.IsManager() && request.ViewerID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "content request not found")
	}
	return request, nil
}

// UpdateStatus changes the request status. With transition enforcement on,
// only moves allowed by the workflow table succeed.
func (s *ContentRequestService) UpdateStatus(ctx context.Context, actor models.Actor, id string, req UpdateContentRequestStatusRequest) (*models.ContentRequest, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if err := validateInput(s.validator, req); err != nil {
		return nil, err
	}

	var from []models.RequestStatus
	if s.cfg.EnforceTransitions {
		from = models.RequestSourcesFor(req.Status)
	}
	request, err := s.repo.UpdateStatus(ctx, id, req.Status, from)
	if err != nil {
		var transition *repository.TransitionError
		if errors.As(err, &transition) {
			return nil, appErrors.Clonef(appErrors.ErrInvalidTransition, "cannot move content request from %s to %s",
				models.RequestStatus(transition.From).Label(), req.Status.Label())
		}
		return nil, notFoundOr(err, "content request not found", "failed to update content request status")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionRequestStatus, models.AuditResourceContentRequest, id, nil,
		map[string]interface{}{"status": request.Status})
	revalidate(ctx, s.cache, PathContentRequests, PathDashboard)
	return request, nil
}

// Assign sets the reviewer, who must be a content manager.
func (s *ContentRequestService) Assign(ctx context.Context, actor models.Actor, id string, req AssignContentRequestRequest) (*models.ContentRequest, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	req.ReviewerID = SanitizeString(req.ReviewerID)
	if err := validateInput(s.validator, req); err != nil {
		return nil, err
	}

	request, err := s.repo.AssignReviewer(ctx, id, req.ReviewerID)
	if err != nil {
		var missing *repository.MissingReferenceError
		switch {
		case errors.As(err, &missing):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		case errors.Is(err, repository.ErrRoleMismatch):
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only content managers can review content requests")
		}
		return nil, notFoundOr(err, "content request not found", "failed to assign content request")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionRequestAssign, models.AuditResourceContentRequest, id, nil,
		map[string]interface{}{"reviewed_by": req.ReviewerID})
	revalidate(ctx, s.cache, PathContentRequests)
	return request, nil
}
