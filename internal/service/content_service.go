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

type contentRepository interface {
	List(ctx context.Context) ([]models.Content, error)
	FindByID(ctx context.Context, id string) (*models.Content, error)
	Create(ctx context.Context, content *models.Content) error
	UpdateStatus(ctx context.Context, id string, status models.ContentStatus) (*models.Content, error)
	Assign(ctx context.Context, id string, userID *string) (*models.Content, error)
}

type posterScheduler interface {
	Schedule(contentID, name, url string) error
}

// ContentCreateRequest is the payload for adding a catalog item.
type ContentCreateRequest struct {
	Name        string               `json:"name" validate:"required,max=200"`
	Type        string               `json:"type" validate:"required,max=100"`
	Genre       string               `json:"genre" validate:"required,max=100"`
	Status      models.ContentStatus `json:"status" validate:"required,oneof=AVAILABLE FEATURED ARCHIVED REMOVED"`
	ReleaseDate string               `json:"release_date"`
	Duration    *int                 `json:"duration" validate:"omitempty,gt=0"`
	Rating      *string              `json:"rating" validate:"omitempty,max=10"`
	PosterURL   *string              `json:"poster_url" validate:"omitempty,max=500"`
	Description *string              `json:"description" validate:"omitempty,max=5000"`
}

// ContentStatusRequest sets a catalog item's status.
type ContentStatusRequest struct {
	Status models.ContentStatus `json:"status" validate:"required,oneof=AVAILABLE FEATURED ARCHIVED REMOVED"`
}

// ContentAssignRequest sets or clears the assigned user.
type ContentAssignRequest struct {
	AssignedUserID *string `json:"assigned_user_id"`
}

// ContentService manages the catalog.
type ContentService struct {
	repo      contentRepository
	limiter   rateLimiter
	audit     auditRecorder
	cache     viewRevalidator
	metrics   rejectionRecorder
	posters   posterScheduler
	validator *validator.Validate
	logger    *zap.Logger
}

// ContentServiceParams groups constructor dependencies.
type ContentServiceParams struct {
	Repo      contentRepository
	Limiter   rateLimiter
	Audit     auditRecorder
	Cache     viewRevalidator
	Metrics   rejectionRecorder
	Posters   posterScheduler
	Validator *validator.Validate
	Logger    *zap.Logger
}

// NewContentService constructs the service.
func NewContentService(params ContentServiceParams) *ContentService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = NewValidator()
	}
	return &ContentService{
		repo:      params.Repo,
		limiter:   params.Limiter,
		audit:     params.Audit,
		cache:     params.Cache,
		metrics:   params.Metrics,
		posters:   params.Posters,
		validator: validate,
		logger:    logger,
	}
}

// Create adds a catalog item. Creation is rate limited globally.
func (s *ContentService) Create(ctx context.Context, actor models.Actor, req ContentCreateRequest) (*models.Content, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	req.Name = SanitizeString(req.Name)
	req.Type = SanitizeString(req.Type)
	req.Genre = SanitizeString(req.Genre)
	req.Rating = sanitizeOptional(req.Rating)
	req.PosterURL = sanitizeOptional(req.PosterURL)
	req.Description = sanitizeOptional(req.Description)
	if err := validateInput(s.validator, req); err != nil {
		return nil, err
	}
	if req.PosterURL != nil {
		if err := s.validator.Var(*req.PosterURL, "url"); err != nil && !isLocalPath(*req.PosterURL) {
			return nil, validationFailed("poster_url", "invalid url")
		}
	}
	releaseDate, err := parseDate(req.ReleaseDate)
	if err != nil {
		return nil, validationFailed("release_date", "invalid date")
	}
	if err := checkRate(ctx, s.limiter, "create-content", "create_content", s.metrics, s.logger); err != nil {
		return nil, err
	}

	content := &models.Content{
		Name:        req.Name,
		Type:        req.Type,
		Genre:       req.Genre,
		Status:      req.Status,
		ReleaseDate: releaseDate,
		Duration:    req.Duration,
		Rating:      req.Rating,
		PosterURL:   req.PosterURL,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, content); err != nil {
		s.logger.Error("failed to create content", zap.Error(err))
		return nil, internalError(err, "failed to create content")
	}

	if content.PosterURL != nil && s.posters != nil {
		_ = s.posters.Schedule(content.ID, content.Name, *content.PosterURL)
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionContentCreate, models.AuditResourceContent, content.ID, nil,
		map[string]interface{}{"name": content.Name, "status": content.Status})
	revalidate(ctx, s.cache, PathContent, PathDashboard)
	return content, nil
}

func isLocalPath(p string) bool {
	return len(p) > 1 && p[0] == '/' && p[1] != '/'
}

// All returns the whole catalog, newest first.
func (s *ContentService) All(ctx context.Context) ([]models.Content, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list content")
	}
	return items, nil
}

// List applies filters, search, sorting and pagination.
func (s *ContentService) List(ctx context.Context, filter models.ContentFilter, query ListQuery) ([]models.Content, *models.Pagination, error) {
	items, err := s.All(ctx)
	if err != nil {
		return nil, nil, err
	}
	if filter.Search == "" {
		filter.Search = query.Search
	}
	items = listing.FilterContent(items, filter)
	listing.SortContent(items, listing.ParseSort(query.SortBy, query.SortDir))
	page, pagination := listing.Paginate(items, query.Page, query.PageSize)
	return page, pagination, nil
}

// Get returns a catalog item.
func (s *ContentService) Get(ctx context.Context, id string) (*models.Content, error) {
	content, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "content not found", "failed to load content")
	}
	return content, nil
}

// UpdateStatus sets any status; content has no workflow.
func (s *ContentService) UpdateStatus(ctx context.Context, actor models.Actor, id string, req ContentStatusRequest) (*models.Content, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if err := validateInput(s.validator, req); err != nil {
		return nil, err
	}
	content, err := s.repo.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return nil, notFoundOr(err, "content not found", "failed to update content status")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionContentStatus, models.AuditResourceContent, id, nil,
		map[string]interface{}{"status": content.Status})
	revalidate(ctx, s.cache, PathContent, PathDashboard)
	return content, nil
}

// Assign sets or clears the assigned user. Assigning features the item.
func (s *ContentService) Assign(ctx context.Context, actor models.Actor, id string, req ContentAssignRequest) (*models.Content, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	req.AssignedUserID = sanitizeOptional(req.AssignedUserID)

	content, err := s.repo.Assign(ctx, id, req.AssignedUserID)
	if err != nil {
		var missing *repository.MissingReferenceError
		if errors.As(err, &missing) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, notFoundOr(err, "content not found", "failed to assign content")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionContentAssign, models.AuditResourceContent, id, nil,
		map[string]interface{}{"assigned_user_id": req.AssignedUserID, "status": content.Status})
	revalidate(ctx, s.cache, PathContent, PathDashboard)
	return content, nil
}
