package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/repository"
	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
	"github.com/noah-isme/media-catalog-api/pkg/ratelimit"
)

type fakeContentRequestRepo struct {
	requests   []models.ContentRequest
	listScope  *string
	created    *models.ContentRequest
	createErr  error
	updateErr  error
	updateFrom []models.RequestStatus
	assignErr  error
	findErr    error
}

func (f *fakeContentRequestRepo) List(_ context.Context, viewerID *string) ([]models.ContentRequest, error) {
	f.listScope = viewerID
	if viewerID == nil {
		return append([]models.ContentRequest(nil), f.requests...), nil
	}
	var out []models.ContentRequest
	for _, r := range f.requests {
		if r.ViewerID == *viewerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeContentRequestRepo) FindByID(_ context.Context, id string) (*models.ContentRequest, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, r := range f.requests {
		if r.ID == id {
			copy := r
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeContentRequestRepo) Create(_ context.Context, req *models.ContentRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	req.ID = "req-new"
	req.CreatedAt = time.Now()
	f.created = req
	return nil
}

func (f *fakeContentRequestRepo) UpdateStatus(_ context.Context, id string, next models.RequestStatus, from []models.RequestStatus) (*models.ContentRequest, error) {
	f.updateFrom = from
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.ContentRequest{ID: id, Status: next}, nil
}

func (f *fakeContentRequestRepo) AssignReviewer(_ context.Context, id, reviewerID string) (*models.ContentRequest, error) {
	if f.assignErr != nil {
		return nil, f.assignErr
	}
	return &models.ContentRequest{ID: id, ReviewedBy: &reviewerID}, nil
}

func newContentRequestService(repo *fakeContentRequestRepo, limiter rateLimiter, enforce bool) (*ContentRequestService, *recordingAudit, *recordingRevalidator, *countingRejections) {
	audit := &recordingAudit{}
	cache := &recordingRevalidator{}
	rejections := &countingRejections{}
	svc := NewContentRequestService(ContentRequestServiceParams{
		Repo:    repo,
		Limiter: limiter,
		Audit:   audit,
		Cache:   cache,
		Metrics: rejections,
		Logger:  zap.NewNop(),
		Config:  ContentRequestServiceConfig{EnforceTransitions: enforce},
	})
	return svc, audit, cache, rejections
}

func validRequest() CreateContentRequestRequest {
	return CreateContentRequestRequest{
		Title:       "  Encanto 2  ",
		Description: "Please add the sequel as soon as it is out",
		Priority:    models.PriorityHigh,
		Category:    "Animation",
	}
}

func TestCreateContentRequestSetsViewerAndPending(t *testing.T) {
	repo := &fakeContentRequestRepo{}
	svc, audit, cache, _ := newContentRequestService(repo, &stubLimiter{allow: true}, false)

	req, err := svc.Create(context.Background(), viewer, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "Encanto 2", req.Title)
	assert.Equal(t, viewer.UserID, req.ViewerID)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, []string{models.AuditActionRequestCreate}, audit.actions())
	assert.Equal(t, []string{PathContentRequests, PathDashboard}, cache.paths)
}

func TestCreateContentRequestValidationMessage(t *testing.T) {
	svc, _, _, _ := newContentRequestService(&fakeContentRequestRepo{}, nil, false)

	_, err := svc.Create(context.Background(), viewer, CreateContentRequestRequest{Title: "x", Description: "short", Priority: "URGENT"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "validation failed: description: must be at least 10 characters, priority: must be one of LOW, MEDIUM, HIGH, CRITICAL, category: is required", appErr.Message)
}

func TestCreateContentRequestRateLimited(t *testing.T) {
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), 5, time.Minute)
	svc, _, _, rejections := newContentRequestService(&fakeContentRequestRepo{}, limiter, false)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(context.Background(), viewer, validRequest())
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), viewer, validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrRateLimited))
	assert.Equal(t, "too many requests, please try again in a minute", err.Error())
	assert.Equal(t, []string{"create_content_request"}, rejections.ops)

	_, err = svc.Create(context.Background(), other, validRequest())
	assert.NoError(t, err, "limits are per viewer")
}

func TestCreateContentRequestFailsOpenWhenLimiterErrors(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("redis down")}
	svc, _, _, _ := newContentRequestService(&fakeContentRequestRepo{}, limiter, false)

	_, err := svc.Create(context.Background(), viewer, validRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"create-content-request-viewer-1"}, limiter.keys)
}

func TestCreateContentRequestMissingViewer(t *testing.T) {
	repo := &fakeContentRequestRepo{createErr: &repository.MissingReferenceError{Entity: "user", ID: "viewer-1"}}
	svc, _, _, _ := newContentRequestService(repo, nil, false)

	_, err := svc.Create(context.Background(), viewer, validRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "user not found", err.Error())
}

func TestListContentRequestsScopesViewers(t *testing.T) {
	repo := &fakeContentRequestRepo{requests: []models.ContentRequest{
		{ID: "r1", Title: "Moana", ViewerID: "viewer-1", Priority: models.PriorityLow, CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "r2", Title: "Frozen", ViewerID: "viewer-2", Priority: models.PriorityCritical, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}
	svc, _, _, _ := newContentRequestService(repo, nil, false)

	items, pagination, err := svc.List(context.Background(), viewer, models.ContentRequestFilter{}, ListQuery{})
	require.NoError(t, err)
	require.NotNil(t, repo.listScope)
	assert.Equal(t, "viewer-1", *repo.listScope)
	require.Len(t, items, 1)
	assert.Equal(t, "r1", items[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)

	items, _, err = svc.List(context.Background(), manager, models.ContentRequestFilter{}, ListQuery{SortBy: "priority", SortDir: "desc"})
	require.NoError(t, err)
	assert.Nil(t, repo.listScope)
	require.Len(t, items, 2)
	assert.Equal(t, "r2", items[0].ID)
}

func TestListContentRequestsSearch(t *testing.T) {
	repo := &fakeContentRequestRepo{requests: []models.ContentRequest{
		{ID: "r1", Title: "Moana", Category: "Animation"},
		{ID: "r2", Title: "Andor", Category: "Series"},
	}}
	svc, _, _, _ := newContentRequestService(repo, nil, false)

	items, _, err := svc.List(context.Background(), manager, models.ContentRequestFilter{}, ListQuery{Search: "SERIES"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "r2", items[0].ID)
}

func TestGetContentRequestHidesOtherViewers(t *testing.T) {
	repo := &fakeContentRequestRepo{requests: []models.ContentRequest{{ID: "r1", ViewerID: "viewer-2"}}}
	svc, _, _, _ := newContentRequestService(repo, nil, false)

	_, err := svc.Get(context.Background(), viewer, "r1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	got, err := svc.Get(context.Background(), manager, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)

	_, err = svc.Get(context.Background(), manager, "missing")
	require.Error(t, err)
	assert.Equal(t, "content request not found", err.Error())
}

func TestUpdateContentRequestStatusRequiresManager(t *testing.T) {
	svc, _, _, _ := newContentRequestService(&fakeContentRequestRepo{}, nil, false)

	_, err := svc.UpdateStatus(context.Background(), viewer, "r1", UpdateContentRequestStatusRequest{Status: models.RequestApproved})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestUpdateContentRequestStatusFreeFormByDefault(t *testing.T) {
	repo := &fakeContentRequestRepo{}
	svc, audit, _, _ := newContentRequestService(repo, nil, false)

	got, err := svc.UpdateStatus(context.Background(), manager, "r1", UpdateContentRequestStatusRequest{Status: models.RequestAdded})
	require.NoError(t, err)
	assert.Equal(t, models.RequestAdded, got.Status)
	assert.Nil(t, repo.updateFrom)
	assert.Equal(t, []string{models.AuditActionRequestStatus}, audit.actions())
}

func TestUpdateContentRequestStatusEnforced(t *testing.T) {
	repo := &fakeContentRequestRepo{updateErr: &repository.TransitionError{From: string(models.RequestPending), To: string(models.RequestAdded)}}
	svc, _, _, _ := newContentRequestService(repo, nil, true)

	_, err := svc.UpdateStatus(context.Background(), manager, "r1", UpdateContentRequestStatusRequest{Status: models.RequestAdded})
	require.Error(t, err)
	assert.Equal(t, []models.RequestStatus{models.RequestApproved, models.RequestAdded}, repo.updateFrom)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
	assert.Equal(t, "cannot move content request from Pending to Added", err.Error())
}

func TestUpdateContentRequestStatusNotFound(t *testing.T) {
	svc, _, _, _ := newContentRequestService(&fakeContentRequestRepo{updateErr: sql.ErrNoRows}, nil, false)

	_, err := svc.UpdateStatus(context.Background(), manager, "missing", UpdateContentRequestStatusRequest{Status: models.RequestInReview})
	require.Error(t, err)
	assert.Equal(t, "content request not found", err.Error())
}

func TestAssignContentRequestReviewerMustBeManager(t *testing.T) {
	svc, _, _, _ := newContentRequestService(&fakeContentRequestRepo{assignErr: repository.ErrRoleMismatch}, nil, false)

	_, err := svc.Assign(context.Background(), manager, "r1", AssignContentRequestRequest{ReviewerID: "viewer-2"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.Equal(t, "only content managers can review content requests", err.Error())
}

func TestAssignContentRequestMissingReviewer(t *testing.T) {
	repo := &fakeContentRequestRepo{assignErr: &repository.MissingReferenceError{Entity: "user", ID: "ghost"}}
	svc, _, _, _ := newContentRequestService(repo, nil, false)

	_, err := svc.Assign(context.Background(), manager, "r1", AssignContentRequestRequest{ReviewerID: "ghost"})
	require.Error(t, err)
	assert.Equal(t, "user not found", err.Error())
}

func TestAssignContentRequest(t *testing.T) {
	svc, _, cache, _ := newContentRequestService(&fakeContentRequestRepo{}, nil, false)

	got, err := svc.Assign(context.Background(), manager, "r1", AssignContentRequestRequest{ReviewerID: " mgr-2 "})
	require.NoError(t, err)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, "mgr-2", *got.ReviewedBy)
	assert.Equal(t, []string{PathContentRequests}, cache.paths)
}
