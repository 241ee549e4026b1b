package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/service"
	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
)

type fakeContentRequestSrv struct {
	created    service.CreateContentRequestRequest
	filter     models.ContentRequestFilter
	query      service.ListQuery
	actor      models.Actor
	statusID   string
	status     service.UpdateContentRequestStatusRequest
	items      []models.ContentRequest
	pagination *models.Pagination
	err        error
}

func (f *fakeContentRequestSrv) Create(_ context.Context, actor models.Actor, req service.CreateContentRequestRequest) (*models.ContentRequest, error) {
	f.actor, f.created = actor, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.ContentRequest{ID: "req-1", Title: req.Title, Status: models.RequestPending, ViewerID: actor.UserID}, nil
}

func (f *fakeContentRequestSrv) List(_ context.Context, actor models.Actor, filter models.ContentRequestFilter, query service.ListQuery) ([]models.ContentRequest, *models.Pagination, error) {
	f.actor, f.filter, f.query = actor, filter, query
	return f.items, f.pagination, f.err
}

func (f *fakeContentRequestSrv) Get(_ context.Context, _ models.Actor, id string) (*models.ContentRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ContentRequest{ID: id}, nil
}

func (f *fakeContentRequestSrv) UpdateStatus(_ context.Context, _ models.Actor, id string, req service.UpdateContentRequestStatusRequest) (*models.ContentRequest, error) {
	f.statusID, f.status = id, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.ContentRequest{ID: id, Status: req.Status}, nil
}

func (f *fakeContentRequestSrv) Assign(_ context.Context, _ models.Actor, id string, req service.AssignContentRequestRequest) (*models.ContentRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ContentRequest{ID: id, ReviewedBy: &req.ReviewerID}, nil
}

func TestContentRequestHandlerListParsesFilters(t *testing.T) {
	svc := &fakeContentRequestSrv{
		items:      []models.ContentRequest{{ID: "req-1"}},
		pagination: &models.Pagination{Page: 2, PageSize: 5, TotalCount: 6},
	}
	handler := NewContentRequestHandler(svc)
	target := "/content-requests?q=lion&sort=title&dir=asc&status=pending,in_review&priority=HIGH&category=Movie&category=Series&from=2024-01-01&page=2&page_size=5"
	c, rec := newTestContext(http.MethodGet, target, nil, managerClaims)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.RequestStatus{models.RequestPending, models.RequestInReview}, svc.filter.Statuses)
	assert.Equal(t, []models.Priority{models.PriorityHigh}, svc.filter.Priorities)
	assert.Equal(t, []string{"Movie", "Series"}, svc.filter.Categories)
	require.NotNil(t, svc.filter.CreatedFrom)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *svc.filter.CreatedFrom)
	assert.Nil(t, svc.filter.CreatedTo)
	assert.Equal(t, service.ListQuery{Search: "lion", SortBy: "title", SortDir: "asc", Page: 2, PageSize: 5}, svc.query)

	var envelope struct {
		Data       []models.ContentRequest `json:"data"`
		Pagination models.Pagination       `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 1)
	assert.Equal(t, 6, envelope.Pagination.TotalCount)
}

func TestContentRequestHandlerListRejectsBadDate(t *testing.T) {
	handler := NewContentRequestHandler(&fakeContentRequestSrv{})
	c, rec := newTestContext(http.MethodGet, "/content-requests?to=yesterday", nil, viewerClaims)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContentRequestHandlerCreate(t *testing.T) {
	svc := &fakeContentRequestSrv{}
	handler := NewContentRequestHandler(svc)
	body := []byte(`{"title":"Moana 2","description":"Please add the sequel","priority":"HIGH","category":"Movie"}`)
	c, rec := newTestContext(http.MethodPost, "/content-requests", body, viewerClaims)
	c.Request.Header.Set("User-Agent", "test-agent")

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Moana 2", svc.created.Title)
	assert.Equal(t, models.PriorityHigh, svc.created.Priority)
	assert.Equal(t, "viewer-1", svc.actor.UserID)
	assert.Equal(t, "test-agent", svc.actor.UserAgent)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "req-1", envelope.Data["id"])
}

func TestContentRequestHandlerCreateMalformedBody(t *testing.T) {
	handler := NewContentRequestHandler(&fakeContentRequestSrv{})
	c, rec := newTestContext(http.MethodPost, "/content-requests", []byte(`{"title":`), viewerClaims)

	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error["code"])
}

func TestContentRequestHandlerCreateRateLimited(t *testing.T) {
	handler := NewContentRequestHandler(&fakeContentRequestSrv{err: appErrors.ErrRateLimited})
	body := []byte(`{"title":"Moana 2","description":"Please add the sequel","priority":"HIGH","category":"Movie"}`)
	c, rec := newTestContext(http.MethodPost, "/content-requests", body, viewerClaims)

	handler.Create(c)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestContentRequestHandlerUpdateStatusUsesPathID(t *testing.T) {
	svc := &fakeContentRequestSrv{}
	handler := NewContentRequestHandler(svc)
	c, rec := newTestContext(http.MethodPatch, "/content-requests/req-9/status", []byte(`{"status":"APPROVED"}`), managerClaims)
	c.Params = append(c.Params, ginParam("id", "req-9"))

	handler.UpdateStatus(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-9", svc.statusID)
	assert.Equal(t, models.RequestApproved, svc.status.Status)
}

func TestContentRequestHandlerGetNotFound(t *testing.T) {
	handler := NewContentRequestHandler(&fakeContentRequestSrv{err: appErrors.Clone(appErrors.ErrNotFound, "content request not found")})
	c, rec := newTestContext(http.MethodGet, "/content-requests/missing", nil, viewerClaims)
	c.Params = append(c.Params, ginParam("id", "missing"))

	handler.Get(c)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "content request not found", envelope.Error["message"])
}
