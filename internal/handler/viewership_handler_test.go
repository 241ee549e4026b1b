package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/media-catalog-api/internal/charts"
	"github.com/noah-isme/media-catalog-api/internal/dto"
	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/service"
)

type fakeViewershipSrv struct {
	days  int
	calls int
}

func (f *fakeViewershipSrv) Stats(context.Context, models.Actor) (*charts.ViewershipSummary, bool, error) {
	f.calls++
	return &charts.ViewershipSummary{}, false, nil
}

func (f *fakeViewershipSrv) Trends(_ context.Context, _ models.Actor, days int) (*dto.ViewershipTrendsResponse, bool, error) {
	f.calls++
	f.days = days
	return &dto.ViewershipTrendsResponse{Days: days}, true, nil
}

func (f *fakeViewershipSrv) List(context.Context, models.Actor, service.ListQuery) ([]models.ViewershipMetric, *models.Pagination, error) {
	f.calls++
	return nil, &models.Pagination{}, nil
}

func TestViewershipHandlerTrendsDays(t *testing.T) {
	svc := &fakeViewershipSrv{}
	handler := NewViewershipHandler(svc)
	c, rec := newTestContext(http.MethodGet, "/viewership/trends?days=14", nil, managerClaims)

	handler.Trends(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 14, svc.days)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
}

func TestViewershipHandlerTrendsRejectsBadDays(t *testing.T) {
	svc := &fakeViewershipSrv{}
	handler := NewViewershipHandler(svc)

	for _, raw := range []string{"abc", "-3"} {
		c, rec := newTestContext(http.MethodGet, "/viewership/trends?days="+raw, nil, managerClaims)
		handler.Trends(c)
		assert.Equal(t, http.StatusBadRequest, rec.Code, raw)
	}
	assert.Zero(t, svc.calls)
}
