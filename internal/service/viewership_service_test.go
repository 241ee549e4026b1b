package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/media-catalog-api/internal/charts"
	"github.com/noah-isme/media-catalog-api/internal/models"
	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
)

type fakeViewershipRepo struct {
	metrics []models.ViewershipMetric
	since   *time.Time
	calls   int
}

func (f *fakeViewershipRepo) List(_ context.Context, since *time.Time) ([]models.ViewershipMetric, error) {
	f.calls++
	f.since = since
	return f.metrics, nil
}

func viewershipFixture(now time.Time) []models.ViewershipMetric {
	lion := &models.ContentSummary{ID: "c1", Name: "The Lion King"}
	moana := &models.ContentSummary{ID: "c2", Name: "Moana"}
	return []models.ViewershipMetric{
		{ContentID: "c1", UserID: "u1", Views: 3, WatchTimeMinutes: 200, CompletionRate: 80, LastWatchedAt: now.Add(-2 * time.Hour), Content: lion},
		{ContentID: "c1", UserID: "u2", Views: 1, WatchTimeMinutes: 40, CompletionRate: 40, LastWatchedAt: now.AddDate(0, 0, -1), Content: lion},
		{ContentID: "c2", UserID: "u1", Views: 2, WatchTimeMinutes: 100, CompletionRate: 90, LastWatchedAt: now.AddDate(0, 0, -1), Content: moana},
	}
}

func TestViewershipRequiresManager(t *testing.T) {
	svc := NewViewershipService(&fakeViewershipRepo{}, nil, zap.NewNop(), ViewershipServiceConfig{})

	_, _, err := svc.Stats(context.Background(), viewer)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, _, err = svc.Trends(context.Background(), viewer, 7)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	_, _, err = svc.List(context.Background(), viewer, ListQuery{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestViewershipStatsCached(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	cache, _ := newTestCache(t)
	repo := &fakeViewershipRepo{metrics: viewershipFixture(now)}
	svc := NewViewershipService(repo, cache, zap.NewNop(), ViewershipServiceConfig{TopN: 1})

	stats, hit, err := svc.Stats(context.Background(), manager)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 6, stats.TotalViews)
	assert.Equal(t, 2, stats.UniqueViewers)
	require.Len(t, stats.TopContent, 1)
	assert.Equal(t, "The Lion King", stats.TopContent[0].Content.Name)
	assert.InDelta(t, 70.0, stats.TopContent[0].CompletionRate, 0.001)

	_, hit, err = svc.Stats(context.Background(), manager)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.calls)
}

func TestViewershipTrends(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeViewershipRepo{metrics: viewershipFixture(now)}
	svc := NewViewershipService(repo, nil, zap.NewNop(), ViewershipServiceConfig{})
	svc.now = func() time.Time { return now }

	resp, _, err := svc.Trends(context.Background(), manager, 7)
	require.NoError(t, err)
	require.NotNil(t, repo.since)
	assert.Equal(t, now.AddDate(0, 0, -7), *repo.since)
	assert.Equal(t, 7, resp.Days)

	want := []charts.ViewershipPoint{
		{Date: "2024-03-09", Views: 3, WatchTime: 140},
		{Date: "2024-03-10", Views: 3, WatchTime: 200},
	}
	if diff := cmp.Diff(want, resp.Points); diff != "" {
		t.Fatalf("trend mismatch (-want +got):\n%s", diff)
	}
}

func TestViewershipTrendsDefaultDays(t *testing.T) {
	svc := NewViewershipService(&fakeViewershipRepo{}, nil, nil, ViewershipServiceConfig{TrendDays: 14})

	resp, _, err := svc.Trends(context.Background(), manager, 0)
	require.NoError(t, err)
	assert.Equal(t, 14, resp.Days)
	assert.Empty(t, resp.Points)
}

func TestViewershipListPaginates(t *testing.T) {
	now := time.Now()
	svc := NewViewershipService(&fakeViewershipRepo{metrics: viewershipFixture(now)}, nil, nil, ViewershipServiceConfig{})

	items, pagination, err := svc.List(context.Background(), manager, ListQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 3, pagination.TotalCount)
}
