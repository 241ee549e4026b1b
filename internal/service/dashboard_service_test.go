package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/media-catalog-api/internal/charts"
	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/repository"
	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
)

type fakeRequestSource struct {
	requests []models.ContentRequest
	calls    int32
}

func (f *fakeRequestSource) All(_ context.Context, actor models.Actor) ([]models.ContentRequest, error) {
	atomic.AddInt32(&f.calls, 1)
	scope := actor.Scope()
	var out []models.ContentRequest
	for _, r := range f.requests {
		if scope == nil || r.ViewerID == *scope {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeContentSource struct {
	content []models.Content
	err     error
}

func (f *fakeContentSource) All(context.Context) ([]models.Content, error) {
	return f.content, f.err
}

type fakeBugSource struct {
	bugs []models.Bug
}

func (f *fakeBugSource) All(context.Context, models.Actor) ([]models.Bug, error) {
	return f.bugs, nil
}

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := repository.NewCacheRepository(client, zap.NewNop())
	return NewCacheService(repo, NewMetricsService(), time.Minute, zap.NewNop(), true), mr
}

func dashboardFixture() (*fakeRequestSource, *fakeContentSource, *fakeBugSource) {
	day := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	requests := &fakeRequestSource{requests: []models.ContentRequest{
		{ID: "r1", ViewerID: "viewer-1", Status: models.RequestPending, Priority: models.PriorityHigh, CreatedAt: day},
		{ID: "r2", ViewerID: "viewer-2", Status: models.RequestApproved, Priority: models.PriorityLow, CreatedAt: day.AddDate(0, 0, -1)},
	}}
	content := &fakeContentSource{content: []models.Content{
		{ID: "c1", Type: "MOVIE", Status: models.ContentFeatured},
		{ID: "c2", Type: "TV_SERIES", Status: models.ContentAvailable},
		{ID: "c3", Type: "TV_SERIES", Status: models.ContentAvailable},
	}}
	bugs := &fakeBugSource{bugs: []models.Bug{{ID: "b1", Status: models.BugOpen, Priority: models.PriorityCritical}}}
	return requests, content, bugs
}

func TestDashboardStatsCachedPerScope(t *testing.T) {
	cache, _ := newTestCache(t)
	requests, content, bugs := dashboardFixture()
	svc := NewDashboardService(DashboardServiceParams{Requests: requests, Content: content, Bugs: bugs, Cache: cache})

	stats, hit, err := svc.Stats(context.Background(), manager)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, charts.Totals{TotalRequests: 2, PendingRequests: 1, TotalContent: 3, FeaturedContent: 1, TotalBugs: 1, OpenBugs: 1}, stats.Totals)

	stats, hit, err = svc.Stats(context.Background(), manager)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, stats.Totals.TotalRequests)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests.calls))

	stats, hit, err = svc.Stats(context.Background(), viewer)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, stats.Totals.TotalRequests)
	require.Len(t, stats.RecentRequests, 1)
	assert.Equal(t, "r1", stats.RecentRequests[0].ID)
}

func TestDashboardRevalidateDropsCachedViews(t *testing.T) {
	cache, mr := newTestCache(t)
	requests, content, bugs := dashboardFixture()
	svc := NewDashboardService(DashboardServiceParams{Requests: requests, Content: content, Bugs: bugs, Cache: cache})

	_, _, err := svc.Stats(context.Background(), manager)
	require.NoError(t, err)
	_, _, err = svc.Charts(context.Background(), manager)
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 2)

	cache.Revalidate(context.Background(), PathDashboard)
	assert.Empty(t, mr.Keys())

	_, hit, err := svc.Stats(context.Background(), manager)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestDashboardCharts(t *testing.T) {
	requests, content, bugs := dashboardFixture()
	svc := NewDashboardService(DashboardServiceParams{
		Requests: requests,
		Content:  content,
		Bugs:     bugs,
		Config:   DashboardServiceConfig{TrendDays: 3},
	})
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC) }

	resp, hit, err := svc.Charts(context.Background(), manager)
	require.NoError(t, err)
	assert.False(t, hit)

	wantTrend := []charts.TrendPoint{
		{Date: "2023-12-31", Label: "Dec 31", Count: 0},
		{Date: "2024-01-01", Label: "Jan 01", Count: 1},
		{Date: "2024-01-02", Label: "Jan 02", Count: 1},
	}
	if diff := cmp.Diff(wantTrend, resp.RequestTrends); diff != "" {
		t.Fatalf("trend mismatch (-want +got):\n%s", diff)
	}
	wantTypes := []charts.Slice{
		{Name: "Tv Series", Value: 2, Fill: charts.Chart1},
		{Name: "Movie", Value: 1, Fill: charts.Chart2},
	}
	if diff := cmp.Diff(wantTypes, resp.ContentTypes); diff != "" {
		t.Fatalf("content types mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, resp.BugStatus, 1)
	assert.Equal(t, "Open", resp.BugStatus[0].Name)
}

func TestDashboardPropagatesSourceErrors(t *testing.T) {
	requests, _, bugs := dashboardFixture()
	boom := appErrors.Clone(appErrors.ErrInternal, "failed to list content")
	svc := NewDashboardService(DashboardServiceParams{Requests: requests, Content: &fakeContentSource{err: boom}, Bugs: bugs})

	_, _, err := svc.Stats(context.Background(), manager)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
