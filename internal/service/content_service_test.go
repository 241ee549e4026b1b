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
)

type fakeContentRepo struct {
	items     []models.Content
	created   *models.Content
	assignErr error
}

func (f *fakeContentRepo) List(context.Context) ([]models.Content, error) {
	return append([]models.Content(nil), f.items...), nil
}

func (f *fakeContentRepo) FindByID(_ context.Context, id string) (*models.Content, error) {
	for _, c := range f.items {
		if c.ID == id {
			copy := c
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeContentRepo) Create(_ context.Context, content *models.Content) error {
	content.ID = "content-new"
	f.created = content
	return nil
}

func (f *fakeContentRepo) UpdateStatus(_ context.Context, id string, status models.ContentStatus) (*models.Content, error) {
	if _, err := f.FindByID(context.Background(), id); err != nil {
		return nil, err
	}
	return &models.Content{ID: id, Status: status}, nil
}

func (f *fakeContentRepo) Assign(_ context.Context, id string, userID *string) (*models.Content, error) {
	if f.assignErr != nil {
		return nil, f.assignErr
	}
	status := models.ContentAvailable
	if userID != nil {
		status = models.ContentFeatured
	}
	return &models.Content{ID: id, AssignedUserID: userID, Status: status}, nil
}

type recordingScheduler struct {
	scheduled []string
}

func (r *recordingScheduler) Schedule(contentID, _, url string) error {
	r.scheduled = append(r.scheduled, contentID+"="+url)
	return nil
}

func validContent() ContentCreateRequest {
	return ContentCreateRequest{
		Name:        "The Lion King",
		Type:        "MOVIE",
		Genre:       "Animation",
		Status:      models.ContentAvailable,
		ReleaseDate: "1994-06-24",
		Duration:    intPtr(88),
		Rating:      strPtr("G"),
		PosterURL:   strPtr("https://image.tmdb.org/t/p/w500/lion.jpg"),
	}
}

func intPtr(v int) *int { return &v }

func newContentService(repo *fakeContentRepo, limiter rateLimiter, posters posterScheduler) *ContentService {
	return NewContentService(ContentServiceParams{
		Repo:    repo,
		Limiter: limiter,
		Audit:   &recordingAudit{},
		Cache:   &recordingRevalidator{},
		Posters: posters,
		Logger:  zap.NewNop(),
	})
}

func TestCreateContentRequiresManager(t *testing.T) {
	svc := newContentService(&fakeContentRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), viewer, validContent())
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestCreateContentParsesDateAndSchedulesPoster(t *testing.T) {
	repo := &fakeContentRepo{}
	scheduler := &recordingScheduler{}
	limiter := &stubLimiter{allow: true}
	svc := newContentService(repo, limiter, scheduler)

	content, err := svc.Create(context.Background(), manager, validContent())
	require.NoError(t, err)
	require.NotNil(t, content.ReleaseDate)
	assert.Equal(t, time.Date(1994, 6, 24, 0, 0, 0, 0, time.UTC), *content.ReleaseDate)
	assert.Equal(t, []string{"create-content"}, limiter.keys)
	assert.Equal(t, []string{"content-new=https://image.tmdb.org/t/p/w500/lion.jpg"}, scheduler.scheduled)
}

func TestCreateContentAcceptsLocalPoster(t *testing.T) {
	svc := newContentService(&fakeContentRepo{}, nil, nil)
	req := validContent()
	req.PosterURL = strPtr("/posters/the-lion-king.jpg")

	content, err := svc.Create(context.Background(), manager, req)
	require.NoError(t, err)
	assert.Equal(t, "/posters/the-lion-king.jpg", *content.PosterURL)
}

func TestCreateContentRejectsBadInput(t *testing.T) {
	svc := newContentService(&fakeContentRepo{}, nil, nil)

	tests := []struct {
		name    string
		mutate  func(*ContentCreateRequest)
		message string
	}{
		{"poster", func(r *ContentCreateRequest) { r.PosterURL = strPtr("not a url") }, "validation failed: poster_url: invalid url"},
		{"date", func(r *ContentCreateRequest) { r.ReleaseDate = "24/06/1994" }, "validation failed: release_date: invalid date"},
		{"duration", func(r *ContentCreateRequest) { r.Duration = intPtr(0) }, "validation failed: duration: must be positive"},
		{"status", func(r *ContentCreateRequest) { r.Status = "HIDDEN" }, "validation failed: status: must be one of AVAILABLE, FEATURED, ARCHIVED, REMOVED"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validContent()
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), manager, req)
			require.Error(t, err)
			assert.Equal(t, tc.message, appErrors.FromError(err).Message)
		})
	}
}

func TestListContentSortsByName(t *testing.T) {
	repo := &fakeContentRepo{items: []models.Content{
		{ID: "c1", Name: "Zootopia"},
		{ID: "c2", Name: "Aladdin"},
		{ID: "c3", Name: "moana"},
	}}
	svc := newContentService(repo, nil, nil)

	items, _, err := svc.List(context.Background(), models.ContentFilter{}, ListQuery{SortBy: "name", SortDir: "asc"})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"c2", "c3", "c1"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestUpdateContentStatusNotFound(t *testing.T) {
	svc := newContentService(&fakeContentRepo{}, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), manager, "missing", ContentStatusRequest{Status: models.ContentArchived})
	require.Error(t, err)
	assert.Equal(t, "content not found", err.Error())
}

func TestAssignContentFeaturesAndClears(t *testing.T) {
	svc := newContentService(&fakeContentRepo{}, nil, nil)

	content, err := svc.Assign(context.Background(), manager, "c1", ContentAssignRequest{AssignedUserID: strPtr("viewer-1")})
	require.NoError(t, err)
	assert.Equal(t, models.ContentFeatured, content.Status)

	content, err = svc.Assign(context.Background(), manager, "c1", ContentAssignRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.ContentAvailable, content.Status)
}

func TestAssignContentMissingUser(t *testing.T) {
	svc := newContentService(&fakeContentRepo{assignErr: &repository.MissingReferenceError{Entity: "user", ID: "ghost"}}, nil, nil)

	_, err := svc.Assign(context.Background(), manager, "c1", ContentAssignRequest{AssignedUserID: strPtr("ghost")})
	require.Error(t, err)
	assert.Equal(t, "user not found", err.Error())
}
