package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/repository"
	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
)

type fakeBugRepo struct {
	bugs       []models.Bug
	createErr  error
	updateErr  error
	updateFrom []models.BugStatus
	assignErr  error
	assigned   *string
}

func (f *fakeBugRepo) List(_ context.Context, reporterID *string) ([]models.Bug, error) {
	var out []models.Bug
	for _, b := range f.bugs {
		if reporterID == nil || b.ReporterID == *reporterID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBugRepo) FindByID(_ context.Context, id string) (*models.Bug, error) {
	for _, b := range f.bugs {
		if b.ID == id {
			copy := b
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeBugRepo) Create(_ context.Context, bug *models.Bug) error {
	if f.createErr != nil {
		return f.createErr
	}
	bug.ID = "bug-new"
	return nil
}

func (f *fakeBugRepo) UpdateStatus(_ context.Context, id string, next models.BugStatus, from []models.BugStatus) (*models.Bug, error) {
	f.updateFrom = from
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.Bug{ID: id, Status: next}, nil
}

func (f *fakeBugRepo) Assign(_ context.Context, id string, assigneeID *string) (*models.Bug, error) {
	f.assigned = assigneeID
	if f.assignErr != nil {
		return nil, f.assignErr
	}
	return &models.Bug{ID: id, AssignedToID: assigneeID}, nil
}

func newBugService(repo *fakeBugRepo, limiter rateLimiter, enforce bool) (*BugService, *recordingRevalidator) {
	cache := &recordingRevalidator{}
	svc := NewBugService(BugServiceParams{
		Repo:    repo,
		Limiter: limiter,
		Audit:   &recordingAudit{},
		Cache:   cache,
		Logger:  zap.NewNop(),
		Config:  BugServiceConfig{EnforceTransitions: enforce},
	})
	return svc, cache
}

func validBug() CreateBugRequest {
	return CreateBugRequest{
		Title:             "Playback stalls",
		Description:       "Video freezes after the intro on Safari",
		Priority:          models.PriorityCritical,
		BrowserDevice:     strPtr("Safari 17 / macOS"),
		AffectedContentID: strPtr("content-1"),
	}
}

func TestCreateBugSetsReporterAndOpen(t *testing.T) {
	limiter := &stubLimiter{allow: true}
	svc, cache := newBugService(&fakeBugRepo{}, limiter, false)

	bug, err := svc.Create(context.Background(), viewer, validBug())
	require.NoError(t, err)
	assert.Equal(t, models.BugOpen, bug.Status)
	assert.Equal(t, viewer.UserID, bug.ReporterID)
	assert.Equal(t, []string{"create-bug-viewer-1"}, limiter.keys)
	assert.Equal(t, []string{PathBugs, PathDashboard}, cache.paths)
}

func TestCreateBugBlankOptionalFieldsBecomeNil(t *testing.T) {
	svc, _ := newBugService(&fakeBugRepo{}, nil, false)
	req := validBug()
	req.BrowserDevice = strPtr("   ")
	req.AffectedContentID = strPtr("")

	bug, err := svc.Create(context.Background(), viewer, req)
	require.NoError(t, err)
	assert.Nil(t, bug.BrowserDevice)
	assert.Nil(t, bug.AffectedContentID)
}

func TestCreateBugMissingContent(t *testing.T) {
	repo := &fakeBugRepo{createErr: &repository.MissingReferenceError{Entity: "content", ID: "content-1"}}
	svc, _ := newBugService(repo, nil, false)

	_, err := svc.Create(context.Background(), viewer, validBug())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "content not found", err.Error())
}

func TestCreateBugRateLimited(t *testing.T) {
	rejections := &countingRejections{}
	svc := NewBugService(BugServiceParams{Repo: &fakeBugRepo{}, Limiter: &stubLimiter{allow: false}, Metrics: rejections})

	_, err := svc.Create(context.Background(), viewer, validBug())
	assert.True(t, errors.Is(err, appErrors.ErrRateLimited))
	assert.Equal(t, []string{"create_bug"}, rejections.ops)
}

func TestGetBugHidesOtherReporters(t *testing.T) {
	svc, _ := newBugService(&fakeBugRepo{bugs: []models.Bug{{ID: "b1", ReporterID: "viewer-2"}}}, nil, false)

	_, err := svc.Get(context.Background(), viewer, "b1")
	require.Error(t, err)
	assert.Equal(t, "bug not found", err.Error())

	_, err = svc.Get(context.Background(), other, "b1")
	assert.NoError(t, err)
}

func TestListBugsFiltersByStatus(t *testing.T) {
	repo := &fakeBugRepo{bugs: []models.Bug{
		{ID: "b1", Status: models.BugOpen},
		{ID: "b2", Status: models.BugClosed},
		{ID: "b3", Status: models.BugOpen},
	}}
	svc, _ := newBugService(repo, nil, false)

	items, pagination, err := svc.List(context.Background(), manager, models.BugFilter{Statuses: []models.BugStatus{models.BugOpen}}, ListQuery{Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, pagination.TotalCount)
}

func TestUpdateBugStatusEnforcedReopen(t *testing.T) {
	repo := &fakeBugRepo{}
	svc, _ := newBugService(repo, nil, true)

	_, err := svc.UpdateStatus(context.Background(), manager, "b1", UpdateBugStatusRequest{Status: models.BugOpen})
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.BugStatus{models.BugOpen, models.BugFixed, models.BugVerified, models.BugClosed}, repo.updateFrom)
}

func TestUpdateBugStatusRejectedTransition(t *testing.T) {
	repo := &fakeBugRepo{updateErr: &repository.TransitionError{From: string(models.BugOpen), To: string(models.BugClosed)}}
	svc, _ := newBugService(repo, nil, true)

	_, err := svc.UpdateStatus(context.Background(), manager, "b1", UpdateBugStatusRequest{Status: models.BugClosed})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
	assert.Equal(t, "cannot move bug from Open to Closed", err.Error())
}

func TestUpdateBugStatusInvalidValue(t *testing.T) {
	svc, _ := newBugService(&fakeBugRepo{}, nil, false)

	_, err := svc.UpdateStatus(context.Background(), manager, "b1", UpdateBugStatusRequest{Status: "DONE"})
	require.Error(t, err)
	assert.Equal(t, "validation failed: status: must be one of OPEN, IN_PROGRESS, FIXED, VERIFIED, CLOSED", appErrors.FromError(err).Message)
}

func TestAssignBugAssigneeMustBeManager(t *testing.T) {
	svc, _ := newBugService(&fakeBugRepo{assignErr: repository.ErrRoleMismatch}, nil, false)

	_, err := svc.Assign(context.Background(), manager, "b1", AssignBugRequest{AssignedToID: strPtr("viewer-2")})
	require.Error(t, err)
	assert.Equal(t, "only content managers can be assigned bugs", err.Error())
}

func TestAssignBugClearsAssignee(t *testing.T) {
	repo := &fakeBugRepo{}
	svc, _ := newBugService(repo, nil, false)

	bug, err := svc.Assign(context.Background(), manager, "b1", AssignBugRequest{AssignedToID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, repo.assigned)
	assert.Nil(t, bug.AssignedToID)
}

func TestAssignBugRequiresManager(t *testing.T) {
	svc, _ := newBugService(&fakeBugRepo{}, nil, false)

	_, err := svc.Assign(context.Background(), viewer, "b1", AssignBugRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
