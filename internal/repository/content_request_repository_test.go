package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

var contentRequestCols = []string{
	"id", "title", "description", "priority", "category", "status", "viewer_id", "reviewed_by", "created_at", "updated_at",
	"viewer_name", "viewer_email", "reviewer_name", "reviewer_email",
}

const lockUserQuery = "SELECT role FROM users WHERE id = $1 FOR SHARE"

func TestContentRequestListScopedToViewer(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRequestRepository(db)

	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(contentRequestCols).
		AddRow("cr1", "Frozen III", "Please add", "HIGH", "Movies", "PENDING", "v1", nil, now, now, "Viewer", "viewer@disneyplus.com", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE cr.viewer_id = $1\nORDER BY cr.created_at DESC")).
		WithArgs("v1").
		WillReturnRows(rows)

	viewer := "v1"
	list, err := repo.List(context.Background(), &viewer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.PriorityHigh, list[0].Priority)
	assert.Equal(t, "Viewer", list[0].Viewer.Name)
	assert.Nil(t, list[0].Reviewer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRequestCreateLocksViewer(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRequestRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockUserQuery)).
		WithArgs("v1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("VIEWER"))
	mock.ExpectQuery("INSERT INTO content_requests").
		WillReturnRows(sqlmock.NewRows(contentRequestCols).
			AddRow("cr1", "Moana 3", "desc", "MEDIUM", "Movies", "PENDING", "v1", nil, now, now, "", "viewer@disneyplus.com", nil, nil))
	mock.ExpectCommit()

	req := &models.ContentRequest{Title: "Moana 3", Description: "desc", Priority: models.PriorityMedium, Category: "Movies", ViewerID: "v1"}
	require.NoError(t, repo.Create(context.Background(), req))
	assert.Equal(t, "cr1", req.ID)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, "viewer@disneyplus.com", req.Viewer.DisplayName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRequestCreateMissingViewer(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockUserQuery)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.ContentRequest{Title: "x", ViewerID: "ghost"})
	var missing *MissingReferenceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "user", missing.Entity)
	assert.Equal(t, "ghost", missing.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRequestUpdateStatusGuarded(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE content_requests SET status = $2, updated_at = $3 WHERE id = $1 AND status = ANY($4)")).
		WillReturnRows(sqlmock.NewRows(contentRequestCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM content_requests WHERE id = $1")).
		WithArgs("cr1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("PENDING"))

	_, err := repo.UpdateStatus(context.Background(), "cr1", models.RequestAdded, models.RequestSourcesFor(models.RequestAdded))
	var transition *TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "PENDING", transition.From)
	assert.Equal(t, "ADDED", transition.To)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRequestUpdateStatusNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE content_requests SET status = $2")).
		WithArgs("missing", models.RequestApproved, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(contentRequestCols))

	_, err := repo.UpdateStatus(context.Background(), "missing", models.RequestApproved, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRequestAssignReviewerRequiresManager(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockUserQuery)).
		WithArgs("v2").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("VIEWER"))
	mock.ExpectRollback()

	_, err := repo.AssignReviewer(context.Background(), "cr1", "v2")
	assert.ErrorIs(t, err, ErrRoleMismatch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRequestAssignReviewer(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRequestRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockUserQuery)).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("CONTENT_MANAGER"))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE content_requests SET reviewed_by = $2")).
		WithArgs("cr1", "m1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(contentRequestCols).
			AddRow("cr1", "t", "d", "LOW", "Movies", "IN_REVIEW", "v1", "m1", now, now, "V", "v@x.com", "Goofy", "goofy@disneyplus.com"))
	mock.ExpectCommit()

	req, err := repo.AssignReviewer(context.Background(), "cr1", "m1")
	require.NoError(t, err)
	require.NotNil(t, req.Reviewer)
	assert.Equal(t, "Goofy", req.Reviewer.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
