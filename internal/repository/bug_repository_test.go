package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

var bugCols = []string{
	"id", "title", "description", "priority", "status", "browser_device", "reporter_id", "assigned_to_id", "affected_content_id", "created_at", "updated_at",
	"reporter_name", "reporter_email", "assignee_name", "assignee_email", "content_name", "content_type",
}

func TestBugCreateMissingContent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBugRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockUserQuery)).
		WithArgs("v1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("VIEWER"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM content WHERE id = $1 FOR SHARE")).
		WithArgs("c404").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	contentID := "c404"
	err := repo.Create(context.Background(), &models.Bug{Title: "Playback stalls", ReporterID: "v1", AffectedContentID: &contentID})
	var missing *MissingReferenceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "content", missing.Entity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBugCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBugRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockUserQuery)).
		WithArgs("v1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("VIEWER"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM content WHERE id = $1 FOR SHARE")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1"))
	mock.ExpectQuery("INSERT INTO bugs").
		WillReturnRows(sqlmock.NewRows(bugCols).
			AddRow("b1", "Playback stalls", "d", "CRITICAL", "OPEN", "Safari", "v1", nil, "c1", now, now, "Viewer", "v@x.com", nil, nil, "Encanto", "MOVIE"))
	mock.ExpectCommit()

	contentID := "c1"
	bug := &models.Bug{Title: "Playback stalls", Description: "d", Priority: models.PriorityCritical, ReporterID: "v1", AffectedContentID: &contentID}
	require.NoError(t, repo.Create(context.Background(), bug))
	assert.Equal(t, models.BugOpen, bug.Status)
	require.NotNil(t, bug.AffectedContent)
	assert.Equal(t, "Encanto", bug.AffectedContent.Name)
	assert.Nil(t, bug.AssignedTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBugAssignRequiresManager(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBugRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockUserQuery)).
		WithArgs("v1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("VIEWER"))
	mock.ExpectRollback()

	assignee := "v1"
	_, err := repo.Assign(context.Background(), "b1", &assignee)
	assert.ErrorIs(t, err, ErrRoleMismatch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBugUnassignSkipsLock(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBugRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bugs SET assigned_to_id = $2")).
		WithArgs("b1", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(bugCols).
			AddRow("b1", "t", "d", "LOW", "OPEN", nil, "v1", nil, nil, now, now, "V", "v@x.com", nil, nil, nil, nil))
	mock.ExpectCommit()

	bug, err := repo.Assign(context.Background(), "b1", nil)
	require.NoError(t, err)
	assert.Nil(t, bug.AssignedTo)
	assert.Nil(t, bug.AffectedContent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBugUpdateStatusTransitionRejected(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBugRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bugs SET status = $2, updated_at = $3 WHERE id = $1 AND status = ANY($4)")).
		WillReturnRows(sqlmock.NewRows(bugCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM bugs WHERE id = $1")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("OPEN"))

	_, err := repo.UpdateStatus(context.Background(), "b1", models.BugClosed, models.BugSourcesFor(models.BugClosed))
	var transition *TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "OPEN", transition.From)
	assert.NoError(t, mock.ExpectationsWereMet())
}
