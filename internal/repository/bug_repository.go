package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

const bugSelect = `SELECT b.id, b.title, b.description, b.priority, b.status, b.browser_device, b.reporter_id, b.assigned_to_id, b.affected_content_id, b.created_at, b.updated_at,
	rp.name AS reporter_name, rp.email AS reporter_email,
	au.name AS assignee_name, au.email AS assignee_email,
	c.name AS content_name, c.type AS content_type`

const bugJoins = `JOIN users rp ON rp.id = b.reporter_id
LEFT JOIN users au ON au.id = b.assigned_to_id
LEFT JOIN content c ON c.id = b.affected_content_id`

type bugRow struct {
	models.Bug
	ReporterName  sql.NullString `db:"reporter_name"`
	ReporterEmail sql.NullString `db:"reporter_email"`
	AssigneeName  sql.NullString `db:"assignee_name"`
	AssigneeEmail sql.NullString `db:"assignee_email"`
	ContentName   sql.NullString `db:"content_name"`
	ContentType   sql.NullString `db:"content_type"`
}

func (r bugRow) model() models.Bug {
	out := r.Bug
	out.Reporter = summary(&r.ReporterID, r.ReporterName, r.ReporterEmail)
	out.AssignedTo = summary(r.AssignedToID, r.AssigneeName, r.AssigneeEmail)
	if r.AffectedContentID != nil && *r.AffectedContentID != "" {
		out.AffectedContent = &models.ContentSummary{ID: *r.AffectedContentID, Name: r.ContentName.String, Type: r.ContentType.String}
	}
	return out
}

// BugRepository persists bug reports.
type BugRepository struct {
	db *sqlx.DB
}

// NewBugRepository constructs the repository.
func NewBugRepository(db *sqlx.DB) *BugRepository {
	return &BugRepository{db: db}
}

// List returns bugs newest first, limited to reporterID when non-nil.
func (r *BugRepository) List(ctx context.Context, reporterID *string) ([]models.Bug, error) {
	query := bugSelect + "\nFROM bugs b\n" + bugJoins
	var args []interface{}
	if reporterID != nil {
		query += "\nWHERE b.reporter_id = $1"
		args = append(args, *reporterID)
	}
	query += "\nORDER BY b.created_at DESC"

	var rows []bugRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list bugs: %w", err)
	}
	out := make([]models.Bug, len(rows))
	for i, row := range rows {
		out[i] = row.model()
	}
	return out, nil
}

// FindByID returns a bug with its joined summaries.
func (r *BugRepository) FindByID(ctx context.Context, id string) (*models.Bug, error) {
	query := bugSelect + "\nFROM bugs b\n" + bugJoins + "\nWHERE b.id = $1"
	var row bugRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find bug: %w", err)
	}
	out := row.model()
	return &out, nil
}

// Create inserts a bug after share-locking the reporter, the assignee (which
// must be a manager) and the affected content.
func (r *BugRepository) Create(ctx context.Context, bug *models.Bug) error {
	if bug.ID == "" {
		bug.ID = uuid.NewString()
	}
	if bug.CreatedAt.IsZero() {
		bug.CreatedAt = time.Now().UTC()
	}
	bug.UpdatedAt = bug.CreatedAt
	if bug.Status == "" {
		bug.Status = models.BugOpen
	}

	return withTx(ctx, r.db, "create bug", func(tx *sqlx.Tx) error {
		if _, err := lockUser(ctx, tx, bug.ReporterID); err != nil {
			return err
		}
		if bug.AssignedToID != nil {
			if err := lockManager(ctx, tx, *bug.AssignedToID); err != nil {
				return err
			}
		}
		if bug.AffectedContentID != nil {
			if err := lockContent(ctx, tx, *bug.AffectedContentID); err != nil {
				return err
			}
		}

		query := `WITH b AS (
	INSERT INTO bugs (id, title, description, priority, status, browser_device, reporter_id, assigned_to_id, affected_content_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING *
)
` + bugSelect + "\nFROM b\n" + bugJoins

		var row bugRow
		if err := tx.GetContext(ctx, &row, query,
			bug.ID, bug.Title, bug.Description, bug.Priority, bug.Status, bug.BrowserDevice,
			bug.ReporterID, bug.AssignedToID, bug.AffectedContentID, bug.CreatedAt, bug.UpdatedAt,
		); err != nil {
			return fmt.Errorf("create bug: %w", err)
		}
		*bug = row.model()
		return nil
	})
}

// UpdateStatus mirrors ContentRequestRepository.UpdateStatus for bugs.
func (r *BugRepository) UpdateStatus(ctx context.Context, id string, next models.BugStatus, from []models.BugStatus) (*models.Bug, error) {
	args := []interface{}{id, next, time.Now().UTC()}
	guard := ""
	if len(from) > 0 {
		guard = " AND status = ANY($4)"
		args = append(args, pq.Array(toStrings(from)))
	}

	query := `WITH b AS (
	UPDATE bugs SET status = $2, updated_at = $3 WHERE id = $1` + guard + `
	RETURNING *
)
` + bugSelect + "\nFROM b\n" + bugJoins

	var row bugRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update bug status: %w", err)
		}
		if len(from) == 0 {
			return nil, sql.ErrNoRows
		}
		current, statusErr := currentStatus(ctx, r.db, "bugs", id)
		if statusErr != nil {
			return nil, statusErr
		}
		return nil, &TransitionError{From: current, To: string(next)}
	}
	out := row.model()
	return &out, nil
}

// Assign sets or clears the assignee. A non-nil assignee is share-locked
// and must be a CONTENT_MANAGER.
func (r *BugRepository) Assign(ctx context.Context, id string, assigneeID *string) (*models.Bug, error) {
	var out models.Bug
	err := withTx(ctx, r.db, "assign bug", func(tx *sqlx.Tx) error {
		if assigneeID != nil {
			if err := lockManager(ctx, tx, *assigneeID); err != nil {
				return err
			}
		}

		query := `WITH b AS (
	UPDATE bugs SET assigned_to_id = $2, updated_at = $3 WHERE id = $1
	RETURNING *
)
` + bugSelect + "\nFROM b\n" + bugJoins

		var row bugRow
		if err := tx.GetContext(ctx, &row, query, id, assigneeID, time.Now().UTC()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return fmt.Errorf("assign bug: %w", err)
		}
		out = row.model()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
