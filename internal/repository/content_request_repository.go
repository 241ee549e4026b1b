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

const contentRequestSelect = `SELECT cr.id, cr.title, cr.description, cr.priority, cr.category, cr.status, cr.viewer_id, cr.reviewed_by, cr.created_at, cr.updated_at,
	v.name AS viewer_name, v.email AS viewer_email,
	rv.name AS reviewer_name, rv.email AS reviewer_email`

const contentRequestJoins = `JOIN users v ON v.id = cr.viewer_id
LEFT JOIN users rv ON rv.id = cr.reviewed_by`

type contentRequestRow struct {
	models.ContentRequest
	ViewerName    sql.NullString `db:"viewer_name"`
	ViewerEmail   sql.NullString `db:"viewer_email"`
	ReviewerName  sql.NullString `db:"reviewer_name"`
	ReviewerEmail sql.NullString `db:"reviewer_email"`
}

func (r contentRequestRow) model() models.ContentRequest {
	out := r.ContentRequest
	out.Viewer = summary(&r.ViewerID, r.ViewerName, r.ViewerEmail)
	out.Reviewer = summary(r.ReviewedBy, r.ReviewerName, r.ReviewerEmail)
	return out
}

// ContentRequestRepository persists content requests.
type ContentRequestRepository struct {
	db *sqlx.DB
}

// NewContentRequestRepository constructs the repository.
func NewContentRequestRepository(db *sqlx.DB) *ContentRequestRepository {
	return &ContentRequestRepository{db: db}
}

// List returns requests newest first, limited to viewerID when non-nil.
func (r *ContentRequestRepository) List(ctx context.Context, viewerID *string) ([]models.ContentRequest, error) {
	query := contentRequestSelect + "\nFROM content_requests cr\n" + contentRequestJoins
	var args []interface{}
	if viewerID != nil {
		query += "\nWHERE cr.viewer_id = $1"
		args = append(args, *viewerID)
	}
	query += "\nORDER BY cr.created_at DESC"

	var rows []contentRequestRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list content requests: %w", err)
	}
	out := make([]models.ContentRequest, len(rows))
	for i, row := range rows {
		out[i] = row.model()
	}
	return out, nil
}

// FindByID returns a request with its viewer and reviewer summaries.
func (r *ContentRequestRepository) FindByID(ctx context.Context, id string) (*models.ContentRequest, error) {
	query := contentRequestSelect + "\nFROM content_requests cr\n" + contentRequestJoins + "\nWHERE cr.id = $1"
	var row contentRequestRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find content request: %w", err)
	}
	out := row.model()
	return &out, nil
}

// Create inserts a request after share-locking its viewer.
func (r *ContentRequestRepository) Create(ctx context.Context, req *models.ContentRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = req.CreatedAt
	if req.Status == "" {
		req.Status = models.RequestPending
	}

	return withTx(ctx, r.db, "create content request", func(tx *sqlx.Tx) error {
		if _, err := lockUser(ctx, tx, req.ViewerID); err != nil {
			return err
		}
		if req.ReviewedBy != nil {
			if err := lockManager(ctx, tx, *req.ReviewedBy); err != nil {
				return err
			}
		}

		query := `WITH cr AS (
	INSERT INTO content_requests (id, title, description, priority, category, status, viewer_id, reviewed_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING *
)
` + contentRequestSelect + "\nFROM cr\n" + contentRequestJoins

		var row contentRequestRow
		if err := tx.GetContext(ctx, &row, query,
			req.ID, req.Title, req.Description, req.Priority, req.Category, req.Status,
			req.ViewerID, req.ReviewedBy, req.CreatedAt, req.UpdatedAt,
		); err != nil {
			return fmt.Errorf("create content request: %w", err)
		}
		*req = row.model()
		return nil
	})
}

// UpdateStatus sets the status in one conditional statement. When from is
// non-empty the row must currently hold one of those statuses; otherwise a
// *TransitionError is returned. A missing row yields sql.ErrNoRows.
func (r *ContentRequestRepository) UpdateStatus(ctx context.Context, id string, next models.RequestStatus, from []models.RequestStatus) (*models.ContentRequest, error) {
	args := []interface{}{id, next, time.Now().UTC()}
	guard := ""
	if len(from) > 0 {
		guard = " AND status = ANY($4)"
		args = append(args, pq.Array(toStrings(from)))
	}

	query := `WITH cr AS (
	UPDATE content_requests SET status = $2, updated_at = $3 WHERE id = $1` + guard + `
	RETURNING *
)
` + contentRequestSelect + "\nFROM cr\n" + contentRequestJoins

	var row contentRequestRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update content request status: %w", err)
		}
		if len(from) == 0 {
			return nil, sql.ErrNoRows
		}
		current, statusErr := currentStatus(ctx, r.db, "content_requests", id)
		if statusErr != nil {
			return nil, statusErr
		}
		return nil, &TransitionError{From: current, To: string(next)}
	}
	out := row.model()
	return &out, nil
}

// AssignReviewer sets the reviewer inside a transaction that share-locks the
// reviewer and requires the CONTENT_MANAGER role.
func (r *ContentRequestRepository) AssignReviewer(ctx context.Context, id, reviewerID string) (*models.ContentRequest, error) {
	var out models.ContentRequest
	err := withTx(ctx, r.db, "assign content request", func(tx *sqlx.Tx) error {
		if err := lockManager(ctx, tx, reviewerID); err != nil {
			return err
		}

		query := `WITH cr AS (
	UPDATE content_requests SET reviewed_by = $2, updated_at = $3 WHERE id = $1
	RETURNING *
)
` + contentRequestSelect + "\nFROM cr\n" + contentRequestJoins

		var row contentRequestRow
		if err := tx.GetContext(ctx, &row, query, id, reviewerID, time.Now().UTC()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return fmt.Errorf("assign content request: %w", err)
		}
		out = row.model()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
