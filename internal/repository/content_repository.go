package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

const contentSelect = `SELECT c.id, c.name, c.type, c.genre, c.status, c.release_date, c.duration, c.rating, c.poster_url, c.description, c.assigned_user_id, c.created_at, c.updated_at,
	u.name AS assignee_name, u.email AS assignee_email`

const contentJoins = `LEFT JOIN users u ON u.id = c.assigned_user_id`

type contentRow struct {
	models.Content
	AssigneeName  sql.NullString `db:"assignee_name"`
	AssigneeEmail sql.NullString `db:"assignee_email"`
}

func (r contentRow) model() models.Content {
	out := r.Content
	out.AssignedUser = summary(r.AssignedUserID, r.AssigneeName, r.AssigneeEmail)
	return out
}

// ContentRepository persists catalog items.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs the repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// List returns every content item newest first.
func (r *ContentRepository) List(ctx context.Context) ([]models.Content, error) {
	query := contentSelect + "\nFROM content c\n" + contentJoins + "\nORDER BY c.created_at DESC"
	var rows []contentRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	out := make([]models.Content, len(rows))
	for i, row := range rows {
		out[i] = row.model()
	}
	return out, nil
}

// FindByID returns a content item with its assignee summary.
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.Content, error) {
	query := contentSelect + "\nFROM content c\n" + contentJoins + "\nWHERE c.id = $1"
	var row contentRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find content: %w", err)
	}
	out := row.model()
	return &out, nil
}

// Create inserts a content item, share-locking the assignee when present.
func (r *ContentRepository) Create(ctx context.Context, content *models.Content) error {
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	if content.CreatedAt.IsZero() {
		content.CreatedAt = time.Now().UTC()
	}
	content.UpdatedAt = content.CreatedAt
	if content.Status == "" {
		content.Status = models.ContentAvailable
	}

	return withTx(ctx, r.db, "create content", func(tx *sqlx.Tx) error {
		if content.AssignedUserID != nil {
			if _, err := lockUser(ctx, tx, *content.AssignedUserID); err != nil {
				return err
			}
		}

		query := `WITH c AS (
	INSERT INTO content (id, name, type, genre, status, release_date, duration, rating, poster_url, description, assigned_user_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING *
)
` + contentSelect + "\nFROM c\n" + contentJoins

		var row contentRow
		if err := tx.GetContext(ctx, &row, query,
			content.ID, content.Name, content.Type, content.Genre, content.Status, content.ReleaseDate,
			content.Duration, content.Rating, content.PosterURL, content.Description, content.AssignedUserID,
			content.CreatedAt, content.UpdatedAt,
		); err != nil {
			return fmt.Errorf("create content: %w", err)
		}
		*content = row.model()
		return nil
	})
}

// UpdateStatus sets any status. A missing row yields sql.ErrNoRows.
func (r *ContentRepository) UpdateStatus(ctx context.Context, id string, status models.ContentStatus) (*models.Content, error) {
	query := `WITH c AS (
	UPDATE content SET status = $2, updated_at = $3 WHERE id = $1
	RETURNING *
)
` + contentSelect + "\nFROM c\n" + contentJoins

	var row contentRow
	if err := r.db.GetContext(ctx, &row, query, id, status, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("update content status: %w", err)
	}
	out := row.model()
	return &out, nil
}

// Assign sets or clears the assignee. Assigning features the item, clearing
// makes it available again. Any existing user may be assigned.
func (r *ContentRepository) Assign(ctx context.Context, id string, userID *string) (*models.Content, error) {
	status := models.ContentAvailable
	if userID != nil {
		status = models.ContentFeatured
	}

	var out models.Content
	err := withTx(ctx, r.db, "assign content", func(tx *sqlx.Tx) error {
		if userID != nil {
			if _, err := lockUser(ctx, tx, *userID); err != nil {
				return err
			}
		}

		query := `WITH c AS (
	UPDATE content SET assigned_user_id = $2, status = $3, updated_at = $4 WHERE id = $1
	RETURNING *
)
` + contentSelect + "\nFROM c\n" + contentJoins

		var row contentRow
		if err := tx.GetContext(ctx, &row, query, id, userID, status, time.Now().UTC()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return fmt.Errorf("assign content: %w", err)
		}
		out = row.model()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePosterURL points the item at a locally stored poster.
func (r *ContentRepository) UpdatePosterURL(ctx context.Context, id, posterURL string) error {
	const query = `UPDATE content SET poster_url = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, posterURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update poster url: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
