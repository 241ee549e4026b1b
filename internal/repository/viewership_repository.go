package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

type viewershipRow struct {
	models.ViewershipMetric
	ContentName sql.NullString `db:"content_name"`
	ContentType sql.NullString `db:"content_type"`
	UserName    sql.NullString `db:"user_name"`
	UserEmail   sql.NullString `db:"user_email"`
}

func (r viewershipRow) model() models.ViewershipMetric {
	out := r.ViewershipMetric
	out.Content = &models.ContentSummary{ID: r.ContentID, Name: r.ContentName.String, Type: r.ContentType.String}
	out.User = summary(&r.UserID, r.UserName, r.UserEmail)
	return out
}

// ViewershipRepository reads viewership aggregates.
type ViewershipRepository struct {
	db *sqlx.DB
}

// NewViewershipRepository constructs the repository.
func NewViewershipRepository(db *sqlx.DB) *ViewershipRepository {
	return &ViewershipRepository{db: db}
}

// List returns metrics with content and viewer summaries, most recently
// watched first. A non-nil since keeps rows watched at or after it.
func (r *ViewershipRepository) List(ctx context.Context, since *time.Time) ([]models.ViewershipMetric, error) {
	query := `SELECT m.id, m.content_id, m.user_id, m.views, m.watch_time_minutes, m.completion_rate, m.last_watched_at, m.created_at, m.updated_at,
	c.name AS content_name, c.type AS content_type,
	u.name AS user_name, u.email AS user_email
FROM viewership_metrics m
JOIN content c ON c.id = m.content_id
JOIN users u ON u.id = m.user_id`
	var args []interface{}
	if since != nil {
		query += "\nWHERE m.last_watched_at >= $1"
		args = append(args, *since)
	}
	query += "\nORDER BY m.last_watched_at DESC"

	var rows []viewershipRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list viewership metrics: %w", err)
	}
	out := make([]models.ViewershipMetric, len(rows))
	for i, row := range rows {
		out[i] = row.model()
	}
	return out, nil
}

// Upsert inserts or replaces the metric for a (content, user) pair.
func (r *ViewershipRepository) Upsert(ctx context.Context, m *models.ViewershipMetric) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if m.LastWatchedAt.IsZero() {
		m.LastWatchedAt = now
	}

	const query = `INSERT INTO viewership_metrics (id, content_id, user_id, views, watch_time_minutes, completion_rate, last_watched_at, created_at, updated_at)
VALUES (:id, :content_id, :user_id, :views, :watch_time_minutes, :completion_rate, :last_watched_at, :created_at, :updated_at)
ON CONFLICT (content_id, user_id) DO UPDATE SET
	views = EXCLUDED.views,
	watch_time_minutes = EXCLUDED.watch_time_minutes,
	completion_rate = EXCLUDED.completion_rate,
	last_watched_at = EXCLUDED.last_watched_at,
	updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("upsert viewership metric: %w", err)
	}
	return nil
}
