package models

import "time"

// ViewershipMetric aggregates one user's engagement with one content item.
type ViewershipMetric struct {
	ID               string          `db:"id" json:"id"`
	ContentID        string          `db:"content_id" json:"content_id"`
	UserID           string          `db:"user_id" json:"user_id"`
	Views            int             `db:"views" json:"views"`
	WatchTimeMinutes int             `db:"watch_time_minutes" json:"watch_time_minutes"`
	CompletionRate   float64         `db:"completion_rate" json:"completion_rate"`
	LastWatchedAt    time.Time       `db:"last_watched_at" json:"last_watched_at"`
	Content          *ContentSummary `db:"-" json:"content,omitempty"`
	User             *UserSummary    `db:"-" json:"user,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}
