package models

import "time"

// ContentRequest is a viewer's request to add a title to the catalog.
type ContentRequest struct {
	ID          string        `db:"id" json:"id"`
	Title       string        `db:"title" json:"title"`
	Description string        `db:"description" json:"description"`
	Priority    Priority      `db:"priority" json:"priority"`
	Category    string        `db:"category" json:"category"`
	Status      RequestStatus `db:"status" json:"status"`
	ViewerID    string        `db:"viewer_id" json:"viewer_id"`
	ReviewedBy  *string       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	Viewer      *UserSummary  `db:"-" json:"viewer,omitempty"`
	Reviewer    *UserSummary  `db:"-" json:"reviewer,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// ContentRequestFilter narrows request list views. Date bounds are
// inclusive calendar days.
type ContentRequestFilter struct {
	Statuses    []RequestStatus
	Priorities  []Priority
	Categories  []string
	ReviewerIDs []string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Search      string
}
