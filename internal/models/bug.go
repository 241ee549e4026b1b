package models

import "time"

// Bug is a reported defect, optionally tied to a content item.
type Bug struct {
	ID                string          `db:"id" json:"id"`
	Title             string          `db:"title" json:"title"`
	Description       string          `db:"description" json:"description"`
	Priority          Priority        `db:"priority" json:"priority"`
	Status            BugStatus       `db:"status" json:"status"`
	BrowserDevice     *string         `db:"browser_device" json:"browser_device,omitempty"`
	ReporterID        string          `db:"reporter_id" json:"reporter_id"`
	AssignedToID      *string         `db:"assigned_to_id" json:"assigned_to_id,omitempty"`
	AffectedContentID *string         `db:"affected_content_id" json:"affected_content_id,omitempty"`
	Reporter          *UserSummary    `db:"-" json:"reporter,omitempty"`
	AssignedTo        *UserSummary    `db:"-" json:"assigned_to,omitempty"`
	AffectedContent   *ContentSummary `db:"-" json:"affected_content,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// BugFilter narrows bug list views.
type BugFilter struct {
	Statuses    []BugStatus
	Priorities  []Priority
	AssigneeIDs []string
	Search      string
}
