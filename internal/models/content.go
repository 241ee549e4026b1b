package models

import "time"

// Content is a catalog item.
type Content struct {
	ID             string        `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	Type           string        `db:"type" json:"type"`
	Genre          string        `db:"genre" json:"genre"`
	Status         ContentStatus `db:"status" json:"status"`
	ReleaseDate    *time.Time    `db:"release_date" json:"release_date,omitempty"`
	Duration       *int          `db:"duration" json:"duration,omitempty"`
	Rating         *string       `db:"rating" json:"rating,omitempty"`
	PosterURL      *string       `db:"poster_url" json:"poster_url,omitempty"`
	Description    *string       `db:"description" json:"description,omitempty"`
	AssignedUserID *string       `db:"assigned_user_id" json:"assigned_user_id,omitempty"`
	AssignedUser   *UserSummary  `db:"-" json:"assigned_user,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// ContentSummary is the joined affected-content / viewership shape.
type ContentSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ContentFilter narrows content list views.
type ContentFilter struct {
	Statuses []ContentStatus
	Types    []string
	Genres   []string
	Search   string
}
