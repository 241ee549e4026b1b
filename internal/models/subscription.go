package models

import "time"

// Subscription is a plan held by a user.
type Subscription struct {
	ID             string       `db:"id" json:"id"`
	Name           string       `db:"name" json:"name"`
	PlanType       string       `db:"plan_type" json:"plan_type"`
	Price          *float64     `db:"price" json:"price,omitempty"`
	ExpiryDate     *time.Time   `db:"expiry_date" json:"expiry_date,omitempty"`
	AssignedUserID *string      `db:"assigned_user_id" json:"assigned_user_id,omitempty"`
	AssignedUser   *UserSummary `db:"-" json:"assigned_user,omitempty"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
}
