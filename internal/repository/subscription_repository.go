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

type subscriptionRow struct {
	models.Subscription
	UserName  sql.NullString `db:"user_name"`
	UserEmail sql.NullString `db:"user_email"`
}

// SubscriptionRepository reads and seeds subscriptions.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository constructs the repository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// List returns subscriptions with their holders, newest first.
func (r *SubscriptionRepository) List(ctx context.Context) ([]models.Subscription, error) {
	const query = `SELECT s.id, s.name, s.plan_type, s.price, s.expiry_date, s.assigned_user_id, s.created_at,
	u.name AS user_name, u.email AS user_email
FROM subscriptions s
LEFT JOIN users u ON u.id = s.assigned_user_id
ORDER BY s.created_at DESC`

	var rows []subscriptionRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	out := make([]models.Subscription, len(rows))
	for i, row := range rows {
		out[i] = row.Subscription
		out[i].AssignedUser = summary(row.AssignedUserID, row.UserName, row.UserEmail)
	}
	return out, nil
}

// Create inserts a subscription.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO subscriptions (id, name, plan_type, price, expiry_date, assigned_user_id, created_at) VALUES (:id, :name, :plan_type, :price, :expiry_date, :assigned_user_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}
