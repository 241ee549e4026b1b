package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/media-catalog-api/internal/models"
)

// withTx runs fn inside a transaction, committing on success.
func withTx(ctx context.Context, db *sqlx.DB, name string, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s transaction: %w", name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

// lockUser share-locks the user row until the transaction ends and returns
// its role. A missing row yields *MissingReferenceError.
func lockUser(ctx context.Context, tx *sqlx.Tx, id string) (models.UserRole, error) {
	const query = `SELECT role FROM users WHERE id = $1 FOR SHARE`
	var role models.UserRole
	if err := tx.GetContext(ctx, &role, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", &MissingReferenceError{Entity: "user", ID: id}
		}
		return "", fmt.Errorf("lock user: %w", err)
	}
	return role, nil
}

// lockManager is lockUser plus a CONTENT_MANAGER role check.
func lockManager(ctx context.Context, tx *sqlx.Tx, id string) error {
	role, err := lockUser(ctx, tx, id)
	if err != nil {
		return err
	}
	if !role.IsManager() {
		return ErrRoleMismatch
	}
	return nil
}

// lockContent share-locks a content row.
func lockContent(ctx context.Context, tx *sqlx.Tx, id string) error {
	const query = `SELECT id FROM content WHERE id = $1 FOR SHARE`
	var found string
	if err := tx.GetContext(ctx, &found, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &MissingReferenceError{Entity: "content", ID: id}
		}
		return fmt.Errorf("lock content: %w", err)
	}
	return nil
}

// currentStatus reads status for the error path of a guarded update that
// matched no rows: sql.ErrNoRows when the row is gone, otherwise the status
// that blocked the transition.
func currentStatus(ctx context.Context, q sqlx.QueryerContext, table, id string) (string, error) {
	var status string
	query := fmt.Sprintf(`SELECT status FROM %s WHERE id = $1`, table)
	if err := sqlx.GetContext(ctx, q, &status, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sql.ErrNoRows
		}
		return "", fmt.Errorf("read %s status: %w", table, err)
	}
	return status, nil
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func summary(id *string, name, email sql.NullString) *models.UserSummary {
	if id == nil || *id == "" {
		return nil
	}
	return &models.UserSummary{ID: *id, Name: name.String, Email: email.String}
}
