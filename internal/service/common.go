package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/media-catalog-api/internal/models"
	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
)

// Cached view paths dropped after mutations.
const (
	PathDashboard       = "/dashboard"
	PathContentRequests = "/content-requests"
	PathContent         = "/content"
	PathBugs            = "/bugs"
	PathUsers           = "/users"
	PathViewership      = "/viewership"
)

type rateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type auditRecorder interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

type viewRevalidator interface {
	Revalidate(ctx context.Context, paths ...string)
}

type rejectionRecorder interface {
	RecordRateLimitRejection(operation string)
}

// ListQuery carries the shared list-view knobs.
type ListQuery struct {
	Search   string
	SortBy   string
	SortDir  string
	Page     int
	PageSize int
}

func requireManager(actor models.Actor) error {
	if !actor.IsManager() {
		return appErrors.Clone(appErrors.ErrForbidden, "content manager role required")
	}
	return nil
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func notFoundOr(err error, notFound, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return internalError(err, message)
}

// checkRate fails open when the limiter backend errors so an unavailable
// redis does not block writes.
func checkRate(ctx context.Context, limiter rateLimiter, key, operation string, metrics rejectionRecorder, logger *zap.Logger) error {
	if limiter == nil {
		return nil
	}
	ok, err := limiter.Allow(ctx, key)
	if err != nil {
		logger.Warn("rate limiter unavailable", zap.String("operation", operation), zap.Error(err))
		return nil
	}
	if !ok {
		if metrics != nil {
			metrics.RecordRateLimitRejection(operation)
		}
		return appErrors.Clone(appErrors.ErrRateLimited, "")
	}
	return nil
}

func recordAudit(ctx context.Context, audit auditRecorder, logger *zap.Logger, actor models.Actor, action, resource, resourceID string, oldValues, newValues interface{}) {
	if audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if actor.UserID != "" {
		id := actor.UserID
		entry.UserID = &id
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if oldValues != nil {
		entry.OldValues, _ = json.Marshal(oldValues)
	}
	if newValues != nil {
		entry.NewValues, _ = json.Marshal(newValues)
	}
	if err := audit.Create(ctx, entry); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func revalidate(ctx context.Context, cache viewRevalidator, paths ...string) {
	if cache == nil {
		return
	}
	cache.Revalidate(ctx, paths...)
}
