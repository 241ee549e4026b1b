package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/media-catalog-api/internal/listing"
	"github.com/noah-isme/media-catalog-api/internal/models"
)

type subscriptionRepository interface {
	List(ctx context.Context) ([]models.Subscription, error)
}

// SubscriptionService lists subscription plans for managers.
type SubscriptionService struct {
	repo   subscriptionRepository
	logger *zap.Logger
}

// NewSubscriptionService constructs the service.
func NewSubscriptionService(repo subscriptionRepository, logger *zap.Logger) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{repo: repo, logger: logger}
}

// List returns a page of subscriptions, newest first.
func (s *SubscriptionService) List(ctx context.Context, actor models.Actor, query ListQuery) ([]models.Subscription, *models.Pagination, error) {
	if err := requireManager(actor); err != nil {
		return nil, nil, err
	}
	subs, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list subscriptions", zap.Error(err))
		return nil, nil, internalError(err, "failed to list subscriptions")
	}
	page, pagination := listing.Paginate(subs, query.Page, query.PageSize)
	return page, pagination, nil
}
