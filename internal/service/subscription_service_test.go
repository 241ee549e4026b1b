package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/media-catalog-api/internal/models"
	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
)

type fakeSubscriptionRepo struct {
	subs []models.Subscription
	err  error
}

func (f *fakeSubscriptionRepo) List(context.Context) ([]models.Subscription, error) {
	return f.subs, f.err
}

func TestSubscriptionServiceListRequiresManager(t *testing.T) {
	svc := NewSubscriptionService(&fakeSubscriptionRepo{}, zap.NewNop())

	_, _, err := svc.List(context.Background(), viewer, ListQuery{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestSubscriptionServiceListPaginates(t *testing.T) {
	subs := make([]models.Subscription, 0, 5)
	for i := 1; i <= 5; i++ {
		subs = append(subs, models.Subscription{ID: fmt.Sprintf("sub-%d", i), Name: "Premium", PlanType: "PREMIUM"})
	}
	svc := NewSubscriptionService(&fakeSubscriptionRepo{subs: subs}, zap.NewNop())

	page, pagination, err := svc.List(context.Background(), manager, ListQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "sub-3", page[0].ID)
	assert.Equal(t, 5, pagination.TotalCount)
	assert.Equal(t, 2, pagination.Page)
}

func TestSubscriptionServiceListWrapsRepositoryErrors(t *testing.T) {
	svc := NewSubscriptionService(&fakeSubscriptionRepo{err: errors.New("connection reset")}, zap.NewNop())

	_, _, err := svc.List(context.Background(), manager, ListQuery{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Equal(t, "failed to list subscriptions", appErrors.FromError(err).Message)
}
