package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/media-catalog-api/internal/charts"
	"github.com/noah-isme/media-catalog-api/internal/dto"
	"github.com/noah-isme/media-catalog-api/internal/listing"
	"github.com/noah-isme/media-catalog-api/internal/models"
)

type viewershipRepository interface {
	List(ctx context.Context, since *time.Time) ([]models.ViewershipMetric, error)
}

// ViewershipServiceConfig tunes viewership rollups.
type ViewershipServiceConfig struct {
	CacheTTL  time.Duration
	TopN      int
	TrendDays int
}

// ViewershipService serves cached viewership analytics to managers.
type ViewershipService struct {
	repo   viewershipRepository
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
	cfg    ViewershipServiceConfig
}

// NewViewershipService constructs the service.
func NewViewershipService(repo viewershipRepository, cache *CacheService, logger *zap.Logger, cfg ViewershipServiceConfig) *ViewershipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TopN <= 0 {
		cfg.TopN = charts.DefaultTopContent
	}
	if cfg.TrendDays <= 0 {
		cfg.TrendDays = charts.DefaultTrendDays
	}
	return &ViewershipService{repo: repo, cache: cache, logger: logger, now: time.Now, cfg: cfg}
}

// Stats returns totals and the top content leaderboard.
func (s *ViewershipService) Stats(ctx context.Context, actor models.Actor) (*charts.ViewershipSummary, bool, error) {
	if err := requireManager(actor); err != nil {
		return nil, false, err
	}
	key := ViewKey(PathViewership, "stats", strconv.Itoa(s.cfg.TopN))
	summary, hit, err := cached(ctx, s.cache, key, s.cfg.CacheTTL, func() (charts.ViewershipSummary, error) {
		metrics, err := s.repo.List(ctx, nil)
		if err != nil {
			s.logger.Error("failed to fetch viewership statistics", zap.Error(err))
			return charts.ViewershipSummary{}, internalError(err, "failed to fetch viewership statistics")
		}
		return charts.ViewershipStats(metrics, s.cfg.TopN), nil
	})
	if err != nil {
		return nil, false, err
	}
	return &summary, hit, nil
}

// Trends returns daily views and watch time for the trailing days.
func (s *ViewershipService) Trends(ctx context.Context, actor models.Actor, days int) (*dto.ViewershipTrendsResponse, bool, error) {
	if err := requireManager(actor); err != nil {
		return nil, false, err
	}
	if days <= 0 {
		days = s.cfg.TrendDays
	}
	key := ViewKey(PathViewership, "trends", strconv.Itoa(days))
	resp, hit, err := cached(ctx, s.cache, key, s.cfg.CacheTTL, func() (dto.ViewershipTrendsResponse, error) {
		now := s.now()
		since := now.AddDate(0, 0, -days)
		metrics, err := s.repo.List(ctx, &since)
		if err != nil {
			s.logger.Error("failed to fetch viewership trends", zap.Error(err))
			return dto.ViewershipTrendsResponse{}, internalError(err, "failed to fetch viewership trends")
		}
		return dto.ViewershipTrendsResponse{
			Days:        days,
			Points:      charts.ViewershipTrends(metrics, days, now),
			GeneratedAt: now.UTC(),
		}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &resp, hit, nil
}

// All returns every metric row, most recently watched first.
func (s *ViewershipService) All(ctx context.Context, actor models.Actor) ([]models.ViewershipMetric, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	metrics, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, internalError(err, "failed to fetch viewership metrics")
	}
	return metrics, nil
}

// List pages through metric rows.
func (s *ViewershipService) List(ctx context.Context, actor models.Actor, query ListQuery) ([]models.ViewershipMetric, *models.Pagination, error) {
	metrics, err := s.All(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	page, pagination := listing.Paginate(metrics, query.Page, query.PageSize)
	return page, pagination, nil
}
