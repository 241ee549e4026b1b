package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/media-catalog-api/internal/charts"
	"github.com/noah-isme/media-catalog-api/internal/dto"
	"github.com/noah-isme/media-catalog-api/internal/models"
)

type requestSource interface {
	All(ctx context.Context, actor models.Actor) ([]models.ContentRequest, error)
}

type contentSource interface {
	All(ctx context.Context) ([]models.Content, error)
}

type bugSource interface {
	All(ctx context.Context, actor models.Actor) ([]models.Bug, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL    time.Duration
	TrendDays   int
	RecentLimit int
}

// DashboardService composes dashboard payloads from role-scoped lists.
type DashboardService struct {
	requests requestSource
	content  contentSource
	bugs     bugSource
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Requests requestSource
	Content  contentSource
	Bugs     bugSource
	Cache    *CacheService
	Logger   *zap.Logger
	Config   DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TrendDays <= 0 {
		cfg.TrendDays = charts.DefaultTrendDays
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		requests: params.Requests,
		content:  params.Content,
		bugs:     params.Bugs,
		cache:    params.Cache,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
	}
}

type dashboardData struct {
	requests []models.ContentRequest
	content  []models.Content
	bugs     []models.Bug
}

// load fetches the three sources concurrently.
func (s *DashboardService) load(ctx context.Context, actor models.Actor) (*dashboardData, error) {
	var data dashboardData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.requests, err = s.requests.All(gctx, actor)
		return err
	})
	g.Go(func() error {
		var err error
		data.content, err = s.content.All(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.bugs, err = s.bugs.All(gctx, actor)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load dashboard data", zap.String("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return &data, nil
}

func scopeKey(actor models.Actor) string {
	if actor.IsManager() {
		return "all"
	}
	return "user:" + actor.UserID
}

// Stats returns the headline counters and indicates cache utilisation.
func (s *DashboardService) Stats(ctx context.Context, actor models.Actor) (*dto.DashboardStatsResponse, bool, error) {
	key := ViewKey(PathDashboard, "stats", scopeKey(actor))
	resp, hit, err := cached(ctx, s.cache, key, s.cfg.CacheTTL, func() (dto.DashboardStatsResponse, error) {
		data, err := s.load(ctx, actor)
		if err != nil {
			return dto.DashboardStatsResponse{}, err
		}
		recent := data.requests
		if len(recent) > s.cfg.RecentLimit {
			recent = recent[:s.cfg.RecentLimit]
		}
		return dto.DashboardStatsResponse{
			Totals:         charts.DashboardStats(data.requests, data.content, data.bugs),
			RecentRequests: recent,
			GeneratedAt:    s.now().UTC(),
		}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &resp, hit, nil
}

// Charts returns every dashboard chart series.
func (s *DashboardService) Charts(ctx context.Context, actor models.Actor) (*dto.DashboardChartsResponse, bool, error) {
	key := ViewKey(PathDashboard, "charts", scopeKey(actor))
	resp, hit, err := cached(ctx, s.cache, key, s.cfg.CacheTTL, func() (dto.DashboardChartsResponse, error) {
		data, err := s.load(ctx, actor)
		if err != nil {
			return dto.DashboardChartsResponse{}, err
		}
		now := s.now()
		return dto.DashboardChartsResponse{
			RequestTrends:        charts.ContentRequestTrends(data.requests, s.cfg.TrendDays, now),
			PriorityDistribution: charts.PriorityDistribution(data.requests),
			StatusDistribution:   charts.StatusDistribution(data.requests),
			ContentTypes:         charts.ContentTypeDistribution(data.content),
			BugStatus:            charts.BugStatusDistribution(data.bugs),
			BugPriority:          charts.BugPriorityDistribution(data.bugs),
			GeneratedAt:          now.UTC(),
		}, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &resp, hit, nil
}
