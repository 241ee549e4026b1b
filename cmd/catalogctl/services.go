package main

import (
	"context"

	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/repository"
	"github.com/noah-isme/media-catalog-api/internal/service"
	"github.com/noah-isme/media-catalog-api/pkg/export"
)

// operatorActor is the identity CLI reads run under. It sees every record.
var operatorActor = models.Actor{UserID: "catalogctl", Role: models.RoleContentManager, UserAgent: "catalogctl"}

// readServices wires the read paths of the catalog services without cache
// or rate limiting.
type readServices struct {
	requests   *service.ContentRequestService
	content    *service.ContentService
	bugs       *service.BugService
	viewership *service.ViewershipService
	dashboard  *service.DashboardService
	exports    *service.ExportService
}

func (c *commandContext) readServices(ctx context.Context) (*readServices, error) {
	db, err := c.ensureDB(ctx)
	if err != nil {
		return nil, err
	}
	cfg := c.cfg

	requests := service.NewContentRequestService(service.ContentRequestServiceParams{
		Repo:   repository.NewContentRequestRepository(db),
		Logger: c.logger,
	})
	content := service.NewContentService(service.ContentServiceParams{
		Repo:   repository.NewContentRepository(db),
		Logger: c.logger,
	})
	bugs := service.NewBugService(service.BugServiceParams{
		Repo:   repository.NewBugRepository(db),
		Logger: c.logger,
	})
	viewership := service.NewViewershipService(repository.NewViewershipRepository(db), nil, c.logger, service.ViewershipServiceConfig{
		TopN:      cfg.Charts.TopContentMax,
		TrendDays: cfg.Charts.TrendDays,
	})
	dashboard := service.NewDashboardService(service.DashboardServiceParams{
		Requests: requests,
		Content:  content,
		Bugs:     bugs,
		Logger:   c.logger,
		Config:   service.DashboardServiceConfig{TrendDays: cfg.Charts.TrendDays},
	})
	exports := service.NewExportService(service.ExportServiceParams{
		Requests:   requests,
		Bugs:       bugs,
		Content:    content,
		Viewership: viewership,
		CSV:        export.NewCSVExporter(),
		PDF:        export.NewPDFExporter(),
		Logger:     c.logger,
	})

	return &readServices{
		requests:   requests,
		content:    content,
		bugs:       bugs,
		viewership: viewership,
		dashboard:  dashboard,
		exports:    exports,
	}, nil
}
