package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/media-catalog-api/internal/dto"
	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context, actor models.Actor) (*dto.DashboardStatsResponse, bool, error)
	Charts(ctx context.Context, actor models.Actor) (*dto.DashboardChartsResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats godoc
// @Summary Dashboard counters
// @Description Scoped to the caller's own records for viewers.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	start := time.Now()
	stats, hit, err := h.service.Stats(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, stats, hit, start)
}

// Charts godoc
// @Summary Dashboard chart series
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/charts [get]
func (h *DashboardHandler) Charts(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	start := time.Now()
	series, hit, err := h.service.Charts(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, series, hit, start)
}
