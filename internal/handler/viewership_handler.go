package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/media-catalog-api/internal/charts"
	"github.com/noah-isme/media-catalog-api/internal/dto"
	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/service"
	appErrors "github.com/noah-isme/media-catalog-api/pkg/errors"
	"github.com/noah-isme/media-catalog-api/pkg/response"
)

type viewershipService interface {
	Stats(ctx context.Context, actor models.Actor) (*charts.ViewershipSummary, bool, error)
	Trends(ctx context.Context, actor models.Actor, days int) (*dto.ViewershipTrendsResponse, bool, error)
	List(ctx context.Context, actor models.Actor, query service.ListQuery) ([]models.ViewershipMetric, *models.Pagination, error)
}

// ViewershipHandler exposes viewership analytics to content managers.
type ViewershipHandler struct {
	service viewershipService
}

// NewViewershipHandler constructs the handler.
func NewViewershipHandler(svc viewershipService) *ViewershipHandler {
	return &ViewershipHandler{service: svc}
}

// Stats godoc
// @Summary Viewership summary
// @Tags Viewership
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /viewership/stats [get]
func (h *ViewershipHandler) Stats(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, hit, err := h.service.Stats(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, summary, hit, start)
}

// Trends godoc
// @Summary Daily viewership trend
// @Tags Viewership
// @Produce json
// @Param days query int false "Window in days"
// @Success 200 {object} response.Envelope
// @Router /viewership/trends [get]
func (h *ViewershipHandler) Trends(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "validation failed: days: must be a positive number"))
			return
		}
		days = parsed
	}
	start := time.Now()
	trends, hit, err := h.service.Trends(c.Request.Context(), actor, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, trends, hit, start)
}

// List godoc
// @Summary List viewership records
// @Tags Viewership
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /viewership [get]
func (h *ViewershipHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), actor, listQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
