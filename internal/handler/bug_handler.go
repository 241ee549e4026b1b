package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/service"
	"github.com/noah-isme/media-catalog-api/pkg/response"
)

type bugService interface {
	Create(ctx context.Context, actor models.Actor, req service.CreateBugRequest) (*models.Bug, error)
	List(ctx context.Context, actor models.Actor, filter models.BugFilter, query service.ListQuery) ([]models.Bug, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Bug, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id string, req service.UpdateBugStatusRequest) (*models.Bug, error)
	Assign(ctx context.Context, actor models.Actor, id string, req service.AssignBugRequest) (*models.Bug, error)
}

// BugHandler exposes bug reports.
type BugHandler struct {
	service bugService
}

// NewBugHandler constructs the handler.
func NewBugHandler(svc bugService) *BugHandler {
	return &BugHandler{service: svc}
}

// List godoc
// @Summary List bugs
// @Tags Bugs
// @Produce json
// @Param q query string false "Search"
// @Param sort query string false "Sort field"
// @Param dir query string false "asc|desc"
// @Param status query []string false "Status filter" collectionFormat(multi)
// @Param priority query []string false "Priority filter" collectionFormat(multi)
// @Param assignee query []string false "Assignee ID filter" collectionFormat(multi)
// @Success 200 {object} response.Envelope
// @Router /bugs [get]
func (h *BugHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), actor, bugFilter(c), listQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get bug
// @Tags Bugs
// @Produce json
// @Param id path string true "Bug ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bugs/{id} [get]
func (h *BugHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Report a bug
// @Tags Bugs
// @Accept json
// @Produce json
// @Param payload body service.CreateBugRequest true "Bug payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /bugs [post]
func (h *BugHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.CreateBugRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateStatus godoc
// @Summary Change bug status
// @Tags Bugs
// @Accept json
// @Produce json
// @Param id path string true "Bug ID"
// @Param payload body service.UpdateBugStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bugs/{id}/status [patch]
func (h *BugHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.UpdateBugStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Assign godoc
// @Summary Assign or unassign a bug
// @Tags Bugs
// @Accept json
// @Produce json
// @Param id path string true "Bug ID"
// @Param payload body service.AssignBugRequest true "Assignee payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /bugs/{id}/assign [patch]
func (h *BugHandler) Assign(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.AssignBugRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Assign(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
