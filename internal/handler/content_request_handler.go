package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/service"
	"github.com/noah-isme/media-catalog-api/pkg/response"
)

type contentRequestService interface {
	Create(ctx context.Context, actor models.Actor, req service.CreateContentRequestRequest) (*models.ContentRequest, error)
	List(ctx context.Context, actor models.Actor, filter models.ContentRequestFilter, query service.ListQuery) ([]models.ContentRequest, *models.Pagination, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.ContentRequest, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id string, req service.UpdateContentRequestStatusRequest) (*models.ContentRequest, error)
	Assign(ctx context.Context, actor models.Actor, id string, req service.AssignContentRequestRequest) (*models.ContentRequest, error)
}

// ContentRequestHandler exposes viewer content requests.
type ContentRequestHandler struct {
	service contentRequestService
}

// NewContentRequestHandler constructs the handler.
func NewContentRequestHandler(svc contentRequestService) *ContentRequestHandler {
	return &ContentRequestHandler{service: svc}
}

// List godoc
// @Summary List content requests
// @Description Managers see every request, viewers their own. Newest first by default.
// @Tags ContentRequests
// @Produce json
// @Param q query string false "Search title, description, requester or category"
// @Param sort query string false "title|priority|status|category|createdBy|createdDate"
// @Param dir query string false "asc|desc"
// @Param status query []string false "Status filter" collectionFormat(multi)
// @Param priority query []string false "Priority filter" collectionFormat(multi)
// @Param category query []string false "Category filter" collectionFormat(multi)
// @Param reviewer query []string false "Reviewer ID filter" collectionFormat(multi)
// @Param from query string false "Created on or after (YYYY-MM-DD)"
// @Param to query string false "Created on or before (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /content-requests [get]
func (h *ContentRequestHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	filter, err := contentRequestFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), actor, filter, listQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get content request
// @Tags ContentRequests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /content-requests/{id} [get]
func (h *ContentRequestHandler) Get(c *gin.Context) {
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
// @Summary Submit a content request
// @Tags ContentRequests
// @Accept json
// @Produce json
// @Param payload body service.CreateContentRequestRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /content-requests [post]
func (h *ContentRequestHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.CreateContentRequestRequest
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
// @Summary Change request status
// @Tags ContentRequests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.UpdateContentRequestStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /content-requests/{id}/status [patch]
func (h *ContentRequestHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.UpdateContentRequestStatusRequest
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
// @Summary Assign a reviewer
// @Tags ContentRequests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.AssignContentRequestRequest true "Reviewer payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /content-requests/{id}/assign [patch]
func (h *ContentRequestHandler) Assign(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.AssignContentRequestRequest
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
