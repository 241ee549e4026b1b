package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/service"
	"github.com/noah-isme/media-catalog-api/pkg/response"
)

type contentService interface {
	Create(ctx context.Context, actor models.Actor, req service.ContentCreateRequest) (*models.Content, error)
	List(ctx context.Context, filter models.ContentFilter, query service.ListQuery) ([]models.Content, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Content, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id string, req service.ContentStatusRequest) (*models.Content, error)
	Assign(ctx context.Context, actor models.Actor, id string, req service.ContentAssignRequest) (*models.Content, error)
}

// ContentHandler exposes the catalog.
type ContentHandler struct {
	service contentService
}

// NewContentHandler constructs the handler.
func NewContentHandler(svc contentService) *ContentHandler {
	return &ContentHandler{service: svc}
}

// List godoc
// @Summary List catalog content
// @Tags Content
// @Produce json
// @Param q query string false "Search name, type or genre"
// @Param sort query string false "name|type|genre|status|rating|createdDate"
// @Param dir query string false "asc|desc"
// @Param status query []string false "Status filter" collectionFormat(multi)
// @Param type query []string false "Type filter" collectionFormat(multi)
// @Param genre query []string false "Genre filter" collectionFormat(multi)
// @Success 200 {object} response.Envelope
// @Router /content [get]
func (h *ContentHandler) List(c *gin.Context) {
	items, pagination, err := h.service.List(c.Request.Context(), contentFilter(c), listQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get content
// @Tags Content
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /content/{id} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Add content
// @Tags Content
// @Accept json
// @Produce json
// @Param payload body service.ContentCreateRequest true "Content payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /content [post]
func (h *ContentHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.ContentCreateRequest
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
// @Summary Change content status
// @Tags Content
// @Accept json
// @Produce json
// @Param id path string true "Content ID"
// @Param payload body service.ContentStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /content/{id}/status [patch]
func (h *ContentHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.ContentStatusRequest
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
// @Summary Assign or clear the featured user
// @Tags Content
// @Accept json
// @Produce json
// @Param id path string true "Content ID"
// @Param payload body service.ContentAssignRequest true "Assignee payload"
// @Success 200 {object} response.Envelope
// @Router /content/{id}/assign [patch]
func (h *ContentHandler) Assign(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.ContentAssignRequest
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
