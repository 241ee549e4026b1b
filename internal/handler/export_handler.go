package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/internal/service"
	"github.com/noah-isme/media-catalog-api/pkg/response"
)

type exportService interface {
	ContentRequests(ctx context.Context, actor models.Actor, format string, filter models.ContentRequestFilter, query service.ListQuery) (*service.ExportFile, error)
	Bugs(ctx context.Context, actor models.Actor, format string, filter models.BugFilter, query service.ListQuery) (*service.ExportFile, error)
	Content(ctx context.Context, format string, filter models.ContentFilter, query service.ListQuery) (*service.ExportFile, error)
	Viewership(ctx context.Context, actor models.Actor, format string) (*service.ExportFile, error)
}

// ExportHandler streams CSV and PDF downloads of the list views. Exports
// honour the same filters as the list endpoints.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ContentRequests godoc
// @Summary Export content requests
// @Tags Export
// @Produce text/csv,application/pdf
// @Param format query string false "csv|pdf"
// @Success 200 {file} binary
// @Router /export/content-requests [get]
func (h *ExportHandler) ContentRequests(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	filter, err := contentRequestFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.ContentRequests(c.Request.Context(), actor, c.Query("format"), filter, listQuery(c))
	h.send(c, file, err)
}

// Bugs godoc
// @Summary Export bugs
// @Tags Export
// @Produce text/csv,application/pdf
// @Param format query string false "csv|pdf"
// @Success 200 {file} binary
// @Router /export/bugs [get]
func (h *ExportHandler) Bugs(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	file, err := h.service.Bugs(c.Request.Context(), actor, c.Query("format"), bugFilter(c), listQuery(c))
	h.send(c, file, err)
}

// Content godoc
// @Summary Export catalog content
// @Tags Export
// @Produce text/csv,application/pdf
// @Param format query string false "csv|pdf"
// @Success 200 {file} binary
// @Router /export/content [get]
func (h *ExportHandler) Content(c *gin.Context) {
	file, err := h.service.Content(c.Request.Context(), c.Query("format"), contentFilter(c), listQuery(c))
	h.send(c, file, err)
}

// Viewership godoc
// @Summary Export viewership records
// @Tags Export
// @Produce text/csv,application/pdf
// @Param format query string false "csv|pdf"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /export/viewership [get]
func (h *ExportHandler) Viewership(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	file, err := h.service.Viewership(c.Request.Context(), actor, c.Query("format"))
	h.send(c, file, err)
}

func (h *ExportHandler) send(c *gin.Context, file *service.ExportFile, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
