package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/media-catalog-api/internal/models"
	"github.com/noah-isme/media-catalog-api/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type requestLister interface {
	List(ctx context.Context, actor models.Actor, filter models.ContentRequestFilter, query ListQuery) ([]models.ContentRequest, *models.Pagination, error)
}

type bugLister interface {
	List(ctx context.Context, actor models.Actor, filter models.BugFilter, query ListQuery) ([]models.Bug, *models.Pagination, error)
}

type contentLister interface {
	List(ctx context.Context, filter models.ContentFilter, query ListQuery) ([]models.Content, *models.Pagination, error)
}

type viewershipLister interface {
	All(ctx context.Context, actor models.Actor) ([]models.ViewershipMetric, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Requests   requestLister
	Bugs       bugLister
	Content    contentLister
	Viewership viewershipLister
	CSV        csvRenderer
	PDF        pdfRenderer
	Logger     *zap.Logger
}

// ExportService projects list views into CSV or PDF files.
type ExportService struct {
	requests   requestLister
	bugs       bugLister
	content    contentLister
	viewership viewershipLister
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		requests:   params.Requests,
		bugs:       params.Bugs,
		content:    params.Content,
		viewership: params.Viewership,
		csv:        csv,
		pdf:        pdf,
		logger:     logger,
		now:        time.Now,
	}
}

var (
	contentRequestColumns = []export.Column{
		{Key: "title", Header: "Title"},
		{Key: "description", Header: "Description"},
		{Key: "priority", Header: "Priority"},
		{Key: "status", Header: "Status"},
		{Key: "category", Header: "Category"},
		{Key: "created_by", Header: "Created By"},
		{Key: "created_at", Header: "Created At"},
		{Key: "reviewed_by", Header: "Reviewed By"},
	}
	bugColumns = []export.Column{
		{Key: "title", Header: "Title"},
		{Key: "description", Header: "Description"},
		{Key: "priority", Header: "Priority"},
		{Key: "status", Header: "Status"},
		{Key: "browser_device", Header: "Browser/Device"},
		{Key: "affected_content", Header: "Affected Content"},
		{Key: "reported_by", Header: "Reported By"},
		{Key: "assigned_to", Header: "Assigned To"},
		{Key: "created_at", Header: "Created At"},
	}
	contentColumns = []export.Column{
		{Key: "name", Header: "Name"},
		{Key: "type", Header: "Type"},
		{Key: "genre", Header: "Genre"},
		{Key: "status", Header: "Status"},
		{Key: "release_date", Header: "Release Date"},
		{Key: "duration", Header: "Duration"},
		{Key: "rating", Header: "Rating"},
		{Key: "assigned_to", Header: "Assigned To"},
		{Key: "created_at", Header: "Created At"},
	}
	viewershipColumns = []export.Column{
		{Key: "content", Header: "Content"},
		{Key: "viewer", Header: "Viewer"},
		{Key: "views", Header: "Views"},
		{Key: "watch_time", Header: "Watch Time (min)"},
		{Key: "completion_rate", Header: "Completion Rate"},
		{Key: "last_watched", Header: "Last Watched"},
	}
)

// ContentRequests exports the requests visible to the actor.
func (s *ExportService) ContentRequests(ctx context.Context, actor models.Actor, format string, filter models.ContentRequestFilter, query ListQuery) (*ExportFile, error) {
	query.Page, query.PageSize = 0, 0
	requests, _, err := s.requests.List(ctx, actor, filter, query)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]interface{}, len(requests))
	for i, r := range requests {
		rows[i] = map[string]interface{}{
			"title":       r.Title,
			"description": r.Description,
			"priority":    string(r.Priority),
			"status":      string(r.Status),
			"category":    r.Category,
			"created_by":  r.Viewer.DisplayName(),
			"created_at":  r.CreatedAt,
			"reviewed_by": r.Reviewer.DisplayName(),
		}
	}
	return s.render(format, "content-requests", "Content Requests", export.Dataset{Columns: contentRequestColumns, Rows: rows})
}

// Bugs exports the bugs visible to the actor.
func (s *ExportService) Bugs(ctx context.Context, actor models.Actor, format string, filter models.BugFilter, query ListQuery) (*ExportFile, error) {
	query.Page, query.PageSize = 0, 0
	bugs, _, err := s.bugs.List(ctx, actor, filter, query)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]interface{}, len(bugs))
	for i, b := range bugs {
		var affected string
		if b.AffectedContent != nil {
			affected = b.AffectedContent.Name
		}
		rows[i] = map[string]interface{}{
			"title":            b.Title,
			"description":      b.Description,
			"priority":         string(b.Priority),
			"status":           string(b.Status),
			"browser_device":   b.BrowserDevice,
			"affected_content": affected,
			"reported_by":      b.Reporter.DisplayName(),
			"assigned_to":      b.AssignedTo.DisplayName(),
			"created_at":       b.CreatedAt,
		}
	}
	return s.render(format, "bugs", "Bugs", export.Dataset{Columns: bugColumns, Rows: rows})
}

// Content exports catalog items.
func (s *ExportService) Content(ctx context.Context, format string, filter models.ContentFilter, query ListQuery) (*ExportFile, error) {
	query.Page, query.PageSize = 0, 0
	items, _, err := s.content.List(ctx, filter, query)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]interface{}, len(items))
	for i, c := range items {
		rows[i] = map[string]interface{}{
			"name":         c.Name,
			"type":         c.Type,
			"genre":        c.Genre,
			"status":       string(c.Status),
			"release_date": c.ReleaseDate,
			"duration":     c.Duration,
			"rating":       c.Rating,
			"assigned_to":  c.AssignedUser.DisplayName(),
			"created_at":   c.CreatedAt,
		}
	}
	return s.render(format, "content", "Content", export.Dataset{Columns: contentColumns, Rows: rows})
}

// Viewership exports every viewership metric. Managers only.
func (s *ExportService) Viewership(ctx context.Context, actor models.Actor, format string) (*ExportFile, error) {
	metrics, err := s.viewership.All(ctx, actor)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]interface{}, len(metrics))
	for i, m := range metrics {
		var content string
		if m.Content != nil {
			content = m.Content.Name
		}
		rows[i] = map[string]interface{}{
			"content":         content,
			"viewer":          m.User.DisplayName(),
			"views":           m.Views,
			"watch_time":      m.WatchTimeMinutes,
			"completion_rate": m.CompletionRate,
			"last_watched":    m.LastWatchedAt,
		}
	}
	return s.render(format, "viewership", "Viewership", export.Dataset{Columns: viewershipColumns, Rows: rows})
}

func (s *ExportService) render(format, prefix, title string, data export.Dataset) (*ExportFile, error) {
	filename := export.GenerateFilename(prefix, s.now())
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		body, err := s.csv.Render(data)
		if err != nil {
			s.logger.Error("failed to render csv export", zap.String("export", prefix), zap.Error(err))
			return nil, internalError(err, "failed to render export")
		}
		return &ExportFile{Filename: filename, ContentType: "text/csv; charset=utf-8", Body: body}, nil
	case FormatPDF:
		body, err := s.pdf.Render(data, title)
		if err != nil {
			s.logger.Error("failed to render pdf export", zap.String("export", prefix), zap.Error(err))
			return nil, internalError(err, "failed to render export")
		}
		filename = strings.TrimSuffix(filename, ".csv") + ".pdf"
		return &ExportFile{Filename: filename, ContentType: "application/pdf", Body: body}, nil
	default:
		return nil, validationFailed("format", "must be one of csv pdf")
	}
}
