package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/media-catalog-api/pkg/jobs"
	"github.com/noah-isme/media-catalog-api/pkg/posters"
)

// PosterJob asks for a content item's remote poster to be stored locally.
type PosterJob struct {
	ContentID string
	Name      string
	URL       string
}

type posterFetcher interface {
	FetchOne(ctx context.Context, p posters.Poster) posters.Result
}

type posterURLUpdater interface {
	UpdatePosterURL(ctx context.Context, id, posterURL string) error
}

type posterQueue interface {
	TryEnqueue(job jobs.Job[PosterJob]) error
}

type posterRecorder interface {
	RecordPosterDownload(outcome string)
}

// PosterService prefetches poster artwork for newly created content.
type PosterService struct {
	fetcher    posterFetcher
	repo       posterURLUpdater
	queue      posterQueue
	metrics    posterRecorder
	publicPath string
	logger     *zap.Logger
}

// NewPosterService constructs the service. publicPath is the URL prefix the
// stored files are served under.
func NewPosterService(fetcher posterFetcher, repo posterURLUpdater, metrics posterRecorder, publicPath string, logger *zap.Logger) *PosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publicPath == "" {
		publicPath = "/posters"
	}
	return &PosterService{fetcher: fetcher, repo: repo, metrics: metrics, publicPath: publicPath, logger: logger}
}

// AttachQueue wires the queue whose handler is Handle.
func (s *PosterService) AttachQueue(q posterQueue) {
	s.queue = q
}

// IsRemote reports whether url needs downloading.
func IsRemote(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Schedule enqueues a download without blocking. A full queue drops the job.
func (s *PosterService) Schedule(contentID, name, url string) error {
	if s == nil || s.queue == nil || !IsRemote(url) {
		return nil
	}
	err := s.queue.TryEnqueue(jobs.Job[PosterJob]{
		ID:      contentID,
		Payload: PosterJob{ContentID: contentID, Name: name, URL: url},
	})
	if err != nil {
		s.logger.Warn("poster prefetch not scheduled", zap.String("content_id", contentID), zap.Error(err))
	}
	return err
}

// Handle downloads one poster and points the content item at the local copy.
func (s *PosterService) Handle(ctx context.Context, job jobs.Job[PosterJob]) error {
	p := posters.Poster{
		Filename: posters.FilenameFor(job.Payload.Name, job.Payload.URL),
		URL:      job.Payload.URL,
	}
	res := s.fetcher.FetchOne(ctx, p)
	if s.metrics != nil {
		s.metrics.RecordPosterDownload(string(res.Outcome))
	}
	if res.Err != nil {
		return fmt.Errorf("fetch poster %s: %w", p.Filename, res.Err)
	}

	local := path.Join(s.publicPath, p.Filename)
	if err := s.repo.UpdatePosterURL(ctx, job.Payload.ContentID, local); err != nil {
		return fmt.Errorf("update poster url: %w", err)
	}
	s.logger.Info("poster stored", zap.String("content_id", job.Payload.ContentID), zap.String("path", local), zap.String("outcome", string(res.Outcome)))
	return nil
}
