package posters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxRedirects = 5

// Store is the subset of storage the fetcher writes through.
type Store interface {
	Exists(name string) (bool, error)
	SaveStream(name string, r io.Reader) (int64, error)
}

// Outcome describes what happened to one poster.
type Outcome string

// Fetch outcomes.
const (
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeFailed     Outcome = "failed"
)

// Result is the per-poster report of a fetch run.
type Result struct {
	Filename string
	Outcome  Outcome
	Bytes    int64
	Err      error
}

// Fetcher downloads posters over HTTP into a Store.
type Fetcher struct {
	client      *http.Client
	store       Store
	concurrency int
	logger      *zap.Logger
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	Timeout     time.Duration
	Concurrency int
	Client      *http.Client
	Logger      *zap.Logger
}

// NewFetcher builds a fetcher that follows at most five redirects. A client
// in cfg is copied, never modified.
func NewFetcher(store Store, cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Client != nil {
		c := *cfg.Client
		client = &c
	}
	client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}
	return &Fetcher{client: client, store: store, concurrency: cfg.Concurrency, logger: cfg.Logger}
}

// FetchOne downloads a single poster unless it already exists. A failed
// download leaves no file behind.
func (f *Fetcher) FetchOne(ctx context.Context, p Poster) Result {
	res := Result{Filename: p.Filename}

	exists, err := f.store.Exists(p.Filename)
	if err != nil {
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}
	if exists {
		res.Outcome = OutcomeSkipped
		f.logger.Debug("poster exists, skipping", zap.String("filename", p.Filename))
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}
	resp, err := f.client.Do(req)
	if err != nil {
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		res.Outcome, res.Err = OutcomeFailed, fmt.Errorf("failed to download: %d", resp.StatusCode)
		return res
	}

	n, err := f.store.SaveStream(p.Filename, resp.Body)
	if err != nil {
		res.Outcome, res.Err = OutcomeFailed, err
		return res
	}
	res.Outcome, res.Bytes = OutcomeDownloaded, n
	f.logger.Info("poster downloaded", zap.String("filename", p.Filename), zap.Int64("bytes", n))
	return res
}

// FetchAll downloads every poster with bounded concurrency. Individual
// failures are reported in the results, not returned; the error is non-nil
// only when ctx is cancelled. Results keep manifest order.
func (f *Fetcher) FetchAll(ctx context.Context, posters []Poster) ([]Result, error) {
	results := make([]Result, len(posters))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, p := range posters {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := f.FetchOne(gctx, p)
			if res.Outcome == OutcomeFailed {
				f.logger.Warn("poster download failed", zap.String("filename", p.Filename), zap.Error(res.Err))
			}
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return results, err
	}
	return results, ctx.Err()
}

// Summary counts outcomes.
func Summary(results []Result) map[Outcome]int {
	out := map[Outcome]int{}
	for _, r := range results {
		if r.Outcome != "" {
			out[r.Outcome]++
		}
	}
	return out
}
