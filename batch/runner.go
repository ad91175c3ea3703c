// Package batch runs the normalize → fetch → extract pipeline over a list of
// URLs with bounded concurrency and per-item failure isolation.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/use-agent/seometa/config"
	"github.com/use-agent/seometa/extractor"
	"github.com/use-agent/seometa/models"
	"github.com/use-agent/seometa/scraper"
)

// Fetcher retrieves the raw body of a normalized URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor derives metadata from a fetched HTML body.
type Extractor interface {
	Extract(body []byte) (*models.Metadata, error)
}

// Ensure the production collaborators satisfy the interfaces at compile time.
var (
	_ Fetcher   = (*scraper.Fetcher)(nil)
	_ Extractor = (*extractor.Extractor)(nil)
)

// Runner is the batch orchestrator. It holds no per-batch state, so one
// Runner can serve concurrent requests.
type Runner struct {
	fetcher     Fetcher
	extractor   Extractor
	concurrency int
	logger      *slog.Logger
	onComplete  func(*models.BatchResult)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithCompletionHook registers fn to be called with every finished batch.
func WithCompletionHook(fn func(*models.BatchResult)) Option {
	return func(r *Runner) {
		r.onComplete = fn
	}
}

// NewRunner creates a Runner. Concurrency below 1 is raised to 1.
func NewRunner(f Fetcher, e Extractor, cfg config.BatchConfig, opts ...Option) *Runner {
	r := &Runner{
		fetcher:     f,
		extractor:   e,
		concurrency: cfg.Concurrency,
		logger:      slog.Default(),
	}
	if r.concurrency < 1 {
		r.concurrency = 1
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Concurrency returns the maximum number of in-flight fetches per batch.
func (r *Runner) Concurrency() int {
	return r.concurrency
}

// Analyze normalizes, fetches and extracts a single raw URL.
//
// On failure the returned result carries the raw entry as given and the
// error text, and err holds the typed cause so callers can map its code.
// A panic in either stage is recovered as an INTERNAL_ERROR.
func (r *Runner) Analyze(ctx context.Context, raw string) (res models.ExtractionResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("analyze panicked", "url", raw, "panic", p)
			err = models.NewAnalyzeError(models.ErrCodeInternal, fmt.Sprintf("internal error: %v", p), nil)
			res = models.NewFailure(raw, err)
		}
	}()

	target := scraper.NormalizeURL(raw)

	body, err := r.fetcher.Fetch(ctx, target)
	if err != nil {
		return models.NewFailure(raw, err), err
	}

	md, err := r.extractor.Extract(body)
	if err != nil {
		return models.NewFailure(raw, err), err
	}
	if md == nil {
		md = &models.Metadata{}
	}
	return models.NewSuccess(target, *md), nil
}

// AnalyzeOne is Analyze for callers that only need the result. It never
// fails: errors are folded into the result.
func (r *Runner) AnalyzeOne(ctx context.Context, raw string) models.ExtractionResult {
	res, _ := r.Analyze(ctx, raw)
	return res
}

// Run processes every entry of req and returns results in input order.
//
// Items run on a bounded pool; each writes only its own slot. Cancelling ctx
// does not abort a batch once started, and no deadline is shared across
// items beyond each fetch's own timeout.
func (r *Runner) Run(ctx context.Context, req *models.BatchRequest) *models.BatchResult {
	start := time.Now()
	id := "batch-" + uuid.NewString()
	ctx = context.WithoutCancel(ctx)

	results := make([]models.ExtractionResult, req.Len())

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, raw := range req.URLs {
		g.Go(func() error {
			results[i] = r.AnalyzeOne(ctx, raw)
			if !results[i].Succeeded() {
				r.logger.Debug("batch item failed", "id", id, "index", i, "url", raw, "error", results[i].Error)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := models.Summarize(results)
	summary.ElapsedMs = time.Since(start).Milliseconds()

	r.logger.Info("batch finished",
		"id", id,
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"elapsedMs", summary.ElapsedMs,
	)

	res := &models.BatchResult{
		ID:      id,
		Summary: summary,
		Results: results,
	}
	if r.onComplete != nil {
		r.onComplete(res)
	}
	return res
}
