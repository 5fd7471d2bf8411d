package fetch

import (
	"context"
	"sync/atomic"

	"github.com/jonathan/apply-engine/internal/logger"
	"github.com/jonathan/apply-engine/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultEnrichConcurrency bounds in-flight page fetches across hosts.
const DefaultEnrichConcurrency = 4

// EnrichStats counts the outcome of an enrichment pass
type EnrichStats struct {
	Attempted int `json:"attempted"`
	Enriched  int `json:"enriched"`
	Failed    int `json:"failed"`
}

// Enricher fills in page content and missing text fields of postings
type Enricher struct {
	fetcher     *Fetcher
	renderer    Renderer
	concurrency int
	logger      *zap.Logger
}

// NewEnricher creates an enricher. renderer may be nil to disable the
// headless browser fallback.
func NewEnricher(fetcher *Fetcher, renderer Renderer, concurrency int, log *zap.Logger) *Enricher {
	if fetcher == nil {
		fetcher = NewFetcher(nil)
	}
	if concurrency <= 0 {
		concurrency = DefaultEnrichConcurrency
	}
	return &Enricher{
		fetcher:     fetcher,
		renderer:    renderer,
		concurrency: concurrency,
		logger:      logger.OrNop(log),
	}
}

// needsEnrichment reports whether a posting lacks page content or a description.
func needsEnrichment(p *types.Posting) bool {
	return p.Content == "" || p.Description == ""
}

// Enrich fetches pages for postings that need it, in place. Per-posting
// failures are logged and counted; only cancellation is returned.
func (e *Enricher) Enrich(ctx context.Context, postings []types.Posting) (EnrichStats, error) {
	var attempted, enriched, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range postings {
		p := &postings[i]
		if !needsEnrichment(p) {
			continue
		}
		attempted.Add(1)

		g.Go(func() error {
			if err := e.enrichOne(gctx, p); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				e.logger.Warn("failed to enrich posting", zap.String(logger.FieldURL, p.URL), zap.Error(err))
				return nil
			}
			enriched.Add(1)
			return nil
		})
	}

	err := g.Wait()
	stats := EnrichStats{
		Attempted: int(attempted.Load()),
		Enriched:  int(enriched.Load()),
		Failed:    int(failed.Load()),
	}
	e.logger.Info("enrichment finished",
		zap.Int("attempted", stats.Attempted),
		zap.Int("enriched", stats.Enriched),
		zap.Int("failed", stats.Failed),
	)
	return stats, err
}

func (e *Enricher) enrichOne(ctx context.Context, p *types.Posting) error {
	result, err := e.fetcher.Get(ctx, p.URL)
	if err != nil {
		return err
	}
	html := result.HTML

	provider := p.Provider()
	text, err := ExtractMainText(html, ContentSelectors(provider), NoiseSelectors(provider)...)
	if err != nil {
		return err
	}

	if e.renderer != nil && ShouldUseBrowser(text) {
		rendered, rerr := e.renderer.Render(ctx, p.URL)
		if rerr != nil {
			e.logger.Debug("browser fallback failed", zap.String(logger.FieldURL, p.URL), zap.Error(rerr))
		} else if renderedText, xerr := ExtractMainText(rendered, ContentSelectors(provider), NoiseSelectors(provider)...); xerr == nil {
			html, text = rendered, renderedText
		}
	}

	if p.Content == "" {
		p.Content = html
	}
	if p.Description == "" {
		p.Description = text
	}
	if p.Title == "" {
		p.Title = ExtractTitle(html)
	}
	return nil
}
