// Package pipeline orchestrates one end-to-end run: load postings, enrich,
// classify and score, filter, track, dispatch and report.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/apply-engine/internal/classify"
	"github.com/jonathan/apply-engine/internal/dispatch"
	"github.com/jonathan/apply-engine/internal/fetch"
	"github.com/jonathan/apply-engine/internal/logger"
	"github.com/jonathan/apply-engine/internal/observability"
	"github.com/jonathan/apply-engine/internal/schemas"
	"github.com/jonathan/apply-engine/internal/scoring"
	"github.com/jonathan/apply-engine/internal/tracker"
	"github.com/jonathan/apply-engine/internal/types"
)

// Output files written to the output directory.
const (
	FileClassified   = "jobs_classified.json"
	FileScored       = "jobs_scored.json"
	FileProcessed    = "jobs_processed.json"
	FileApplications = "applications_tier1.json"
)

// Step names reported through progress events.
const (
	StepLoad     = "load"
	StepEnrich   = "enrich"
	StepAnalyze  = "classify_score"
	StepFilter   = "filter"
	StepTrack    = "track"
	StepDispatch = "dispatch"
	StepReport   = "report"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	JobsFile        string
	OutputDir       string
	MinScore        float64
	MaxApplications int
	MarkFailed      bool
	Verbose         bool
	OnProgress      ProgressCallback
}

// Components are the collaborators a run uses. Enricher, Tracker and
// Dispatcher are optional; a nil component skips its step.
type Components struct {
	Classifier *classify.Classifier
	Scorer     *scoring.Scorer
	Enricher   *fetch.Enricher
	Tracker    *tracker.Tracker
	Dispatcher *dispatch.Dispatcher
	Printer    *observability.Printer
	Logger     *zap.Logger
}

// Summary reports what a run did
type Summary struct {
	Loaded       int                   `json:"loaded"`
	Skipped      int                   `json:"skipped"`
	Enrichment   *fetch.EnrichStats    `json:"enrichment,omitempty"`
	Distribution classify.Distribution `json:"distribution"`
	Bands        scoring.Bands         `json:"bands"`
	Kept         int                   `json:"kept"`
	Tracked      int                   `json:"tracked"`
	Dispatch     *dispatch.Result      `json:"dispatch,omitempty"`
	Stats        *types.TrackerStats   `json:"stats,omitempty"`
}

// Runner executes pipeline runs
type Runner struct {
	c Components
}

// New creates a runner. Classifier and Scorer default to the embedded
// catalog and an empty profile.
func New(c Components) *Runner {
	if c.Classifier == nil {
		c.Classifier = classify.New(nil)
	}
	if c.Scorer == nil {
		c.Scorer = scoring.New(nil)
	}
	if c.Printer == nil {
		c.Printer = observability.NewPrinter(os.Stdout)
	}
	c.Logger = logger.OrNop(c.Logger)
	return &Runner{c: c}
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Run executes one pipeline run. Dispatch failures are part of the summary;
// only infrastructure errors and cancellation are returned.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	log := r.c.Logger
	summary := &Summary{}

	// Step 1: Load postings
	postings, skipped, err := LoadPostings(opts.JobsFile, log)
	if err != nil {
		return nil, err
	}
	summary.Loaded = len(postings)
	summary.Skipped = skipped
	log.Info("loaded postings", zap.Int("count", len(postings)), zap.Int("skipped", skipped), zap.String("file", opts.JobsFile))
	emitProgress(&opts, StepLoad, fmt.Sprintf("Loaded %d postings", len(postings)), nil)

	if len(postings) == 0 {
		return summary, nil
	}

	// Step 2: Enrich postings that lack page content
	if r.c.Enricher != nil {
		stats, err := r.c.Enricher.Enrich(ctx, postings)
		if err != nil {
			return summary, fmt.Errorf("enrichment interrupted: %w", err)
		}
		summary.Enrichment = &stats
		emitProgress(&opts, StepEnrich, fmt.Sprintf("Enriched %d of %d postings", stats.Enriched, stats.Attempted), stats)
	}

	// Step 3: Classify and score in parallel; each branch writes its own field
	if err := r.analyze(ctx, postings); err != nil {
		return summary, err
	}
	if err := WriteJSON(opts.OutputDir, FileClassified, postings); err != nil {
		return summary, err
	}

	scoring.SortByScore(postings)
	summary.Distribution = classify.Distribute(postings)
	summary.Bands = scoring.CountBands(postings)
	if err := WriteJSON(opts.OutputDir, FileScored, postings); err != nil {
		return summary, err
	}
	emitProgress(&opts, StepAnalyze, "Classified and scored postings", summary.Distribution)

	// Step 4: Filter by minimum score
	kept := scoring.Filter(postings, opts.MinScore)
	summary.Kept = len(kept)
	if err := WriteJSON(opts.OutputDir, FileProcessed, kept); err != nil {
		return summary, err
	}
	r.c.Printer.PrintDistribution(summary.Distribution, len(postings))
	r.c.Printer.PrintScoreBands(summary.Bands, len(postings), len(kept), opts.MinScore)
	if opts.Verbose {
		r.c.Printer.PrintTopPostings(kept)
	}
	emitProgress(&opts, StepFilter, fmt.Sprintf("Kept %d postings at min score %.0f", len(kept), opts.MinScore), nil)

	// Step 5: Track every kept posting as pending
	if r.c.Tracker != nil {
		n, err := r.c.Tracker.UpsertAll(ctx, kept)
		summary.Tracked = n
		if err != nil {
			return summary, err
		}
		emitProgress(&opts, StepTrack, fmt.Sprintf("Tracked %d applications", n), nil)
	}

	// Step 6: Dispatch tier-1 postings
	if r.c.Dispatcher != nil {
		result, err := r.Dispatch(ctx, kept, opts)
		summary.Dispatch = result
		if err != nil {
			return summary, err
		}
		emitProgress(&opts, StepDispatch, fmt.Sprintf("Dispatched %d applications", result.Attempted()), result)
	}

	// Step 7: Report
	if r.c.Tracker != nil {
		stats, err := r.c.Tracker.Stats(ctx, tracker.DefaultTopProviders)
		if err != nil {
			return summary, err
		}
		summary.Stats = stats
		r.c.Printer.PrintTrackerStats(stats)
		emitProgress(&opts, StepReport, "Run complete", stats)
	}

	return summary, nil
}

// Dispatch attempts tier-1 postings, prints the result and, unless dry run,
// records failures and writes the outcomes file. Postings must already be
// classified and scored.
func (r *Runner) Dispatch(ctx context.Context, postings []types.Posting, opts RunOptions) (*dispatch.Result, error) {
	if r.c.Dispatcher == nil {
		return nil, errors.New("no dispatcher configured")
	}
	result, err := r.c.Dispatcher.Dispatch(ctx, postings, opts.MaxApplications)
	if result != nil {
		r.c.Printer.PrintDispatchResult(result)
		if !result.DryRun {
			r.recordFailures(ctx, opts, result)
			if werr := WriteJSON(opts.OutputDir, FileApplications, result.Outcomes); werr != nil {
				return result, werr
			}
		}
	}
	if err != nil {
		return result, fmt.Errorf("dispatch stopped: %w", err)
	}
	return result, nil
}

// analyze runs classification and scoring concurrently over the same slice.
func (r *Runner) analyze(ctx context.Context, postings []types.Posting) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		r.c.Classifier.ClassifyAll(postings)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		r.c.Scorer.Attach(postings)
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("analysis interrupted: %w", err)
	}
	return nil
}

// recordFailures marks failed attempts in the tracker when enabled. Errors
// are logged; the run continues.
func (r *Runner) recordFailures(ctx context.Context, opts RunOptions, result *dispatch.Result) {
	if !opts.MarkFailed || r.c.Tracker == nil {
		return
	}
	for _, o := range result.Failures() {
		if err := r.c.Tracker.MarkFailed(ctx, o.URL, o.Error); err != nil {
			r.c.Logger.Warn("failed to mark application failed",
				append(logger.PostingFields(o.URL, o.Provider), zap.Error(err))...)
		}
	}
}

// LoadPostings reads a JSON array of postings. Records that do not decode or
// match the posting schema, postings without a valid URL and repeated URLs
// are skipped and counted. Only a file that is not a JSON array fails.
func LoadPostings(path string, log *zap.Logger) ([]types.Posting, int, error) {
	log = logger.OrNop(log)
	if path == "" {
		return nil, 0, errors.New("jobs file path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read jobs file %s: %w", path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to parse jobs file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(records))
	postings := make([]types.Posting, 0, len(records))
	skipped := 0
	for i, record := range records {
		p, err := decodePosting(record)
		if err != nil {
			log.Debug("skipping malformed posting", zap.Int("index", i), zap.Error(err))
			skipped++
			continue
		}
		if err := p.Validate(); err != nil {
			log.Debug("skipping invalid posting", zap.String(logger.FieldURL, p.URL), zap.Error(err))
			skipped++
			continue
		}
		if seen[p.URL] {
			skipped++
			continue
		}
		seen[p.URL] = true
		postings = append(postings, p)
	}
	if skipped > 0 {
		log.Info("skipped postings", zap.String("path", path), zap.Int("skipped", skipped), zap.Int("loaded", len(postings)))
	}
	return postings, skipped, nil
}

func decodePosting(record json.RawMessage) (types.Posting, error) {
	var p types.Posting
	if err := schemas.ValidatePosting(record); err != nil {
		return p, err
	}
	if err := json.Unmarshal(record, &p); err != nil {
		return p, fmt.Errorf("failed to decode posting: %w", err)
	}
	return p, nil
}

// WriteJSON writes v as indented JSON to dir/name. An empty dir disables output.
func WriteJSON(dir, name string, v any) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
