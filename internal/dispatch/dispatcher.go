// Package dispatch drives automated applications for tier-1 postings, one at
// a time, with pacing between attempts.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/apply-engine/internal/automation"
	"github.com/jonathan/apply-engine/internal/logger"
	"github.com/jonathan/apply-engine/internal/types"
)

// Recorder persists submitted applications
type Recorder interface {
	Upsert(ctx context.Context, p *types.Posting) (uuid.UUID, error)
	Transition(ctx context.Context, id uuid.UUID, status types.ApplicationStatus, note string) error
}

// Config holds dispatcher options
type Config struct {
	Pacing PacingConfig
	// DryRun counts the selected postings without launching sessions.
	DryRun bool
	// Seed seeds the pacing jitter. Zero uses the clock.
	Seed int64
	// Sleep overrides the pacing sleeper.
	Sleep Sleeper
}

// Dispatcher applies to tier-1 postings sequentially
type Dispatcher struct {
	launcher   automation.Launcher
	strategies Table
	pacer      *Pacer
	recorder   Recorder
	applicant  *Applicant
	dryRun     bool
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a dispatcher. A nil strategy table uses DefaultTable and a nil
// recorder skips persistence.
func New(cfg Config, launcher automation.Launcher, strategies Table, recorder Recorder, applicant *Applicant, log *zap.Logger) *Dispatcher {
	if strategies == nil {
		strategies = DefaultTable()
	}
	if applicant == nil {
		applicant = &Applicant{}
	}
	if applicant.Profile == nil {
		applicant.Profile = &types.CandidateProfile{}
	}
	return &Dispatcher{
		launcher:   launcher,
		strategies: strategies,
		pacer:      NewPacer(cfg.Pacing, cfg.Sleep, cfg.Seed),
		recorder:   recorder,
		applicant:  applicant,
		dryRun:     cfg.DryRun,
		logger:     logger.OrNop(log),
		now:        time.Now,
	}
}

// Select returns up to maxCount tier-1 postings in their given order.
// A maxCount of zero or less selects nothing.
func Select(postings []types.Posting, maxCount int) []*types.Posting {
	var out []*types.Posting
	for i := range postings {
		if len(out) >= maxCount {
			break
		}
		if postings[i].Tier() == types.TierLow {
			out = append(out, &postings[i])
		}
	}
	return out
}

// Dispatch attempts up to maxCount tier-1 postings. Attempt failures become
// failed outcomes and never stop the batch. When ctx is cancelled between
// attempts the partial result is returned with ctx.Err().
func (d *Dispatcher) Dispatch(ctx context.Context, postings []types.Posting, maxCount int) (*Result, error) {
	selected := Select(postings, maxCount)
	result := &Result{Planned: len(selected), DryRun: d.dryRun}

	if d.dryRun {
		d.logger.Info("dry run, no applications submitted",
			zap.Int("would_apply", len(selected)),
			zap.Int("postings", len(postings)))
		return result, nil
	}
	if len(selected) > 0 && d.launcher == nil {
		return result, errors.New("dispatch requires a browser launcher")
	}

	d.logger.Info("dispatching applications", zap.Int("count", len(selected)))

	for i, p := range selected {
		if err := ctx.Err(); err != nil {
			d.logSummary(result)
			return result, err
		}

		outcome := d.attempt(ctx, p)
		result.add(outcome)

		if err := d.pacer.After(ctx, i+1, len(selected)); err != nil {
			d.logSummary(result)
			return result, err
		}
	}

	d.logSummary(result)
	return result, nil
}

func (d *Dispatcher) attempt(ctx context.Context, p *types.Posting) Outcome {
	start := d.now()
	provider := p.Provider()
	outcome := Outcome{
		URL:         p.URL,
		Title:       p.Title,
		Company:     p.Company,
		Provider:    provider,
		Status:      types.StatusFailed,
		AttemptedAt: start.UTC(),
	}

	log := logger.WithFields(d.logger, logger.PostingFields(p.URL, provider)...)

	submitted, err := d.run(ctx, p)
	outcome.Duration = d.now().Sub(start)

	if err == nil && submitted {
		if recErr := d.record(ctx, p); recErr != nil {
			// the form went out; only bookkeeping failed
			log.Warn("failed to record submitted application", zap.Error(recErr))
		}
		outcome.Success = true
		outcome.Status = types.StatusSubmitted
		log.Info("application submitted")
		return outcome
	}

	if err == nil {
		err = ErrManualReview
	}
	outcome.Error = err.Error()
	log.Warn("application attempt failed", zap.Error(err))
	return outcome
}

// run performs one attempt in its own session. Panics are returned as errors.
func (d *Dispatcher) run(ctx context.Context, p *types.Posting) (submitted bool, err error) {
	provider := p.Provider()
	defer func() {
		if r := recover(); r != nil {
			submitted = false
			err = &AttemptError{URL: p.URL, Provider: provider, Message: "panic", Cause: fmt.Errorf("%v", r)}
		}
	}()

	session, err := d.launcher.NewSession(ctx)
	if err != nil {
		return false, &AttemptError{URL: p.URL, Provider: provider, Message: "failed to open session", Cause: err}
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			d.logger.Debug("failed to close session", zap.Error(cerr))
		}
	}()

	if err := session.Navigate(ctx, p.URL); err != nil {
		return false, &AttemptError{URL: p.URL, Provider: provider, Message: "failed to navigate", Cause: err}
	}

	strategy := d.strategies.Lookup(provider)
	ok, err := strategy(ctx, session, d.applicant, p)
	if err != nil {
		return false, &AttemptError{URL: p.URL, Provider: provider, Message: "strategy failed", Cause: err}
	}
	return ok, nil
}

func (d *Dispatcher) record(ctx context.Context, p *types.Posting) error {
	if d.recorder == nil {
		return nil
	}
	id, err := d.recorder.Upsert(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to upsert application: %w", err)
	}
	if err := d.recorder.Transition(ctx, id, types.StatusSubmitted, "automated submission"); err != nil {
		return fmt.Errorf("failed to mark application submitted: %w", err)
	}
	return nil
}

func (d *Dispatcher) logSummary(r *Result) {
	d.logger.Info("dispatch complete",
		zap.Int("attempted", r.Attempted()),
		zap.Int("succeeded", r.Succeeded),
		zap.Int("failed", r.Failed),
		zap.Float64("success_rate", r.SuccessRate()))
}
