// Package tracker records every application and its status history, and
// answers the queries the CLI and API need.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/apply-engine/internal/logger"
	"github.com/jonathan/apply-engine/internal/types"
)

// DefaultTopProviders is the provider count returned by Stats when topN <= 0.
const DefaultTopProviders = 10

// DefaultPendingLimit caps ListPending when no limit is given.
const DefaultPendingLimit = 50

// Tracker is the application tracker
type Tracker struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// New creates a tracker over store.
func New(store Store, log *zap.Logger) *Tracker {
	return &Tracker{store: store, logger: logger.OrNop(log), now: time.Now}
}

// Upsert records a posting as a pending application. Re-inserting a tracked
// URL returns the existing id and leaves the record untouched.
func (t *Tracker) Upsert(ctx context.Context, p *types.Posting) (uuid.UUID, error) {
	if err := p.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("invalid posting: %w", err)
	}

	rec := types.NewApplicationRecord(p)
	rec.ID = uuid.New()
	now := t.now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	id, err := t.store.Insert(ctx, rec)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert application %s: %w", p.URL, err)
	}
	return id, nil
}

// UpsertAll records every posting and returns how many were stored. It stops
// at the first failure.
func (t *Tracker) UpsertAll(ctx context.Context, postings []types.Posting) (int, error) {
	for i := range postings {
		if _, err := t.Upsert(ctx, &postings[i]); err != nil {
			return i, err
		}
	}
	return len(postings), nil
}

// Transition moves an application to status and appends a history entry.
func (t *Tracker) Transition(ctx context.Context, id uuid.UUID, status types.ApplicationStatus, note string) error {
	req := types.TransitionRequest{Status: string(status), Note: note}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid transition: %w", err)
	}

	old, err := t.store.UpdateStatus(ctx, StatusChange{
		ID:        id,
		Status:    status,
		Note:      note,
		At:        t.now().UTC(),
		HistoryID: uuid.New(),
	})
	if err != nil {
		if errors.Is(err, types.ErrApplicationNotFound) {
			return err
		}
		return fmt.Errorf("failed to transition application %s: %w", id, err)
	}

	t.logger.Debug("application status changed",
		zap.String("id", id.String()),
		zap.String("old_status", string(old)),
		zap.String(logger.FieldStatus, string(status)))
	return nil
}

// GetByURL returns the id of the application tracked for url.
func (t *Tracker) GetByURL(ctx context.Context, url string) (uuid.UUID, bool, error) {
	rec, err := t.store.GetByURL(ctx, url)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to look up application: %w", err)
	}
	if rec == nil {
		return uuid.Nil, false, nil
	}
	return rec.ID, true, nil
}

// Get returns one application record.
func (t *Tracker) Get(ctx context.Context, id uuid.UUID) (*types.ApplicationRecord, error) {
	rec, err := t.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if rec == nil {
		return nil, types.ErrApplicationNotFound
	}
	return rec, nil
}

// ListPending returns pending applications by score descending. A nil tier
// matches every tier.
func (t *Tracker) ListPending(ctx context.Context, tier *types.Tier, limit int) ([]types.ApplicationRecord, error) {
	if limit <= 0 {
		limit = DefaultPendingLimit
	}
	recs, err := t.store.ListPending(ctx, tier, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending applications: %w", err)
	}
	return recs, nil
}

// History returns the status transitions of an application, oldest first.
func (t *Tracker) History(ctx context.Context, id uuid.UUID) ([]types.StatusTransition, error) {
	if _, err := t.Get(ctx, id); err != nil {
		return nil, err
	}
	hist, err := t.store.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return hist, nil
}

// Stats aggregates tracked applications. TopProviders holds at most topN
// entries ordered by count descending, then name.
func (t *Tracker) Stats(ctx context.Context, topN int) (*types.TrackerStats, error) {
	if topN <= 0 {
		topN = DefaultTopProviders
	}
	counts, err := t.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	stats := &types.TrackerStats{
		ByStatus: counts.ByStatus,
		ByTier:   counts.ByTier,
	}
	for _, n := range counts.ByStatus {
		stats.Total += n
	}
	if stats.Total > 0 {
		stats.SubmittedRatio = float64(counts.ByStatus[types.StatusSubmitted]) / float64(stats.Total)
	}

	providers := make([]types.ProviderCount, 0, len(counts.ByProvider))
	for name, n := range counts.ByProvider {
		providers = append(providers, types.ProviderCount{Provider: name, Count: n})
	}
	sort.Slice(providers, func(i, j int) bool {
		if providers[i].Count != providers[j].Count {
			return providers[i].Count > providers[j].Count
		}
		return providers[i].Provider < providers[j].Provider
	})
	if len(providers) > topN {
		providers = providers[:topN]
	}
	stats.TopProviders = providers
	return stats, nil
}

// MarkSubmitted transitions the application tracked for url to submitted.
// Untracked URLs are ignored.
func (t *Tracker) MarkSubmitted(ctx context.Context, url string) error {
	return t.markByURL(ctx, url, types.StatusSubmitted, "")
}

// MarkFailed transitions the application tracked for url to failed with the
// reason as note. Untracked URLs are ignored.
func (t *Tracker) MarkFailed(ctx context.Context, url, reason string) error {
	return t.markByURL(ctx, url, types.StatusFailed, truncateNote(reason))
}

func (t *Tracker) markByURL(ctx context.Context, url string, status types.ApplicationStatus, note string) error {
	id, ok, err := t.GetByURL(ctx, url)
	if err != nil {
		return err
	}
	if !ok {
		t.logger.Debug("ignoring status change for untracked url", zap.String(logger.FieldURL, url))
		return nil
	}
	return t.Transition(ctx, id, status, note)
}

// maxNoteLength matches the transition note validation limit.
const maxNoteLength = 2000

func truncateNote(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= maxNoteLength {
		return s
	}
	return string(r[:maxNoteLength])
}

// Migrate creates the tracker tables if needed.
func (t *Tracker) Migrate(ctx context.Context) error {
	if err := t.store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate tracker store: %w", err)
	}
	return nil
}

// Close releases the store.
func (t *Tracker) Close() error {
	return t.store.Close()
}
