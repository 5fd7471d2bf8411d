package tracker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/apply-engine/internal/types"
)

// StatusChange is one status update applied by a Store.
type StatusChange struct {
	ID     uuid.UUID
	Status types.ApplicationStatus
	Note   string
	At     time.Time
	// HistoryID identifies the appended history row.
	HistoryID uuid.UUID
}

// Store persists application records and their status history. Lookups
// return nil without error when nothing matches.
type Store interface {
	// Insert stores rec unless its URL is already tracked and returns the id
	// of the stored row.
	Insert(ctx context.Context, rec *types.ApplicationRecord) (uuid.UUID, error)
	// UpdateStatus atomically reads the current status, sets the new one and
	// appends a history row. Unknown ids return types.ErrApplicationNotFound.
	UpdateStatus(ctx context.Context, change StatusChange) (types.ApplicationStatus, error)
	GetByURL(ctx context.Context, url string) (*types.ApplicationRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*types.ApplicationRecord, error)
	// ListPending returns pending records by score descending, optionally
	// restricted to one tier.
	ListPending(ctx context.Context, tier *types.Tier, limit int) ([]types.ApplicationRecord, error)
	History(ctx context.Context, id uuid.UUID) ([]types.StatusTransition, error)
	// Counts returns totals per status, tier and provider.
	Counts(ctx context.Context) (*Counts, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Counts holds raw aggregate counts
type Counts struct {
	ByStatus   map[types.ApplicationStatus]int
	ByTier     map[types.Tier]int
	ByProvider map[string]int
}

// NewCounts returns empty, initialized counts.
func NewCounts() *Counts {
	return &Counts{
		ByStatus:   map[types.ApplicationStatus]int{},
		ByTier:     map[types.Tier]int{},
		ByProvider: map[string]int{},
	}
}
