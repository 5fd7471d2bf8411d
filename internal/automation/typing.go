package automation

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Default per-keystroke delay bounds.
const (
	DefaultMinKeyDelay = 50 * time.Millisecond
	DefaultMaxKeyDelay = 150 * time.Millisecond
)

// Typist produces randomized per-keystroke delays
type Typist struct {
	MinDelay time.Duration
	MaxDelay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewTypist creates a typist with the given bounds. A zero seed uses the clock.
func NewTypist(minDelay, maxDelay time.Duration, seed int64) *Typist {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Typist{MinDelay: minDelay, MaxDelay: maxDelay, rng: rand.New(rand.NewSource(seed))}
}

// Delay returns one keystroke delay in [MinDelay, MaxDelay].
func (t *Typist) Delay() time.Duration {
	span := t.MaxDelay - t.MinDelay
	if span <= 0 {
		return t.MinDelay
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.MinDelay + time.Duration(t.rng.Int63n(int64(span)+1))
}

// Type sends value one rune at a time through send, pausing between runes.
func (t *Typist) Type(ctx context.Context, value string, send func(ctx context.Context, chunk string) error) error {
	for _, r := range value {
		if err := send(ctx, string(r)); err != nil {
			return err
		}
		timer := time.NewTimer(t.Delay())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}
