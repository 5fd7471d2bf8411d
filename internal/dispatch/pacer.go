package dispatch

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Default pacing between attempts.
const (
	DefaultMinDelay  = 10 * time.Second
	DefaultMaxDelay  = 20 * time.Second
	DefaultCooldown  = 30 * time.Second
	DefaultBatchSize = 10
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PacingConfig bounds the waits between attempts.
type PacingConfig struct {
	MinDelay  time.Duration
	MaxDelay  time.Duration
	Cooldown  time.Duration
	BatchSize int
}

// DefaultPacing returns the default pacing policy.
func DefaultPacing() PacingConfig {
	return PacingConfig{
		MinDelay:  DefaultMinDelay,
		MaxDelay:  DefaultMaxDelay,
		Cooldown:  DefaultCooldown,
		BatchSize: DefaultBatchSize,
	}
}

// Pacer enforces a random delay between consecutive attempts and a cooldown
// after every BatchSize attempts.
type Pacer struct {
	cfg   PacingConfig
	sleep Sleeper

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPacer creates a pacer. A nil sleeper uses SleepContext; a zero seed uses the clock.
func NewPacer(cfg PacingConfig, sleep Sleeper, seed int64) *Pacer {
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	if sleep == nil {
		sleep = SleepContext
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Pacer{cfg: cfg, sleep: sleep, rng: rand.New(rand.NewSource(seed))}
}

// Delay draws one inter-attempt delay in [MinDelay, MaxDelay].
func (p *Pacer) Delay() time.Duration {
	span := p.cfg.MaxDelay - p.cfg.MinDelay
	if span <= 0 {
		return p.cfg.MinDelay
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.MinDelay + time.Duration(p.rng.Int63n(int64(span)+1))
}

// After waits following attempt number done (1-based) of total. The random
// delay is skipped after the last attempt; the cooldown is not.
func (p *Pacer) After(ctx context.Context, done, total int) error {
	if done < total {
		if err := p.sleep(ctx, p.Delay()); err != nil {
			return err
		}
	}
	if p.cfg.BatchSize > 0 && done%p.cfg.BatchSize == 0 {
		if err := p.sleep(ctx, p.cfg.Cooldown); err != nil {
			return err
		}
	}
	return nil
}
