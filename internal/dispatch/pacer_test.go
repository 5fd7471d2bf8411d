package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer_DelayWithinBounds(t *testing.T) {
	p := NewPacer(DefaultPacing(), nil, 42)
	for i := 0; i < 200; i++ {
		d := p.Delay()
		require.GreaterOrEqual(t, d, DefaultMinDelay)
		require.LessOrEqual(t, d, DefaultMaxDelay)
	}
}

func TestPacer_FixedDelayWhenBoundsEqual(t *testing.T) {
	p := NewPacer(PacingConfig{MinDelay: time.Second, MaxDelay: time.Millisecond}, nil, 1)
	assert.Equal(t, time.Second, p.Delay())
}

func TestPacer_After(t *testing.T) {
	tests := []struct {
		name      string
		done      int
		total     int
		wantWaits int
		cooldown  bool
	}{
		{"between attempts", 1, 3, 1, false},
		{"after last attempt", 3, 3, 0, false},
		{"batch boundary", 10, 15, 2, true},
		{"batch boundary on last attempt", 10, 10, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSleeper{}
			p := NewPacer(DefaultPacing(), rec.sleep, 3)

			require.NoError(t, p.After(context.Background(), tt.done, tt.total))
			assert.Len(t, rec.waits, tt.wantWaits)
			if tt.cooldown {
				assert.Equal(t, DefaultCooldown, rec.waits[len(rec.waits)-1])
			}
		})
	}
}

func TestPacer_AfterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPacer(DefaultPacing(), SleepContext, 3)
	err := p.After(ctx, 1, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))
	assert.NoError(t, SleepContext(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}
