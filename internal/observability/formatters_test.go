package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/apply-engine/internal/classify"
	"github.com/jonathan/apply-engine/internal/dispatch"
	"github.com/jonathan/apply-engine/internal/scoring"
	"github.com/jonathan/apply-engine/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintDistribution(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	d := classify.Distribution{
		ByProvider: map[string]int{"jazzhr": 3, "greenhouse": 1},
		ByTier:     map[types.Tier]int{types.TierLow: 3, types.TierMedium: 1},
	}
	p.PrintDistribution(d, 4)
	output := buf.String()

	assert.Contains(t, output, "ATS DISTRIBUTION")
	assert.Contains(t, output, "Tier 1 (full_auto): 3 (75.0%)")
	assert.Contains(t, output, "Tier 3 (semi_manual): 0 (0.0%)")
	assert.Contains(t, output, "jazzhr")
}

func TestPrintScoreBands(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintScoreBands(scoring.Bands{Excellent: 1, Good: 2, Fair: 3, Poor: 4}, 10, 6, 60)
	output := buf.String()

	assert.Contains(t, output, "FIT SCORES")
	assert.Contains(t, output, "Excellent (80+): 1")
	assert.Contains(t, output, "Kept at min score 60: 6 (60.0%)")
}

func TestPrintDispatchResult(t *testing.T) {
	t.Run("dry run", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).PrintDispatchResult(&dispatch.Result{DryRun: true, Planned: 4})
		assert.Contains(t, buf.String(), "would apply to 4 tier-1 postings")
	})

	t.Run("with failures", func(t *testing.T) {
		var buf bytes.Buffer
		r := &dispatch.Result{
			Planned:   2,
			Succeeded: 1,
			Failed:    1,
			Outcomes: []dispatch.Outcome{
				{Company: "Acme", Provider: "jazzhr", Success: true},
				{Company: "Globex", Provider: "pinpoint", Error: "form filled, manual review required"},
			},
		}
		NewPrinter(&buf).PrintDispatchResult(r)
		output := buf.String()

		assert.Contains(t, output, "Submitted: 1")
		assert.Contains(t, output, "Success:   50.0%")
		assert.Contains(t, output, "Globex (pinpoint)")
	})

	t.Run("nil", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).PrintDispatchResult(nil)
		assert.Empty(t, buf.String())
	})
}

func TestPrintTrackerStats(t *testing.T) {
	var buf bytes.Buffer
	stats := &types.TrackerStats{
		Total:          4,
		ByStatus:       map[types.ApplicationStatus]int{types.StatusSubmitted: 1, types.StatusPending: 3},
		TopProviders:   []types.ProviderCount{{Provider: "jazzhr", Count: 2}},
		SubmittedRatio: 0.25,
	}
	NewPrinter(&buf).PrintTrackerStats(stats)
	output := buf.String()

	assert.Contains(t, output, "Total applications: 4")
	assert.Contains(t, output, "Submitted ratio: 25.0%")
	assert.Contains(t, output, "jazzhr")
}

func TestPrintPending(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPending(nil)
	assert.Contains(t, buf.String(), "NO PENDING APPLICATIONS")

	buf.Reset()
	p.PrintPending([]types.ApplicationRecord{
		{URL: "https://boards.greenhouse.io/acme/1", Title: "Data Engineer", Company: "Acme", Provider: "greenhouse", Tier: types.TierMedium, Score: 88},
	})
	assert.Contains(t, buf.String(), "Data Engineer @ Acme")
	assert.Contains(t, buf.String(), "tier 2 · greenhouse")
}

func TestPrintBox_ClipsLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 200))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
