package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/apply-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_Loads(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	providers := c.Providers()
	require.Len(t, providers, 19)
	assert.Equal(t, "jazzhr", providers[0].Name)
	assert.Equal(t, "avature", providers[len(providers)-1].Name)

	again, err := DefaultCatalog()
	require.NoError(t, err)
	assert.Same(t, c, again)
}

func TestCatalog_Lookup(t *testing.T) {
	c := MustDefaultCatalog()

	p, ok := c.Lookup("pinpoint")
	require.True(t, ok)
	assert.Equal(t, types.TierLow, p.Tier)
	assert.InDelta(t, 0.65, p.SuccessRate, 1e-9)
	assert.Equal(t, []string{"pinpointhq.com"}, p.Domains)

	_, ok = c.Lookup("nope")
	assert.False(t, ok)
}

func TestCatalog_ProvidersReturnsCopy(t *testing.T) {
	c := MustDefaultCatalog()
	providers := c.Providers()
	providers[0].Name = "mutated"

	assert.Equal(t, "jazzhr", c.Providers()[0].Name)
}

func TestParseCatalog_DeclaredOrderBreaksTies(t *testing.T) {
	data := []byte(`
providers:
  - name: first
    tier: 1
    success_rate: 0.9
    domains: [shared.example]
  - name: second
    tier: 3
    success_rate: 0.1
    domains: [shared.example]
`)
	c, err := ParseCatalog(data)
	require.NoError(t, err)

	got := New(c).Classify(types.Posting{URL: "https://jobs.shared.example/1"})
	assert.Equal(t, "first", got.Provider)
	assert.Equal(t, types.TierLow, got.Tier)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{
			name:    "invalid yaml",
			data:    "providers: [",
			wantMsg: "failed to parse catalog YAML",
		},
		{
			name:    "missing providers",
			data:    "other: 1",
			wantMsg: "catalog does not match schema",
		},
		{
			name: "tier out of range",
			data: `
providers:
  - name: x
    tier: 4
    success_rate: 0.5
    domains: [x.com]
`,
			wantMsg: "catalog does not match schema",
		},
		{
			name: "success rate above one",
			data: `
providers:
  - name: x
    tier: 1
    success_rate: 1.5
    domains: [x.com]
`,
			wantMsg: "catalog does not match schema",
		},
		{
			name: "duplicate provider",
			data: `
providers:
  - name: x
    tier: 1
    success_rate: 0.5
    domains: [x.com]
  - name: x
    tier: 2
    success_rate: 0.5
    domains: [y.com]
`,
			wantMsg: "duplicate provider",
		},
		{
			name: "reserved name",
			data: `
providers:
  - name: unknown
    tier: 1
    success_rate: 0.5
    domains: [x.com]
`,
			wantMsg: "reserved",
		},
		{
			name: "bad regex",
			data: `
providers:
  - name: x
    tier: 1
    success_rate: 0.5
    domains: [x.com]
    url_patterns: ['(unclosed']
`,
			wantMsg: "invalid url pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.data))
			require.Error(t, err)

			var catErr *CatalogError
			require.ErrorAs(t, err, &catErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
providers:
  - name: inhouse
    tier: 1
    success_rate: 0.8
    domains: [careers.example.com]
`), 0644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	got := New(c).Classify(types.Posting{URL: "https://careers.example.com/jobs/1"})
	assert.Equal(t, "inhouse", got.Provider)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	var catErr *CatalogError
	require.ErrorAs(t, err, &catErr)
	assert.Contains(t, err.Error(), "failed to read catalog")
}
