package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonathan/apply-engine/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	html  string
	err   error
	calls int
}

func (s *stubRenderer) Render(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.html, s.err
}

func unlimited() *Fetcher {
	opts := DefaultOptions()
	opts.RequestsPerSecond = 0
	return NewFetcher(opts)
}

func TestEnricher_FillsMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`<html><body><h1>ML Engineer</h1><div class="job-description">Powered by JazzHR. Python required.</div></body></html>`))
	}))
	defer server.Close()

	postings := []types.Posting{
		{URL: server.URL + "/a"},
		{URL: server.URL + "/b", Title: "Kept", Description: "Kept description"},
		{URL: server.URL + "/missing"},
		{URL: server.URL + "/done", Description: "d", Content: "<p>c</p>"},
	}

	stats, err := NewEnricher(unlimited(), nil, 2, nil).Enrich(context.Background(), postings)
	require.NoError(t, err)
	assert.Equal(t, EnrichStats{Attempted: 3, Enriched: 2, Failed: 1}, stats)

	assert.Equal(t, "ML Engineer", postings[0].Title)
	assert.Contains(t, postings[0].Description, "Python required")
	assert.Contains(t, postings[0].Content, "JazzHR")

	assert.Equal(t, "Kept", postings[1].Title)
	assert.Equal(t, "Kept description", postings[1].Description)
	assert.NotEmpty(t, postings[1].Content)

	assert.Empty(t, postings[2].Content)
	assert.Equal(t, "<p>c</p>", postings[3].Content)
}

func TestEnricher_BrowserFallbackForShortPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="root"></div></body></html>`))
	}))
	defer server.Close()

	rendered := `<html><body><main>` + strings.Repeat("Build data pipelines. ", 40) + `</main></body></html>`
	renderer := &stubRenderer{html: rendered}
	postings := []types.Posting{{URL: server.URL}}

	_, err := NewEnricher(unlimited(), renderer, 1, nil).Enrich(context.Background(), postings)
	require.NoError(t, err)
	assert.Equal(t, 1, renderer.calls)
	assert.Contains(t, postings[0].Description, "Build data pipelines.")
	assert.Equal(t, rendered, postings[0].Content)
}

func TestEnricher_BrowserFailureKeepsHTTPContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>tiny</p></body></html>`))
	}))
	defer server.Close()

	renderer := &stubRenderer{err: errors.New("no chrome")}
	postings := []types.Posting{{URL: server.URL}}

	stats, err := NewEnricher(unlimited(), renderer, 1, nil).Enrich(context.Background(), postings)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Enriched)
	assert.Equal(t, "tiny", postings[0].Description)
}

func TestEnricher_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	postings := []types.Posting{{URL: "https://example.invalid/1"}}
	_, err := NewEnricher(unlimited(), nil, 1, nil).Enrich(ctx, postings)
	assert.ErrorIs(t, err, context.Canceled)
}
