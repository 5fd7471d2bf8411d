package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/apply-engine/internal/automation"
	"github.com/jonathan/apply-engine/internal/types"
)

// fakeSession is an in-memory form. Selectors listed in fields exist.
type fakeSession struct {
	fields    map[string]bool
	filled    map[string]string
	uploaded  map[string]string
	clicked   []string
	navigated []string
	closed    int

	navErr   error
	panicURL string
}

func newFakeSession(selectors ...string) *fakeSession {
	s := &fakeSession{
		fields:   map[string]bool{},
		filled:   map[string]string{},
		uploaded: map[string]string{},
	}
	for _, sel := range selectors {
		s.fields[sel] = true
	}
	return s
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	if url == s.panicURL {
		panic("renderer crashed")
	}
	s.navigated = append(s.navigated, url)
	return s.navErr
}

func (s *fakeSession) Exists(_ context.Context, selector string) (bool, error) {
	return s.fields[selector], nil
}

func (s *fakeSession) Fill(_ context.Context, selector, value string) error {
	if !s.fields[selector] {
		return &automation.Error{Action: "fill", Selector: selector, Cause: errors.New("no such element")}
	}
	s.filled[selector] = value
	return nil
}

func (s *fakeSession) Upload(_ context.Context, selector, path string) error {
	s.uploaded[selector] = path
	return nil
}

func (s *fakeSession) Click(_ context.Context, selector string) error {
	s.clicked = append(s.clicked, selector)
	return nil
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

// fakeLauncher hands out a fresh session per attempt built by newSession.
type fakeLauncher struct {
	newSession func() *fakeSession
	sessions   []*fakeSession
	err        error
}

func (l *fakeLauncher) NewSession(_ context.Context) (automation.Session, error) {
	if l.err != nil {
		return nil, l.err
	}
	s := l.newSession()
	l.sessions = append(l.sessions, s)
	return s, nil
}

// recordingSleeper records every requested wait and returns immediately.
type recordingSleeper struct {
	mu     sync.Mutex
	waits  []time.Duration
	cancel context.CancelFunc
	after  int
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	n := len(r.waits)
	r.mu.Unlock()
	if r.cancel != nil && n == r.after {
		r.cancel()
	}
	return ctx.Err()
}

func (r *recordingSleeper) count(d time.Duration) int {
	n := 0
	for _, w := range r.waits {
		if w == d {
			n++
		}
	}
	return n
}

type fakeRecorder struct {
	ids         map[string]uuid.UUID
	transitions []types.ApplicationStatus
	err         error
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{ids: map[string]uuid.UUID{}}
}

func (r *fakeRecorder) Upsert(_ context.Context, p *types.Posting) (uuid.UUID, error) {
	if r.err != nil {
		return uuid.Nil, r.err
	}
	id, ok := r.ids[p.URL]
	if !ok {
		id = uuid.New()
		r.ids[p.URL] = id
	}
	return id, nil
}

func (r *fakeRecorder) Transition(_ context.Context, _ uuid.UUID, status types.ApplicationStatus, _ string) error {
	r.transitions = append(r.transitions, status)
	return nil
}

func posting(url, provider string, tier types.Tier) types.Posting {
	return types.Posting{
		URL:     url,
		Title:   "Data Engineer",
		Company: "Acme",
		Classification: &types.Classification{
			Provider: provider,
			Tier:     tier,
			Strategy: tier.Strategy(),
		},
	}
}

func testApplicant() *Applicant {
	return &Applicant{
		Profile: &types.CandidateProfile{
			Name:   "Ada Lovelace",
			Email:  "ada@example.com",
			Phone:  "555-0100",
			Skills: []string{"python", "sql"},
		},
		ResumePath: "/tmp/resume.pdf",
	}
}

func jazzSession() *fakeSession {
	return newFakeSession(`input[name="name"]`, `input[name="email"]`, `input[name="phone"]`, selFile, selTextarea, selSubmit)
}
