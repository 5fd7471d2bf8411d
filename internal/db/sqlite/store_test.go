package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/apply-engine/internal/tracker"
	"github.com/jonathan/apply-engine/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, filepath.Join(t.TempDir(), "apply.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(ctx))
	return s
}

func record(url string, tier types.Tier, score float64) *types.ApplicationRecord {
	return &types.ApplicationRecord{
		ID:        uuid.New(),
		URL:       url,
		Title:     "Data Engineer",
		Company:   "Acme",
		Provider:  "jazzhr",
		Tier:      tier,
		Score:     score,
		Status:    types.StatusPending,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestStore_InsertIgnoresDuplicateURL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := record("https://acme.applytojob.com/apply/1", types.TierLow, 80)
	id, err := s.Insert(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.ID, id)

	dup := record("https://acme.applytojob.com/apply/1", types.TierHigh, 10)
	again, err := s.Insert(ctx, dup)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again)

	got, err := s.GetByURL(ctx, first.URL)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.TierLow, got.Tier)
	assert.Equal(t, 80.0, got.Score)
	assert.Equal(t, first.CreatedAt, got.CreatedAt)
	assert.Nil(t, got.AppliedAt)
}

func TestStore_GetMissing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	got, err := s.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.GetByURL(ctx, "https://nowhere.example")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_UpdateStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := record("https://acme.applytojob.com/apply/2", types.TierLow, 70)
	_, err := s.Insert(ctx, rec)
	require.NoError(t, err)

	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	old, err := s.UpdateStatus(ctx, tracker.StatusChange{
		ID: rec.ID, Status: types.StatusSubmitted, At: at, HistoryID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, old)

	later := at.Add(48 * time.Hour)
	old, err = s.UpdateStatus(ctx, tracker.StatusChange{
		ID: rec.ID, Status: types.StatusResponded, Note: "recruiter call", At: later, HistoryID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusSubmitted, old)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.StatusResponded, got.Status)
	require.NotNil(t, got.AppliedAt)
	assert.Equal(t, at, *got.AppliedAt)
	require.NotNil(t, got.RespondedAt)
	assert.Equal(t, later, *got.RespondedAt)
	assert.Equal(t, "recruiter call", got.Notes)
	assert.Equal(t, later, got.UpdatedAt)

	hist, err := s.History(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, types.StatusPending, hist[0].OldStatus)
	assert.Equal(t, types.StatusSubmitted, hist[0].NewStatus)
	assert.Equal(t, types.StatusSubmitted, hist[1].OldStatus)
	assert.Equal(t, types.StatusResponded, hist[1].NewStatus)
	assert.Equal(t, "recruiter call", hist[1].Note)
}

func TestStore_UpdateStatusUnknownID(t *testing.T) {
	s := openTestStore(t)

	_, err := s.UpdateStatus(context.Background(), tracker.StatusChange{
		ID: uuid.New(), Status: types.StatusFailed, At: time.Now(), HistoryID: uuid.New(),
	})
	assert.ErrorIs(t, err, types.ErrApplicationNotFound)
}

func TestStore_ListPending(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, rec := range []*types.ApplicationRecord{
		record("https://a.example/1", types.TierLow, 65),
		record("https://a.example/2", types.TierMedium, 90),
		record("https://a.example/3", types.TierLow, 85),
		record("https://a.example/4", types.TierLow, 99),
	} {
		_, err := s.Insert(ctx, rec)
		require.NoError(t, err)
	}

	submitted, err := s.GetByURL(ctx, "https://a.example/4")
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, tracker.StatusChange{
		ID: submitted.ID, Status: types.StatusSubmitted, At: time.Now(), HistoryID: uuid.New(),
	})
	require.NoError(t, err)

	all, err := s.ListPending(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "https://a.example/2", all[0].URL)
	assert.Equal(t, "https://a.example/3", all[1].URL)
	assert.Equal(t, "https://a.example/1", all[2].URL)

	tier := types.TierLow
	low, err := s.ListPending(ctx, &tier, 1)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "https://a.example/3", low[0].URL)
}

func TestStore_Counts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	recs := []*types.ApplicationRecord{
		record("https://c.example/1", types.TierLow, 10),
		record("https://c.example/2", types.TierLow, 10),
		record("https://c.example/3", types.TierHigh, 10),
	}
	recs[2].Provider = "workday"
	for _, rec := range recs {
		_, err := s.Insert(ctx, rec)
		require.NoError(t, err)
	}

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, counts.ByStatus[types.StatusPending])
	assert.Equal(t, 2, counts.ByTier[types.TierLow])
	assert.Equal(t, 1, counts.ByTier[types.TierHigh])
	assert.Equal(t, 2, counts.ByProvider["jazzhr"])
	assert.Equal(t, 1, counts.ByProvider["workday"])
}

func TestStore_HistoryBlocksApplicationDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := record("https://acme.applytojob.com/apply/keep", types.TierLow, 70)
	_, err := s.Insert(ctx, rec)
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, tracker.StatusChange{
		ID: rec.ID, Status: types.StatusSubmitted, At: time.Now().UTC(), HistoryID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = s.db.ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, rec.ID.String())
	require.Error(t, err)
	assert.Contains(t, strings.ToUpper(err.Error()), "FOREIGN KEY")

	hist, err := s.History(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)

	// an application without history can still be removed
	bare := record("https://acme.applytojob.com/apply/bare", types.TierLow, 50)
	_, err = s.Insert(ctx, bare)
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, bare.ID.String())
	require.NoError(t, err)
}

func TestStore_ConcurrentInsertSameURL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	const workers = 32

	ids := make([]uuid.UUID, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Insert(ctx, record("https://acme.applytojob.com/apply/race", types.TierLow, 70))
			assert.NoError(t, err)
			ids[i] = id
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.ByStatus[types.StatusPending])
}
