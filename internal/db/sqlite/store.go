// Package sqlite provides a single-file SQLite store for tracked applications.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jonathan/apply-engine/internal/tracker"
	"github.com/jonathan/apply-engine/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// timeLayout is the stored timestamp format. It sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var _ tracker.Store = (*Store)(nil)

// Store is a SQLite-backed tracker store
type Store struct {
	db *sql.DB
}

// Open opens or creates the database file at path.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// one writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if stmt = strings.TrimSpace(stmt); stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

const applicationColumns = `id, job_url, job_title, company, location, ats, tier, match_score,
	status, applied_at, response_at, notes, created_at, updated_at`

// Insert stores a new application unless its URL is already tracked.
func (s *Store) Insert(ctx context.Context, rec *types.ApplicationRecord) (uuid.UUID, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO applications (id, job_url, job_title, company, location, ats, tier, match_score,
		                                     status, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.URL, rec.Title, rec.Company, rec.Location, rec.Provider, int(rec.Tier), rec.Score,
		string(rec.Status), rec.Notes, formatTime(rec.CreatedAt), formatTime(rec.CreatedAt),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert application: %w", err)
	}

	var id string
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM applications WHERE job_url = ?`, rec.URL).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to read application id: %w", err)
	}
	return uuid.Parse(id)
}

// UpdateStatus sets a new status and appends a history row in one transaction.
func (s *Store) UpdateStatus(ctx context.Context, change tracker.StatusChange) (types.ApplicationStatus, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var old string
	err = tx.QueryRowContext(ctx, `SELECT status FROM applications WHERE id = ?`, change.ID.String()).Scan(&old)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", types.ErrApplicationNotFound
		}
		return "", fmt.Errorf("failed to read status: %w", err)
	}

	at := formatTime(change.At)
	status := string(change.Status)
	_, err = tx.ExecContext(ctx,
		`UPDATE applications SET
		     status = ?,
		     applied_at = CASE WHEN ? = 'submitted' THEN ? ELSE applied_at END,
		     response_at = CASE WHEN ? = 'responded' THEN ? ELSE response_at END,
		     notes = CASE WHEN ? <> '' THEN ? ELSE notes END,
		     updated_at = ?
		 WHERE id = ?`,
		status, status, at, status, at, change.Note, change.Note, at, change.ID.String(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to update status: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO status_history (id, application_id, old_status, new_status, changed_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		change.HistoryID.String(), change.ID.String(), old, status, at, change.Note,
	)
	if err != nil {
		return "", fmt.Errorf("failed to append history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return types.ApplicationStatus(old), nil
}

// GetByURL returns the application tracked for url, or nil.
func (s *Store) GetByURL(ctx context.Context, url string) (*types.ApplicationRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_url = ?`, url)
	return scanOptional(row)
}

// Get returns the application with id, or nil.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*types.ApplicationRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id.String())
	return scanOptional(row)
}

// ListPending returns pending applications, best score first.
func (s *Store) ListPending(ctx context.Context, tier *types.Tier, limit int) ([]types.ApplicationRecord, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE status = 'pending'`
	args := []any{}
	if tier != nil {
		query += ` AND tier = ?`
		args = append(args, int(*tier))
	}
	query += ` ORDER BY match_score DESC, created_at ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending applications: %w", err)
	}
	defer rows.Close()

	var recs []types.ApplicationRecord
	for rows.Next() {
		rec, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// History returns the status transitions of an application, oldest first.
func (s *Store) History(ctx context.Context, id uuid.UUID) ([]types.StatusTransition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, application_id, old_status, new_status, changed_at, notes
		 FROM status_history WHERE application_id = ? ORDER BY changed_at ASC, rowid ASC`,
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var hist []types.StatusTransition
	for rows.Next() {
		var h types.StatusTransition
		var hid, appID, oldStatus, newStatus, changedAt string
		if err := rows.Scan(&hid, &appID, &oldStatus, &newStatus, &changedAt, &h.Note); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		if h.ID, err = uuid.Parse(hid); err != nil {
			return nil, fmt.Errorf("invalid history id %q: %w", hid, err)
		}
		if h.ApplicationID, err = uuid.Parse(appID); err != nil {
			return nil, fmt.Errorf("invalid application id %q: %w", appID, err)
		}
		if h.ChangedAt, err = parseTime(changedAt); err != nil {
			return nil, err
		}
		h.OldStatus = types.ApplicationStatus(oldStatus)
		h.NewStatus = types.ApplicationStatus(newStatus)
		hist = append(hist, h)
	}
	return hist, rows.Err()
}

// Counts aggregates applications by status, tier and provider.
func (s *Store) Counts(ctx context.Context) (*tracker.Counts, error) {
	counts := tracker.NewCounts()

	rows, err := s.db.QueryContext(ctx, `SELECT status, tier, ats, COUNT(*) FROM applications GROUP BY status, tier, ats`)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, ats string
		var tier, n int
		if err := rows.Scan(&status, &tier, &ats, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts.ByStatus[types.ApplicationStatus(status)] += n
		counts.ByTier[types.Tier(tier)] += n
		counts.ByProvider[ats] += n
	}
	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOptional(row scanner) (*types.ApplicationRecord, error) {
	rec, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func scanApplication(row scanner) (*types.ApplicationRecord, error) {
	var (
		rec                   types.ApplicationRecord
		id, status            string
		tier                  int
		appliedAt, responseAt sql.NullString
		createdAt, updatedAt  string
	)
	err := row.Scan(&id, &rec.URL, &rec.Title, &rec.Company, &rec.Location, &rec.Provider, &tier, &rec.Score,
		&status, &appliedAt, &responseAt, &rec.Notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid application id %q: %w", id, err)
	}
	rec.Tier = types.Tier(tier)
	rec.Status = types.ApplicationStatus(status)
	if rec.AppliedAt, err = parseNullTime(appliedAt); err != nil {
		return nil, err
	}
	if rec.RespondedAt, err = parseNullTime(responseAt); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
