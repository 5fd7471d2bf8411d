package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/apply-engine/internal/tracker"
	"github.com/jonathan/apply-engine/internal/types"
)

var _ tracker.Store = (*DB)(nil)

const applicationColumns = `id, job_url, job_title, company, location, ats, tier, match_score,
	status, applied_at, response_at, notes, created_at, updated_at`

// Insert stores a new application unless its URL is already tracked
func (db *DB) Insert(ctx context.Context, rec *types.ApplicationRecord) (uuid.UUID, error) {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO applications (id, job_url, job_title, company, location, ats, tier, match_score,
		                           status, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		 ON CONFLICT (job_url) DO NOTHING`,
		rec.ID, rec.URL, rec.Title, rec.Company, rec.Location, rec.Provider, int(rec.Tier), rec.Score,
		string(rec.Status), rec.Notes, rec.CreatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert application: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx, `SELECT id FROM applications WHERE job_url = $1`, rec.URL).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read application id: %w", err)
	}
	return id, nil
}

// UpdateStatus sets a new status and appends a history row in one transaction
func (db *DB) UpdateStatus(ctx context.Context, change tracker.StatusChange) (types.ApplicationStatus, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var old string
	err = tx.QueryRow(ctx, `SELECT status FROM applications WHERE id = $1 FOR UPDATE`, change.ID).Scan(&old)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", types.ErrApplicationNotFound
		}
		return "", fmt.Errorf("failed to read status: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE applications SET
		     status = $2::text,
		     applied_at = CASE WHEN $2::text = 'submitted' THEN $3::timestamptz ELSE applied_at END,
		     response_at = CASE WHEN $2::text = 'responded' THEN $3::timestamptz ELSE response_at END,
		     notes = CASE WHEN $4::text <> '' THEN $4::text ELSE notes END,
		     updated_at = $3::timestamptz
		 WHERE id = $1`,
		change.ID, string(change.Status), change.At, change.Note,
	)
	if err != nil {
		return "", fmt.Errorf("failed to update status: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO status_history (id, application_id, old_status, new_status, changed_at, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		change.HistoryID, change.ID, old, string(change.Status), change.At, change.Note,
	)
	if err != nil {
		return "", fmt.Errorf("failed to append history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return types.ApplicationStatus(old), nil
}

// GetByURL retrieves an application by its posting URL
func (db *DB) GetByURL(ctx context.Context, url string) (*types.ApplicationRecord, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_url = $1`, url)
	return scanOptional(row)
}

// Get retrieves an application by id
func (db *DB) Get(ctx context.Context, id uuid.UUID) (*types.ApplicationRecord, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanOptional(row)
}

// ListPending retrieves pending applications, best score first
func (db *DB) ListPending(ctx context.Context, tier *types.Tier, limit int) ([]types.ApplicationRecord, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE status = 'pending'`
	args := []any{}
	argNum := 1

	if tier != nil {
		query += fmt.Sprintf(" AND tier = $%d", argNum)
		args = append(args, int(*tier))
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY match_score DESC, created_at ASC LIMIT $%d", argNum)
	args = append(args, limit)

	rows, err := db.pool.Query(ctx, query, args...)
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

// History retrieves the status transitions of an application, oldest first
func (db *DB) History(ctx context.Context, id uuid.UUID) ([]types.StatusTransition, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, application_id, old_status, new_status, changed_at, notes
		 FROM status_history WHERE application_id = $1 ORDER BY changed_at ASC, id ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var hist []types.StatusTransition
	for rows.Next() {
		var h types.StatusTransition
		var oldStatus, newStatus string
		if err := rows.Scan(&h.ID, &h.ApplicationID, &oldStatus, &newStatus, &h.ChangedAt, &h.Note); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		h.OldStatus = types.ApplicationStatus(oldStatus)
		h.NewStatus = types.ApplicationStatus(newStatus)
		hist = append(hist, h)
	}
	return hist, rows.Err()
}

// Counts aggregates applications by status, tier and provider
func (db *DB) Counts(ctx context.Context) (*tracker.Counts, error) {
	counts := tracker.NewCounts()

	err := db.groupCount(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`, func(rows pgx.Rows) error {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return err
		}
		counts.ByStatus[types.ApplicationStatus(status)] = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = db.groupCount(ctx, `SELECT tier, COUNT(*) FROM applications GROUP BY tier`, func(rows pgx.Rows) error {
		var tier, n int
		if err := rows.Scan(&tier, &n); err != nil {
			return err
		}
		counts.ByTier[types.Tier(tier)] = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = db.groupCount(ctx, `SELECT ats, COUNT(*) FROM applications GROUP BY ats`, func(rows pgx.Rows) error {
		var ats string
		var n int
		if err := rows.Scan(&ats, &n); err != nil {
			return err
		}
		counts.ByProvider[ats] = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (db *DB) groupCount(ctx context.Context, query string, scan func(pgx.Rows) error) error {
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan count: %w", err)
		}
	}
	return rows.Err()
}

func scanOptional(row pgx.Row) (*types.ApplicationRecord, error) {
	rec, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func scanApplication(row pgx.Row) (*types.ApplicationRecord, error) {
	var rec types.ApplicationRecord
	var tier int
	var status string
	err := row.Scan(&rec.ID, &rec.URL, &rec.Title, &rec.Company, &rec.Location, &rec.Provider, &tier, &rec.Score,
		&status, &rec.AppliedAt, &rec.RespondedAt, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}
	rec.Tier = types.Tier(tier)
	rec.Status = types.ApplicationStatus(status)
	return &rec, nil
}
