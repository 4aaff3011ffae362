package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/session-scheduler/internal/persistence"
)

// RunRepository implements persistence.RunArchive on a Store.
type RunRepository struct {
	store *Store
}

// NewRunRepository wires a repository over an opened store.
func NewRunRepository(store *Store) *RunRepository {
	return &RunRepository{store: store}
}

// SaveRun inserts one archived run.
func (r *RunRepository) SaveRun(ctx context.Context, run persistence.Run) error {
	if run.ID == "" {
		return fmt.Errorf("sqlite: run id is required")
	}
	query := `
		INSERT INTO runs (id, seed, created_at, snapshot, placed, unplaced, findings)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.store.db.ExecContext(ctx, query,
		run.ID,
		run.Seed,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
		run.Snapshot,
		joinInts(run.Placed),
		joinInts(run.Unplaced),
		run.Findings,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return persistence.ErrDuplicate
		}
		return fmt.Errorf("sqlite: save run: %w", err)
	}
	return nil
}

// GetRun retrieves one archived run by identifier.
func (r *RunRepository) GetRun(ctx context.Context, id string) (persistence.Run, error) {
	if id == "" {
		return persistence.Run{}, persistence.ErrNotFound
	}
	query := `
		SELECT id, seed, created_at, snapshot, placed, unplaced, findings
		FROM runs
		WHERE id = ?
	`
	var run persistence.Run
	var createdAt, placed, unplaced string
	var findings sql.NullString
	err := r.store.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Seed,
		&createdAt,
		&run.Snapshot,
		&placed,
		&unplaced,
		&findings,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Run{}, persistence.ErrNotFound
		}
		return persistence.Run{}, fmt.Errorf("sqlite: get run: %w", err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return persistence.Run{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if run.Placed, err = splitInts(placed); err != nil {
		return persistence.Run{}, fmt.Errorf("sqlite: parse placed: %w", err)
	}
	if run.Unplaced, err = splitInts(unplaced); err != nil {
		return persistence.Run{}, fmt.Errorf("sqlite: parse unplaced: %w", err)
	}
	if findings.Valid {
		run.Findings = []byte(findings.String)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]persistence.RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, seed, created_at, placed, unplaced
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.store.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list runs: %w", err)
	}
	defer rows.Close()

	var summaries []persistence.RunSummary
	for rows.Next() {
		var summary persistence.RunSummary
		var createdAt, placed, unplaced string
		if err := rows.Scan(&summary.ID, &summary.Seed, &createdAt, &placed, &unplaced); err != nil {
			return nil, fmt.Errorf("sqlite: scan run: %w", err)
		}
		if summary.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse created_at: %w", err)
		}
		placedList, err := splitInts(placed)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse placed: %w", err)
		}
		unplacedList, err := splitInts(unplaced)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parse unplaced: %w", err)
		}
		summary.Placed = len(placedList)
		summary.Unplaced = len(unplacedList)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list runs: %w", err)
	}
	return summaries, nil
}

// DeleteRun removes one archived run.
func (r *RunRepository) DeleteRun(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func joinInts(values []int) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(value string) ([]int, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
