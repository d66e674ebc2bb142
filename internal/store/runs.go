// Package store keeps the history of optimization runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/plantplan/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Run is a stored optimization result. List leaves Result empty.
type Run struct {
	ID           string                    `json:"id"`
	Title        string                    `json:"title"`
	Status       model.Status              `json:"status"`
	PlantCount   int                       `json:"plantCount"`
	ProductCount int                       `json:"productCount"`
	TotalUnits   float64                   `json:"totalUnits"`
	TotalProfit  float64                   `json:"totalProfit"`
	DurationMS   int64                     `json:"durationMs"`
	CreatedAt    time.Time                 `json:"createdAt"`
	Result       *model.OptimizationResult `json:"result,omitempty"`
}

// NewRun is the input to Save.
type NewRun struct {
	Title        string
	PlantCount   int
	ProductCount int
	Duration     time.Duration
	Result       model.OptimizationResult
}

// Runs is the run repository.
type Runs struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// NewRuns returns a repository over a migrated database.
func NewRuns(db *sql.DB) *Runs {
	return &Runs{db: db, now: time.Now, newID: uuid.NewString}
}

// Save stores a run and returns it with its generated ID.
func (s *Runs) Save(ctx context.Context, in NewRun) (Run, error) {
	payload, err := json.Marshal(in.Result)
	if err != nil {
		return Run{}, fmt.Errorf("encode run result: %w", err)
	}

	result := in.Result
	run := Run{
		ID:           s.newID(),
		Title:        in.Title,
		Status:       in.Result.Status,
		PlantCount:   in.PlantCount,
		ProductCount: in.ProductCount,
		TotalUnits:   in.Result.TotalUnits,
		TotalProfit:  in.Result.TotalProfit,
		DurationMS:   in.Duration.Milliseconds(),
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
		Result:       &result,
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id,
			title,
			status,
			plant_count,
			product_count,
			total_units,
			total_profit,
			duration_ms,
			result_json,
			created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Title, string(run.Status), run.PlantCount, run.ProductCount,
		run.TotalUnits, run.TotalProfit, run.DurationMS, string(payload),
		run.CreatedAt.Format(timeLayout)); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// List returns runs newest first. A non-empty query filters by title or status.
func (s *Runs) List(ctx context.Context, query string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id,
			title,
			status,
			plant_count,
			product_count,
			total_units,
			total_profit,
			duration_ms,
			created_at
		FROM runs
		WHERE (? = '' OR title LIKE ? OR status LIKE ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, query, search, search, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its full result.
func (s *Runs) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			id,
			title,
			status,
			plant_count,
			product_count,
			total_units,
			total_profit,
			duration_ms,
			created_at,
			result_json
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return run, err
}

// Count returns the number of stored runs.
func (s *Runs) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner, withResult bool) (Run, error) {
	var (
		run       Run
		status    string
		createdAt string
		payload   string
	)
	dest := []any{
		&run.ID, &run.Title, &status, &run.PlantCount, &run.ProductCount,
		&run.TotalUnits, &run.TotalProfit, &run.DurationMS, &createdAt,
	}
	if withResult {
		dest = append(dest, &payload)
	}
	if err := sc.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	run.Status = model.Status(status)
	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse run %s created_at: %w", run.ID, err)
	}
	run.CreatedAt = ts

	if withResult {
		var result model.OptimizationResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return Run{}, fmt.Errorf("decode run %s result: %w", run.ID, err)
		}
		run.Result = &result
	}
	return run, nil
}
