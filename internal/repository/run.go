package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"penya-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var ErrRunNotFound = errors.New("run not found")

// RunRepository keeps the history of extraction runs and their per-round summaries.
type RunRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRunRepository(sqlDB *sql.DB, logger zerolog.Logger) *RunRepository {
	return &RunRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *RunRepository) Start(ctx context.Context, season domain.SeasonDescriptor, startedAt time.Time) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO runs (id, season_key, season_name, state, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, season.Key(), season.Name, string(domain.StateScanningRounds), startedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// SaveRound replaces the summary and failures of one round of a run.
func (r *RunRepository) SaveRound(ctx context.Context, runID string, summary domain.RoundSummary) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO round_summaries (run_id, round, attempted, succeeded, retried, failed, skipped, index_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, round) DO UPDATE SET
			attempted = excluded.attempted,
			succeeded = excluded.succeeded,
			retried = excluded.retried,
			failed = excluded.failed,
			skipped = excluded.skipped,
			index_error = excluded.index_error`,
		runID, summary.Round, summary.Attempted, summary.Succeeded, summary.Retried, summary.Failed, summary.Skipped, summary.IndexError,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert round %d summary: %w", summary.Round, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_failures WHERE run_id = ? AND round = ?`, runID, summary.Round); err != nil {
		return fmt.Errorf("failed to clear round %d failures: %w", summary.Round, err)
	}
	for _, f := range summary.Failures {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_failures (run_id, round, sheet, kind, attempts, error) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, summary.Round, f.Sheet, f.Kind, f.Attempts, f.Error,
		)
		if err != nil {
			return fmt.Errorf("failed to insert failure of %s: %w", f.Sheet, err)
		}
	}

	return tx.Commit()
}

func (r *RunRepository) UpdateState(ctx context.Context, runID string, state domain.RunState) error {
	_, err := r.db.ExecContext(ctx, `UPDATE runs SET state = ? WHERE id = ?`, string(state), runID)
	if err != nil {
		return fmt.Errorf("failed to update run state: %w", err)
	}
	return nil
}

func (r *RunRepository) Finish(ctx context.Context, runID string, state domain.RunState, finishedAt time.Time, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET state = ?, finished_at = ?, error = ? WHERE id = ?`,
		string(state), finishedAt.UTC(), msg, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first, without their rounds.
func (r *RunRepository) Recent(ctx context.Context, limit int) ([]domain.Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, season_key, season_name, state, started_at, finished_at, error
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Get returns one run with its round summaries and failures.
func (r *RunRepository) Get(ctx context.Context, runID string) (*domain.Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, season_key, season_name, state, started_at, finished_at, error
		FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	rounds, err := r.db.QueryContext(ctx, `
		SELECT round, attempted, succeeded, retried, failed, skipped, index_error
		FROM round_summaries WHERE run_id = ? ORDER BY round`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query round summaries: %w", err)
	}
	defer rounds.Close()

	pos := make(map[int]int)
	for rounds.Next() {
		var s domain.RoundSummary
		if err := rounds.Scan(&s.Round, &s.Attempted, &s.Succeeded, &s.Retried, &s.Failed, &s.Skipped, &s.IndexError); err != nil {
			return nil, fmt.Errorf("failed to scan round summary: %w", err)
		}
		pos[s.Round] = len(run.Rounds)
		run.Rounds = append(run.Rounds, s)
	}
	if err := rounds.Err(); err != nil {
		return nil, err
	}

	failures, err := r.db.QueryContext(ctx, `
		SELECT round, sheet, kind, attempts, error
		FROM sheet_failures WHERE run_id = ? ORDER BY round, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sheet failures: %w", err)
	}
	defer failures.Close()

	for failures.Next() {
		var f domain.SheetFailure
		if err := failures.Scan(&f.Round, &f.Sheet, &f.Kind, &f.Attempts, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan sheet failure: %w", err)
		}
		if i, ok := pos[f.Round]; ok {
			run.Rounds[i].Failures = append(run.Rounds[i].Failures, f)
		}
	}
	return run, failures.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.Run, error) {
	var (
		run      domain.Run
		state    string
		finished sql.NullTime
	)
	if err := s.Scan(&run.ID, &run.SeasonKey, &run.SeasonName, &state, &run.StartedAt, &finished, &run.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.State = domain.RunState(state)
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
