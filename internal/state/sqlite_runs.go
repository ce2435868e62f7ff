package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

const runColumns = `id, input_path, input_hash, mode, workers, skip_chain_check, status, started_at, completed_at, error, answer, chain, stages, triples, inputs, value_count, fragments`

// CreateRun inserts a run in the running state.
func (s *SQLiteStore) CreateRun(ctx context.Context, in NewRun) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:             generateID(),
		InputPath:      in.InputPath,
		InputHash:      in.InputHash,
		Mode:           in.Mode,
		Workers:        max(in.Workers, 1),
		SkipChainCheck: in.SkipChainCheck,
		Status:         RunStatusRunning,
		StartedAt:      time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("input", run.InputPath), slog.String("mode", run.Mode))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_path, input_hash, mode, workers, skip_chain_check, status, started_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputPath, run.InputHash, run.Mode, run.Workers, run.SkipChainCheck, string(run.Status), run.StartedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run completed and stores its outcome.
func (s *SQLiteStore) CompleteRun(ctx context.Context, id string, out Outcome) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	chain := out.Chain
	if chain == nil {
		chain = []string{}
	}
	chainJSON, err := json.Marshal(chain)
	if err != nil {
		return fmt.Errorf("failed to encode chain: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, answer = ?, chain = ?, stages = ?, triples = ?, inputs = ?, value_count = ?, fragments = ? WHERE id = ?`,
		string(RunStatusCompleted), time.Now().UTC().UnixNano(),
		strconv.FormatUint(out.Answer, 10), string(chainJSON), out.Stages, out.Triples, out.Inputs,
		strconv.FormatUint(out.Values, 10), out.Fragments, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run %s: %w", id, err)
	}
	return checkAffected(res, id)
}

// FailRun marks a run failed with the given message.
func (s *SQLiteStore) FailRun(ctx context.Context, id string, errMsg string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(RunStatusFailed), time.Now().UTC().UnixNano(), errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to fail run %s: %w", id, err)
	}
	return checkAffected(res, id)
}

func checkAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// LatestCompleted returns the newest completed run for the given input hash,
// mode and chain check setting, or nil when there is none.
func (s *SQLiteStore) LatestCompleted(ctx context.Context, inputHash, mode string, skipChainCheck bool) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE input_hash = ? AND mode = ? AND skip_chain_check = ? AND status = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`,
		inputHash, mode, skipChainCheck, string(RunStatusCompleted),
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run         Run
		status      string
		startedAt   int64
		completedAt sql.NullInt64
		errMsg      sql.NullString
		answer      sql.NullString
		chain       string
		values      string
	)
	err := sc.Scan(
		&run.ID, &run.InputPath, &run.InputHash, &run.Mode, &run.Workers, &run.SkipChainCheck, &status,
		&startedAt, &completedAt, &errMsg, &answer, &chain, &run.Stages, &run.Triples, &run.Inputs,
		&values, &run.Fragments,
	)
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	run.StartedAt = time.Unix(0, startedAt).UTC()
	if completedAt.Valid {
		t := time.Unix(0, completedAt.Int64).UTC()
		run.CompletedAt = &t
	}
	run.Error = errMsg.String
	if answer.Valid {
		v, err := strconv.ParseUint(answer.String, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad answer %q: %w", run.ID, answer.String, err)
		}
		run.Answer = &v
	}
	if err := json.Unmarshal([]byte(chain), &run.Chain); err != nil {
		return nil, fmt.Errorf("run %s: bad chain %q: %w", run.ID, chain, err)
	}
	if values != "" {
		v, err := strconv.ParseUint(values, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad value count %q: %w", run.ID, values, err)
		}
		run.Values = v
	}
	return &run, nil
}
