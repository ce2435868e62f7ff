// Package engine solves almanac files.
// It parses the input, builds the remapping pipeline, computes the lowest
// reachable location and records every run in the state store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/leapstack-labs/seedmap/internal/state"
)

// ErrNoState is returned by history queries when the engine was created
// without a state database.
var ErrNoState = errors.New("run history is disabled (no state path)")

// RunStore is the subset of the state store the engine needs.
type RunStore interface {
	CreateRun(ctx context.Context, in state.NewRun) (*state.Run, error)
	CompleteRun(ctx context.Context, id string, out state.Outcome) error
	FailRun(ctx context.Context, id string, errMsg string) error
	LatestCompleted(ctx context.Context, inputHash, mode string, skipChainCheck bool) (*state.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*state.Run, error)
	Close() error
}

// Engine solves almanacs and keeps run history.
type Engine struct {
	logger  *slog.Logger
	store   RunStore
	workers int
	reuse   bool
}

// Config holds engine configuration.
type Config struct {
	// StatePath is the path to the SQLite run history. Empty disables
	// recording.
	StatePath string
	// Workers bounds concurrent interval propagation. Values <= 1 solve
	// sequentially; a negative value uses GOMAXPROCS.
	Workers int
	// Reuse returns the answer of an earlier completed run with identical
	// input and mode instead of solving again.
	Reuse bool
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Store overrides StatePath with an already opened store.
	Store RunStore
}

// New creates an engine, opening the state database when configured.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	workers := cfg.Workers
	if workers < 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	logger.Debug("initializing engine", "state_path", cfg.StatePath, "workers", workers)

	e := &Engine{
		logger:  logger,
		store:   cfg.Store,
		workers: workers,
		reuse:   cfg.Reuse,
	}

	if e.store == nil && cfg.StatePath != "" {
		if cfg.StatePath != state.MemoryPath {
			if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return nil, fmt.Errorf("failed to create state directory: %w", err)
				}
			}
		}
		store := state.NewSQLiteStore(logger)
		if err := store.Open(cfg.StatePath); err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		e.store = store
	}

	return e, nil
}

// Close releases the state store.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Workers returns the effective worker count.
func (e *Engine) Workers() int {
	return e.workers
}

// Recording reports whether runs are written to a state store.
func (e *Engine) Recording() bool {
	return e.store != nil
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (e *Engine) Runs(ctx context.Context, limit int) ([]*state.Run, error) {
	if e.store == nil {
		return nil, ErrNoState
	}
	return e.store.ListRuns(ctx, limit)
}
