package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events an editor emits on save.
const watchDebounce = 100 * time.Millisecond

// Watch solves req once, then again every time the almanac file changes,
// passing each outcome to fn. It blocks until ctx is done. req.Input is
// ignored; the file at req.Path is always re-read.
func (e *Engine) Watch(ctx context.Context, req SolveRequest, fn func(*Result, error)) error {
	if req.Path == "" {
		return fmt.Errorf("watch needs a file path")
	}
	req.Input = nil

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors often replace the file instead of
	// writing it in place, which drops a watch on the file itself.
	target, err := filepath.Abs(req.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", req.Path, err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	fn(e.Solve(ctx, req))

	var (
		debounce <-chan time.Time
		timer    *time.Timer
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			e.logger.Debug("almanac changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(watchDebounce)
			debounce = timer.C

		case <-debounce:
			debounce = nil
			fn(e.Solve(ctx, req))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}
