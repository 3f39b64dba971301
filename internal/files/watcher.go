package files

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"unistats/internal/config"
)

// ChangeFunc is called once per settled burst of workbook changes.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher reports changes to source workbooks in one directory. Rapid
// saves are collapsed: the callback fires after no event has arrived for
// the debounce interval.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange ChangeFunc
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewWatcher creates a watcher for dir. It does not touch the file system
// until Run is called.
func NewWatcher(dir string, debounce time.Duration, onChange ChangeFunc, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		logger:   logger.With(slog.String("component", "watcher")),
		pending:  make(map[string]struct{}),
	}
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.logger.InfoContext(ctx, "watching data directory",
		slog.String("dir", w.dir),
		slog.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.DebugContext(ctx, "workbook event",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()))
			w.mu.Lock()
			w.pending[event.Name] = struct{}{}
			w.mu.Unlock()
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.ErrorContext(ctx, "watcher error", slog.String("error", err.Error()))

		case <-timer.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, config.LockFilePrefix) {
		return false
	}
	ok, _ := filepath.Match(config.WorkbookPattern, name)
	return ok
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(changed) == 0 || w.onChange == nil {
		return
	}
	w.logger.InfoContext(ctx, "source workbooks changed", slog.Int("files", len(changed)))
	w.onChange(ctx, changed)
}
