// Package watcher observes the custom-commands directory and pushes the
// current command names to remote clients when it changes.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Notifier receives the rescanned command names.
type Notifier interface {
	BroadcastCustomCommands(commands []string)
}

// Watcher rescans a directory of command definition files (one .md file
// per command) whenever its contents change.
type Watcher struct {
	dir      string
	notifier Notifier
	logger   *slog.Logger
}

// New returns a watcher over dir. dir may be empty, in which case Run is
// a no-op.
func New(dir string, notifier Notifier, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{dir: dir, notifier: notifier, logger: logger}
}

// Scan reads the directory and returns the sorted command names.
func (w *Watcher) Scan() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("scan commands dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".md") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".md"))
	}
	sort.Strings(names)
	return names, nil
}

// Run watches the directory until the context is cancelled, broadcasting
// the command names on every change. The initial scan is broadcast
// before the first event.
func (w *Watcher) Run(ctx context.Context) error {
	if w.dir == "" {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.rescan()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) != 0 {
				w.rescan()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("commands watcher error", "error", err)
		}
	}
}

func (w *Watcher) rescan() {
	names, err := w.Scan()
	if err != nil {
		w.logger.Warn("commands rescan failed", "dir", w.dir, "error", err)
		return
	}
	w.notifier.BroadcastCustomCommands(names)
	w.logger.Debug("custom commands updated", "count", len(names))
}
