package skill

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/hupe1980/autocrew/logging"
)

// Watcher reloads a skill registry whenever files under its root change, so
// a skill dropped into the directory becomes usable without restarting the
// REPL.
type Watcher struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	logger   logging.Logger
	done     chan struct{}
}

// NewWatcher starts watching the registry's root directory and its skill
// subdirectories. Close must be called to release the watcher.
func NewWatcher(registry *Registry, logger logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create skills watcher: %w", err)
	}
	if err := fsw.Add(registry.Dir()); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch skills dir: %w", err)
	}
	// Watch existing skill subdirectories too; edits to a SKILL.md fire
	// there, not on the root.
	if dirs, err := filepath.Glob(filepath.Join(registry.Dir(), "*")); err == nil {
		for _, dir := range dirs {
			_ = fsw.Add(dir)
		}
	}

	w := &Watcher{registry: registry, watcher: fsw, logger: logger, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("skills.changed", "path", event.Name, "op", event.Op.String())
			if event.Op&fsnotify.Create != 0 {
				// A new skill directory needs its own watch.
				_ = w.watcher.Add(event.Name)
			}
			if err := w.registry.Reload(); err != nil {
				w.logger.Warn("skills.reload_failed", "error", err.Error())
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("skills.watch_error", "error", err.Error())
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
