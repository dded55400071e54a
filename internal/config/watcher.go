package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/launchpad-dev/launchpad/internal/logging"
)

// LoaderFunc reloads configuration from disk after a change event.
type LoaderFunc func() (*Config, error)

// ChangeHandler receives freshly loaded configuration. Invoked asynchronously
// on the watcher goroutine; handlers own their own synchronization.
type ChangeHandler func(*Config)

// Watcher watches the launcher configuration file and invokes handlers with
// reloaded configuration. Editors produce bursts of write events per save, so
// events are debounced before reloading.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	loader   LoaderFunc
	delay    time.Duration
	logger   logging.Logger
	handlers []ChangeHandler
	timer    *time.Timer
	mutex    sync.Mutex
}

// NewWatcher creates a watcher for the given configuration file path.
func NewWatcher(path string, loader LoaderFunc, delay time.Duration, logger logging.Logger) (*Watcher, error) {
	if loader == nil {
		return nil, fmt.Errorf("config watcher requires a loader")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: fsw,
		path:    filepath.Clean(path),
		loader:  loader,
		delay:   delay,
		logger:  logger.WithComponent("config-watcher"),
	}, nil
}

// OnChange registers a handler for reloaded configuration.
func (w *Watcher) OnChange(handler ChangeHandler) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Start begins watching. Watching the parent directory instead of the file
// itself survives editors that replace the file on save.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching config directory: %w", err)
	}

	go w.watchLoop(ctx)
	return nil
}

// Stop stops watching and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mutex.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mutex.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "config watcher error")
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		w.reload(ctx)
	})
}

func (w *Watcher) reload(ctx context.Context) {
	cfg, err := w.loader()
	if err != nil {
		// A half-saved file is expected mid-edit; keep the running config.
		w.logger.Warn(ctx, err, "config reload failed, keeping current configuration")
		return
	}

	w.mutex.Lock()
	handlers := make([]ChangeHandler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mutex.Unlock()

	w.logger.Debug(ctx, "config file changed", "path", w.path)
	for _, handler := range handlers {
		handler(cfg)
	}
}
