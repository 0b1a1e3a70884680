package assets

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Updater moves a cache to a new manifest. *Cache implements it.
type Updater interface {
	Update(ctx context.Context, m Manifest) (bool, error)
}

// ManifestWatcher reinstalls the cache when the manifest file changes. The
// parent directory is watched so editors that replace the file by rename are
// picked up too.
type ManifestWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	cache    Updater
	logger   *slog.Logger
	debounce time.Duration
}

type WatcherOption func(*ManifestWatcher)

func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *ManifestWatcher) {
		w.logger = logger
	}
}

// WithDebounce sets the quiet period after the last write before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *ManifestWatcher) {
		w.debounce = d
	}
}

// NewManifestWatcher creates a file watcher for the manifest at path.
func NewManifestWatcher(path string, cache Updater, opts ...WatcherOption) (*ManifestWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(abs), err)
	}

	w := &ManifestWatcher{
		watcher:  watcher,
		path:     abs,
		cache:    cache,
		logger:   slog.New(slog.DiscardHandler),
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches for manifest changes and updates the cache. Blocks until ctx is
// cancelled; the watcher is closed on return.
func (w *ManifestWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// Debounce: reload once the file has been quiet for w.debounce.
	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				if debounce == nil {
					debounce = time.NewTimer(w.debounce)
				} else {
					debounce.Reset(w.debounce)
				}
				fire = debounce.C
			}

		case <-fire:
			fire = nil
			if err := w.Reload(ctx); err != nil {
				w.logger.ErrorContext(ctx, "asset manifest reload failed",
					"path", w.path,
					"error", err,
				)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "file watcher error", "error", err)
		}
	}
}

// Reload reads the manifest and hands it to the cache.
func (w *ManifestWatcher) Reload(ctx context.Context) error {
	m, err := LoadManifest(w.path)
	if err != nil {
		return err
	}
	changed, err := w.cache.Update(ctx, m)
	if err != nil {
		return err
	}
	if changed {
		w.logger.InfoContext(ctx, "asset manifest reloaded",
			"path", w.path,
			"version", m.Version,
		)
	}
	return nil
}
