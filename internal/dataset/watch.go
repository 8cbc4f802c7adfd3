package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher invalidates cache entries when files in the data directory change.
type Watcher struct {
	watcher *fsnotify.Watcher
	cache   *Cache
	logger  *zap.Logger
	done    chan struct{}
}

// Watch starts observing dir. The returned watcher stops when ctx is
// cancelled or Close is called; Close waits for the event loop to exit.
func Watch(ctx context.Context, dir string, cache *Cache, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("dataset: create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("dataset: watch %s: %w", dir, err)
	}
	w := &Watcher{
		watcher: fw,
		cache:   cache,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go w.run(ctx)
	logger.Info("watching datasets", zap.String("dir", dir))
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("dataset watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".json") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.cache.Invalidate(name)
	w.logger.Debug("dataset invalidated", zap.String("dataset", name), zap.String("op", event.Op.String()))
}

// Close stops the watcher and waits for its goroutine to finish.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
