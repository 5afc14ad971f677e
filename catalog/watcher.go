package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Builder turns freshly loaded records into a snapshot.
type Builder func(records []Record) *Catalog

// Watcher reloads the catalog snapshot whenever the dataset file is rewritten.
// Only the catalog is reloaded; the model artifact stays as loaded at startup.
type Watcher struct {
	path     string
	store    *Store
	build    Builder
	logger   *zap.Logger
	debounce time.Duration
}

// NewWatcher 创建数据文件监听器
func NewWatcher(path string, store *Store, build Builder, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		store:    store,
		build:    build,
		logger:   logger,
		debounce: 200 * time.Millisecond,
	}
}

// Run blocks until ctx is cancelled. The parent directory is watched so that
// atomic rename-over writes are picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(w.path)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.Reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("dataset watcher error", zap.Error(err))
		}
	}
}

// Reload reads the dataset file and swaps the snapshot. A failed read keeps
// the previous snapshot.
func (w *Watcher) Reload() {
	records, err := LoadFile(w.path, w.logger)
	if err != nil {
		w.logger.Warn("dataset reload failed, keeping previous snapshot", zap.Error(err))
		return
	}
	w.store.Swap(w.build(records))
	w.logger.Info("dataset reloaded", zap.String("path", w.path), zap.Int("records", len(records)))
}
