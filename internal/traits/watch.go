package traits

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the tables from path whenever the file changes, until ctx
// is done. A file that fails to parse leaves the current tables active.
func (c *Classifier) Watch(ctx context.Context, path string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("traits watcher: %w", err)
	}
	// editors often replace the file, so watch the directory
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		defer w.Close()

		target := filepath.Clean(path)
		debounce := time.NewTimer(time.Hour)
		debounce.Stop()
		defer debounce.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				debounce.Reset(100 * time.Millisecond)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("traits watcher error", zap.Error(err))
			case <-debounce.C:
				t, err := Load(path)
				if err != nil {
					log.Warn("traits reload rejected", zap.String("path", path), zap.Error(err))
					continue
				}
				c.Swap(t)
				log.Info("traits reloaded", zap.String("path", path))
			}
		}
	}()
	return nil
}
