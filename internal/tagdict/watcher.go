package tagdict

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the dictionary whenever the tags file changes, until ctx is
// cancelled. Editors often emit bursts of write/rename events for a single
// save, so reloads are debounced.
//
// The parent directory is watched rather than the file itself: atomic saves
// replace the inode, which would silently drop a file-level watch.
func Watch(ctx context.Context, d *Dictionary, path string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("tagdict: watching", slog.String("file", path))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("tagdict: watcher stopped")
			return nil

		case <-reloadCh:
			if err := d.LoadFile(path); err != nil {
				logger.Warn("tagdict: reload failed", slog.String("error", err.Error()))
			} else {
				logger.Info("tagdict: reloaded", slog.Int("entries", d.Len()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("tagdict: watcher error", slog.String("error", err.Error()))
		}
	}
}
