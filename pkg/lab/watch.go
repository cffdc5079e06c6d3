package lab

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/phroun/lsystem"
)

// Settle is how long the watcher waits after the last change to a file
// before reporting it. Editors often write a file in several steps.
var Settle = 100 * time.Millisecond

// Watch calls onChange with the path of a watched file each time it is
// written or recreated, until ctx is done. The parent directories are
// watched so that files replaced by a rename are still seen.
func Watch(ctx context.Context, paths []string, logger *lsystem.Logger, onChange func(path string)) error {
	if logger == nil {
		logger = lsystem.NewLogger(false)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer watcher.Close()

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrapf(err, "resolving %s", p)
		}
		files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "watching %s", dir)
		}
		dirs[dir] = true
		logger.DebugCat(lsystem.CatIO, "Watching directory: %s", dir)
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(Settle)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Clean(event.Name)
			if !files[name] {
				continue
			}
			logger.DebugCat(lsystem.CatIO, "File event: %s", event)
			pending[name] = true
			timer.Reset(Settle)

		case <-timer.C:
			for name := range pending {
				onChange(name)
			}
			pending = make(map[string]bool)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WarnCat(lsystem.CatIO, "File watcher error: %v", err)
		}
	}
}
