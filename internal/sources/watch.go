package sources

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// configMapDataLink is the symlink a kubelet atomically replaces to publish
// a new version of a mounted ConfigMap
const configMapDataLink = "..data"

// WatchFile signals trigger whenever the file at path is written, created or
// replaced. The parent directory is watched so that atomic renames are
// observed, as is the "..data" symlink a kubelet swaps when it updates a
// mounted ConfigMap. Signals are coalesced: a pending signal is not duplicated.
//
// This function blocks until ctx is cancelled, returning nil in that case.
func WatchFile(ctx context.Context, path string, trigger chan<- struct{}) error {
	logger := logr.FromContextOrDiscard(ctx)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	dataLink := filepath.Join(filepath.Dir(absPath), configMapDataLink)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error(closeErr, "Failed to close file watcher")
		}
	}()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	logger.Info("Watching translations file", "path", absPath)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			if name := filepath.Clean(event.Name); name != absPath && name != dataLink {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			logger.V(1).Info("Translations file changed", "path", absPath, "op", event.Op.String())
			select {
			case trigger <- struct{}{}:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			logger.Error(err, "File watcher error")
		}
	}
}
