package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/nativevideo/pkg/logging"
)

// Watch reloads the file at path whenever it is written or recreated and
// passes each valid result to fn. Invalid edits are logged and skipped.
// Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file, so editors that
// save by renaming a temporary file are still seen.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("config watch: %w", err)
	}

	log := logging.For("config").WithField("path", abs)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			cfg, err := Load(abs)
			if err != nil {
				log.WithError(err).Warn("reload failed, keeping previous config")
				continue
			}
			log.Info("config reloaded")
			fn(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")
		}
	}
}
