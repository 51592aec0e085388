package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher reloads the configuration when the config file changes.
type Watcher struct {
	path   string
	log    logrus.FieldLogger
	reload func() (*Config, error)
}

// NewWatcher creates a Watcher for the file backing cfg.
func NewWatcher(cfg *Config, log logrus.FieldLogger) *Watcher {
	return &Watcher{
		path:   cfg.ConfigFilePath(),
		log:    log,
		reload: Load,
	}
}

// Watch blocks until ctx is cancelled, calling onChange with the freshly
// loaded configuration after every write to the config file. Reload errors
// are logged and the previous configuration stays in effect.
func (w *Watcher) Watch(ctx context.Context, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// The directory is watched so that editors replacing the file by rename
	// are still noticed.
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.log.WithField("file", w.path).Info("watching configuration file")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := w.reload()
			if err != nil {
				w.log.WithError(err).Warn("configuration reload failed")
				continue
			}
			configMu.Lock()
			globalConfig = cfg
			configMu.Unlock()
			w.log.Info("configuration reloaded")
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("configuration watcher error")
		case <-ctx.Done():
			return nil
		}
	}
}
