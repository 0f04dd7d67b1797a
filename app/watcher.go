package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchToolbox watches the toolbox file for changes and calls onChange with
// the freshly parsed palette. Events are debounced because editors tend to
// fire several writes per save. Blocks until ctx is canceled.
func WatchToolbox(ctx context.Context, path string, log *slog.Logger, onChange func(*Toolbox)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: many editors replace the file on
	// save, which drops a watch on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	log.Info("watching toolbox", "path", path)

	var debounce *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("toolbox watch error", "err", err)
		case <-fire:
			tb, err := LoadToolbox(path)
			if err != nil {
				log.Error("failed to reload toolbox", "path", path, "err", err)
				continue
			}
			log.Info("toolbox reloaded", "path", path, "categories", len(tb.Categories))
			onChange(tb)
		}
	}
}
