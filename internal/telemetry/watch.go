package telemetry

import (
	"context"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch monitors path and calls onChange with the file's raw text each time
// it is written or re-created. The text is not parsed here; shape problems
// surface when the operator submits it.
//
// A failed read is logged and skipped. Watch runs until ctx is cancelled.
func Watch(ctx context.Context, path string, log zerolog.Logger, onChange func(raw string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	log.Info().Str("path", path).Msg("telemetry: watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, so Create counts too.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			data, err := os.ReadFile(path)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("telemetry: reload failed")
				continue
			}

			log.Debug().Str("path", path).Int("bytes", len(data)).Msg("telemetry: reloaded")
			onChange(string(data))

			// Re-add in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("telemetry: watcher error")
		}
	}
}
