package commands

import (
	"log/slog"

	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

// configPathOrDefault returns path, or tixmail.yaml in the working directory.
func configPathOrDefault(path string) string {
	if path == "" {
		return config.DefaultEventFile
	}
	return path
}

// loadEvent loads the event config, logging when built-in defaults are
// used because no file exists.
func loadEvent(fsys fs.FS, path string, logger *slog.Logger) (config.Event, error) {
	path = configPathOrDefault(path)
	cfg, found, err := config.LoadEvent(fsys, path)
	if err != nil {
		return config.Event{}, err
	}
	if !found {
		logger.Debug("event config not found; using defaults", "config", path)
	}
	return cfg, nil
}
