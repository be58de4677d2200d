package cli

import (
	"io"
	"log/slog"
)

// setupLogging installs a text logger on w as the slog default. verbose
// forces debug level.
func setupLogging(w io.Writer, level string, verbose bool) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return usageErrorf("invalid log_level %q: %v", level, err)
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	slog.Debug("logging configured", "level", lvl.String())
	return nil
}
