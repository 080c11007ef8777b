package app

import (
	"io"
	"log/slog"
)

// logLevels maps the accepted configuration strings to slog levels.
// cli.Parse rejects anything else before the config reaches the app, so an
// unknown string here just falls back to the zero value, which is info.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the app's logger from a validated config. It does not set
// the global logger, allowing for isolated logger instances.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevels[cfg.LogLevel]}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
