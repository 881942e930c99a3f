package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/futureview-api/internal/config"
	"github.com/phrazzld/futureview-api/internal/redact"
)

// Setup initializes the application's logging system from the server
// configuration. It creates a structured JSON logger writing to stdout with the
// configured level and installs it as the slog default. Credentials in
// string and error attributes are redacted.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	return setup(os.Stdout, cfg.LogLevel), nil
}

func setup(out io.Writer, configured string) *slog.Logger {
	level, ok := ParseLevel(configured)
	if !ok {
		// Temporary text logger on stderr, the real one is not built yet
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default level",
			"configured_level", configured,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redact.ReplaceAttr,
	})
	l := slog.New(handler)

	slog.SetDefault(l)
	return l
}

// ParseLevel converts a case-insensitive level name to a slog.Level.
// Unknown names map to info and report false.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
