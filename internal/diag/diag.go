// Package diag builds the diagnostic log sink: an append-only text stream
// on stderr or a serial console. Nothing reads it back.
package diag

import (
	"io"
	"log/slog"
	"strings"
)

// DefaultBaud matches the device's serial console.
const DefaultBaud = 115200

// ParseLevel maps a config level name to a slog level. Unknown names
// fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// bestEffort drops write errors so a failing sink never reaches callers.
type bestEffort struct {
	w io.Writer
}

// BestEffort wraps w so every write reports success.
func BestEffort(w io.Writer) io.Writer {
	return bestEffort{w: w}
}

func (b bestEffort) Write(p []byte) (int, error) {
	_, _ = b.w.Write(p)
	return len(p), nil
}
