package logging

import (
	"io"
	"strings"
)

// New picks a backend by name ("slog" or "zap"); anything else falls back
// to slog.
func New(w io.Writer, backend, level, format string) Logger {
	if strings.EqualFold(backend, "zap") {
		return NewZap(w, level, format)
	}
	return NewSlog(w, level, format)
}
