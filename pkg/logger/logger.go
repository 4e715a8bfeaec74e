// Package logger builds the slog handlers the CLI and the corpus test log
// through.
package logger

import (
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Options configures New.
type Options struct {
	Level slog.Level
	// Format is auto, text, json or tint. auto picks tint when the writer
	// is a terminal and text otherwise.
	Format  string
	NoColor bool
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	return slog.New(NewHandler(w, opts))
}

// NewHandler returns the handler for opts.
func NewHandler(w io.Writer, opts Options) slog.Handler {
	switch resolveFormat(w, opts.Format) {
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level})
	case "tint":
		return newTerminalHandler(w, opts)
	default:
		return newTextHandler(w, opts)
	}
}

func resolveFormat(w io.Writer, format string) string {
	if format != "" && format != "auto" {
		return format
	}
	if isTerminal(w) {
		return "tint"
	}
	return "text"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newTextHandler(w io.Writer, opts Options) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: opts.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && len(groups) == 0 {
				return slog.String(a.Key, strings.ToLower(a.Value.String()))
			}
			return a
		},
	})
}

func newTerminalHandler(w io.Writer, opts Options) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		NoColor:    opts.NoColor || runtime.GOOS == "windows",
		AddSource:  opts.Level <= slog.LevelDebug,
		Level:      opts.Level,
		TimeFormat: time.Kitchen,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" && a.Value.Kind() == slog.KindAny {
				if err, ok := a.Value.Any().(error); ok {
					return tint.Err(err)
				}
			}
			return a
		},
	})
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
