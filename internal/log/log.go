// ABOUTME: Builds the pslog logger used across the program from a level and format.
// ABOUTME: The console owns the terminal, so logs go to a file or are discarded, never to stdout.

package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
)

// Level names accepted by New.
const (
	LevelTrace = "trace"
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Options selects the minimum level and the output format.
type Options struct {
	Level      string
	Structured bool // JSON lines instead of the console format
	NoColor    bool
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) (pslog.Logger, error) {
	po := pslog.Options{Mode: pslog.ModeConsole, NoColor: opts.NoColor}
	if opts.Structured {
		po.Mode = pslog.ModeStructured
	}
	if err := setLevel(&po, opts.Level); err != nil {
		return nil, err
	}
	return pslog.NewWithOptions(w, po), nil
}

// Discard returns a logger that drops everything.
func Discard() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.ErrorLevel})
}

// ValidLevel reports whether s names a level New accepts.
func ValidLevel(s string) bool {
	var po pslog.Options
	return setLevel(&po, s) == nil
}

func setLevel(po *pslog.Options, s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case LevelTrace:
		po.MinLevel = pslog.TraceLevel
	case LevelDebug:
		po.MinLevel = pslog.DebugLevel
	case "", LevelInfo:
		po.MinLevel = pslog.InfoLevel
	case LevelWarn, "warning":
		po.MinLevel = pslog.WarnLevel
	case LevelError:
		po.MinLevel = pslog.ErrorLevel
	default:
		return fmt.Errorf("unknown log level %q", s)
	}
	return nil
}

// OpenFile opens path for appending, creating its directory.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// RedirectStdlib sends the standard library logger through logger so
// stray log.Printf calls cannot scribble over the edit line.
func RedirectStdlib(logger pslog.Logger) {
	stdlog.SetOutput(pslog.LogLogger(logger).Writer())
	stdlog.SetFlags(0)
}
