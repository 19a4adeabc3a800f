// Package logging builds the charmbracelet logger shared by the commands.
package logging

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
	now func() time.Time
}

// Write buffers bytes until a newline is found; for each full line, write a
// timestamped line to the underlying writer. Partial lines stay buffered.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			// put the partial line back
			t.buf.WriteString(line)
			break
		}
		ts := t.now().Format(time.RFC3339)
		if _, err := t.w.Write([]byte(ts + " " + line)); err != nil {
			return n, err
		}
	}
	return n, nil
}

// terminalWriter wraps an io.Writer and exposes an Fd method so the logger
// can still detect a TTY through wrapped writers.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

// Fd exposes the underlying file descriptor (e.g., os.Stderr.Fd()).
func (tw *terminalWriter) Fd() uintptr { return tw.fd }

// Options configure New.
type Options struct {
	Prefix  string
	Level   string
	Verbose bool
	// LogFile, when set, receives a copy of every line.
	LogFile string
	Out     io.Writer
}

// ParseLevel maps a config string to a level. Unknown values report ok=false
// and fall back to info.
func ParseLevel(s string) (log.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, true
	case "info", "":
		return log.InfoLevel, true
	case "warn", "warning":
		return log.WarnLevel, true
	case "error":
		return log.ErrorLevel, true
	default:
		return log.InfoLevel, false
	}
}

// New returns a logger and a close func for the optional log file.
func New(opts Options) (*log.Logger, func() error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	closer := func() error { return nil }
	var fileErr error
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			// write to both so running interactively still shows logs
			out = io.MultiWriter(out, f)
			closer = f.Close
		} else {
			fileErr = err
		}
	}

	var w io.Writer = &timestampWriter{w: out, now: time.Now}
	if f, ok := opts.Out.(*os.File); ok || opts.Out == nil {
		if !ok {
			f = os.Stderr
		}
		w = &terminalWriter{w: w, fd: f.Fd()}
	}
	logger := log.NewWithOptions(w, log.Options{Prefix: opts.Prefix})

	level, known := ParseLevel(opts.Level)
	if opts.Verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	if !known {
		logger.Warn("unknown log_level, defaulting to info", "provided", opts.Level)
	}
	if fileErr != nil {
		logger.Warn("log_file specified but could not be opened; logging to stderr only", "path", opts.LogFile, "err", fileErr)
	}
	return logger, closer
}
