// Package logging builds the charmbracelet logger shared by the command line,
// web and terminal front ends.
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

// Options selects where and how verbosely to log.
type Options struct {
	File    string    // optional append-only log file, mirrored to Out
	Level   string    // debug, info, warn or error
	Verbose bool      // forces debug level
	Prefix  string    // logger prefix
	Out     io.Writer // defaults to os.Stderr
}

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
	now func() time.Time
}

// Write buffers bytes until a newline is found; for each full line, write a timestamped
// line to the underlying writer. Partial lines are kept in the buffer.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			// keep the partial line for the next write
			t.buf.Reset()
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

// terminalWriter wraps an io.Writer and exposes an Fd method so libraries that
// inspect the file descriptor (for TTY detection) can work with wrapped writers.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

// Fd exposes the underlying file descriptor (e.g., os.Stderr.Fd()).
func (tw *terminalWriter) Fd() uintptr { return tw.fd }

// New builds a logger. The returned close function releases the log file, if any.
func New(opts Options) (*log.Logger, func() error, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	closeFn := func() error { return nil }
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, closeFn, err
		}
		// write to both out and file so running interactively still shows logs
		out = io.MultiWriter(out, f)
		closeFn = f.Close
	}

	tw := &timestampWriter{w: out, now: time.Now}
	var w io.Writer = tw
	if f, ok := opts.Out.(*os.File); ok || opts.Out == nil {
		if f == nil {
			f = os.Stderr
		}
		w = &terminalWriter{w: tw, fd: f.Fd()}
	}
	logger := log.NewWithOptions(w, log.Options{Prefix: opts.Prefix})

	level, known := ParseLevel(opts.Level)
	if opts.Verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	if !known && !opts.Verbose {
		logger.Warn("unknown log_level in config, defaulting to info", "provided", opts.Level)
	}
	return logger, closeFn, nil
}

// ParseLevel maps a config string to a level; unknown values map to info.
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
