package logger

import (
	"fmt"
	"io"
	"os"
)

// Logger writes the human-readable status lines of a cluster operation.
// Everything this tool prints is status output, so it defaults to stdout.
type Logger struct {
	writer io.Writer
	quiet  bool
	debug  bool
}

// New creates a new logger that writes to stdout
func New(quiet, debug bool) *Logger {
	return NewWithWriter(os.Stdout, quiet, debug)
}

// NewWithWriter creates a logger writing to w. A nil writer falls back to stdout.
func NewWithWriter(w io.Writer, quiet, debug bool) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{
		writer: w,
		quiet:  quiet,
		debug:  debug,
	}
}

// Writer returns the underlying writer, e.g. for echoing child process output
func (l *Logger) Writer() io.Writer {
	return l.writer
}

// Quiet reports whether operational messages are suppressed
func (l *Logger) Quiet() bool {
	return l.quiet
}

// Infof logs an informational message
func (l *Logger) Infof(format string, args ...interface{}) {
	if !l.quiet {
		_, _ = fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Successf logs a success message
func (l *Logger) Successf(format string, args ...interface{}) {
	if !l.quiet {
		_, _ = fmt.Fprintf(l.writer, "✓ "+format+"\n", args...)
	}
}

// Failuref logs the failure of a single remote call. Shown even in quiet mode.
func (l *Logger) Failuref(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(l.writer, "✗ Failed: "+format+"\n", args...)
}

// Warningf logs a warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	if !l.quiet {
		_, _ = fmt.Fprintf(l.writer, "Warning: "+format+"\n", args...)
	}
}

// Errorf logs an operation-level error (always shown, even in quiet mode)
func (l *Logger) Errorf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(l.writer, "[ERROR: "+format+"]\n", args...)
}

// Debugf logs a debug message (only shown when debug mode is enabled)
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.debug {
		_, _ = fmt.Fprintf(l.writer, "DEBUG: "+format+"\n", args...)
	}
}

// Println prints a blank line (for spacing)
func (l *Logger) Println() {
	if !l.quiet {
		_, _ = fmt.Fprintln(l.writer)
	}
}
