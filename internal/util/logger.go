package util

import (
	"fmt"
	"io"
	"os"
)

// Logger writes diagnostics to stderr when verbose mode is on. Stdout is
// reserved for command output, so reports stay pipeable.
type Logger struct {
	out     io.Writer
	verbose bool
}

// NewLogger creates a logger that writes to stderr
func NewLogger(verbose bool) *Logger {
	return &Logger{out: os.Stderr, verbose: verbose}
}

// Verbosef logs only when verbose mode is on
func (l *Logger) Verbosef(format string, args ...interface{}) {
	if l == nil || !l.verbose {
		return
	}
	fmt.Fprintf(l.out, format+"\n", args...)
}

// Warnf always logs; used for degraded-but-continuing conditions
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	fmt.Fprintf(l.out, "Warning: "+format+"\n", args...)
}
