package core

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

// Logger is the logging surface the renderer packages write to. The
// frame loop logs from the render thread while input callbacks may
// flip debug from another, so implementations must be safe for
// concurrent use.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger sends info and debug lines to stdout, warnings and
// errors to stderr. Lines are stamped with microseconds so per-frame
// timing shows up in the log.
type DefaultLogger struct {
	debug atomic.Bool
	out   *log.Logger
	err   *log.Logger
}

// NewDefaultLogger builds a logger whose lines carry prefix; an empty
// prefix falls back to "castle".
func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	if prefix == "" {
		prefix = "castle"
	}
	flags := log.LstdFlags | log.Lmicroseconds
	l := &DefaultLogger{
		out: log.New(os.Stdout, "["+prefix+"] ", flags),
		err: log.New(os.Stderr, "["+prefix+"] ", flags),
	}
	l.debug.Store(debug)
	return l
}

func (l *DefaultLogger) DebugEnabled() bool    { return l.debug.Load() }
func (l *DefaultLogger) SetDebug(enabled bool) { l.debug.Store(enabled) }

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.debug.Load() {
		return
	}
	l.out.Print("DEBUG: " + fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print("INFO: " + fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print("WARN: " + fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print("ERROR: " + fmt.Sprintf(format, args...))
}

type nopLogger struct{}

// NewNopLogger returns a logger that drops everything, for tests and
// headless tools.
func NewNopLogger() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}
