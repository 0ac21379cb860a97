// Package log provides the small leveled-logging facade threaded through
// every reader and pass in this module, adapted from github.com/saferwall/pe's
// log.Helper contract.
package log

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// Level is a logging severity.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink every wrapper in this package writes through.
type Logger interface {
	Log(level Level, msg string) error
}

// stdLogger writes to an io.Writer using the standard library logger.
type stdLogger struct {
	mu  sync.Mutex
	std *log.Logger
}

// NewStdLogger returns a Logger that writes to w, one line per message.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{std: log.New(w, "", log.LstdFlags)}
}

func (l *stdLogger) Log(level Level, msg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.std.Printf("[%s] %s", level, msg)
	return nil
}

// filterLogger drops messages below a minimum level.
type filterLogger struct {
	next Logger
	min  Level
}

// Option configures a filter built by NewFilter.
type Option func(*filterLogger)

// FilterLevel sets the minimum level the filter passes through.
func FilterLevel(level Level) Option {
	return func(f *filterLogger) { f.min = level }
}

// NewFilter wraps next, applying the given options.
func NewFilter(next Logger, opts ...Option) Logger {
	f := &filterLogger{next: next, min: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filterLogger) Log(level Level, msg string) error {
	if level < f.min {
		return nil
	}
	return f.next.Log(level, msg)
}

// Helper adds printf-style convenience methods on top of a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, format string, args ...interface{}) {
	if h == nil || h.logger == nil {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	_ = h.logger.Log(level, msg)
}

func (h *Helper) Debug(msg string)  { h.log(LevelDebug, msg) }
func (h *Helper) Info(msg string)   { h.log(LevelInfo, msg) }
func (h *Helper) Warn(msg string)   { h.log(LevelWarn, msg) }
func (h *Helper) Error(msg string)  { h.log(LevelError, msg) }

func (h *Helper) Debugf(format string, args ...interface{}) { h.log(LevelDebug, format, args...) }
func (h *Helper) Infof(format string, args ...interface{})  { h.log(LevelInfo, format, args...) }
func (h *Helper) Warnf(format string, args ...interface{})  { h.log(LevelWarn, format, args...) }
func (h *Helper) Errorf(format string, args ...interface{}) { h.log(LevelError, format, args...) }
