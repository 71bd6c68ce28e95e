package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
)

// Level is a logging severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelOff:
		return "off"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel parses a level name such as "debug" or "WARN"
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "off", "none":
		return LevelOff, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger provides leveled logging capabilities
// This abstraction allows swapping logging implementations
type Logger interface {
	// Error logs an error message
	Error(args ...interface{})

	// Errorf logs a formatted error message
	Errorf(format string, args ...interface{})

	// Warn logs a warning message
	Warn(args ...interface{})

	// Warnf logs a formatted warning message
	Warnf(format string, args ...interface{})

	// Info logs an informational message
	Info(args ...interface{})

	// Infof logs a formatted informational message
	Infof(format string, args ...interface{})

	// Debug logs a debug message
	Debug(args ...interface{})

	// Debugf logs a formatted debug message
	Debugf(format string, args ...interface{})

	// WithFields returns a logger that appends fields to every message
	WithFields(fields map[string]interface{}) Logger
}

// defaultLogger implements Logger using Go's standard log package
type defaultLogger struct {
	level  Level
	fields string
	error  *log.Logger
	warn   *log.Logger
	info   *log.Logger
	debug  *log.Logger
}

// NewDefaultLogger creates an info level logger writing errors and warnings
// to stderr and everything else to stdout
func NewDefaultLogger() Logger {
	return &defaultLogger{
		level: LevelInfo,
		error: log.New(os.Stderr, "[ERROR] ", log.LstdFlags|log.Lshortfile),
		warn:  log.New(os.Stderr, "[WARN] ", log.LstdFlags|log.Lshortfile),
		info:  log.New(os.Stdout, "[INFO] ", log.LstdFlags|log.Lshortfile),
		debug: log.New(os.Stdout, "[DEBUG] ", log.LstdFlags|log.Lshortfile),
	}
}

// NewLogger creates a logger writing every level at or above level to w
func NewLogger(w io.Writer, level Level) Logger {
	flags := log.LstdFlags
	return &defaultLogger{
		level: level,
		error: log.New(w, "[ERROR] ", flags),
		warn:  log.New(w, "[WARN] ", flags),
		info:  log.New(w, "[INFO] ", flags),
		debug: log.New(w, "[DEBUG] ", flags),
	}
}

// NopLogger discards everything
func NopLogger() Logger {
	return NewLogger(io.Discard, LevelOff)
}

func (l *defaultLogger) output(level Level, logger *log.Logger, msg string) {
	if level < l.level {
		return
	}
	logger.Output(3, msg+l.fields)
}

// Error logs an error message
func (l *defaultLogger) Error(args ...interface{}) {
	l.output(LevelError, l.error, fmt.Sprint(args...))
}

// Errorf logs a formatted error message
func (l *defaultLogger) Errorf(format string, args ...interface{}) {
	l.output(LevelError, l.error, fmt.Sprintf(format, args...))
}

// Warn logs a warning message
func (l *defaultLogger) Warn(args ...interface{}) {
	l.output(LevelWarn, l.warn, fmt.Sprint(args...))
}

// Warnf logs a formatted warning message
func (l *defaultLogger) Warnf(format string, args ...interface{}) {
	l.output(LevelWarn, l.warn, fmt.Sprintf(format, args...))
}

// Info logs an informational message
func (l *defaultLogger) Info(args ...interface{}) {
	l.output(LevelInfo, l.info, fmt.Sprint(args...))
}

// Infof logs a formatted informational message
func (l *defaultLogger) Infof(format string, args ...interface{}) {
	l.output(LevelInfo, l.info, fmt.Sprintf(format, args...))
}

// Debug logs a debug message
func (l *defaultLogger) Debug(args ...interface{}) {
	l.output(LevelDebug, l.debug, fmt.Sprint(args...))
}

// Debugf logs a formatted debug message
func (l *defaultLogger) Debugf(format string, args ...interface{}) {
	l.output(LevelDebug, l.debug, fmt.Sprintf(format, args...))
}

// WithFields implements Logger; fields are rendered as sorted key=value pairs
func (l *defaultLogger) WithFields(fields map[string]interface{}) Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(l.fields)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	clone := *l
	clone.fields = b.String()
	return &clone
}
