package concurrency

import (
	"fmt"
	"log"
	"os"
)

// Logger is the logging surface the pool needs
// core.Logger satisfies it, so the application logger can be injected with WithLogger
type Logger interface {
	Errorf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// defaultSimpleLogger writes errors and warnings to stderr and drops the rest
// This keeps the package free of a core import when no logger is configured
type defaultSimpleLogger struct {
	logger *log.Logger
}

func newDefaultSimpleLogger() Logger {
	return &defaultSimpleLogger{
		logger: log.New(os.Stderr, "[concurrency] ", log.LstdFlags|log.Lshortfile),
	}
}

func (l *defaultSimpleLogger) Errorf(format string, args ...interface{}) {
	l.logger.Output(2, "ERROR "+fmt.Sprintf(format, args...))
}

func (l *defaultSimpleLogger) Warnf(format string, args ...interface{}) {
	l.logger.Output(2, "WARN "+fmt.Sprintf(format, args...))
}

func (l *defaultSimpleLogger) Infof(string, ...interface{}) {}

func (l *defaultSimpleLogger) Debugf(string, ...interface{}) {}
