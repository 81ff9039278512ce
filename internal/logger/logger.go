package logger

import (
	"strings"
	"sync"
)

// Log levels accepted in config (log.level).
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger. The level only matters on the first call.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(normalizeLevel(level))
	})
	return globalLogger
}

// Named returns a child logger tagged with the component name.
func (l *Logger) Named(component string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{SugaredLogger: l.SugaredLogger.Named(component)}
}

func normalizeLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}
