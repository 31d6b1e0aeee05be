package logger

import (
	"sync"
)

// Log levels accepted in configuration.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	root *Logger
	once sync.Once
)

// Get returns the process-wide logger, building it on first call with the
// given level. Later calls return the same instance and ignore the level.
func Get(level string) *Logger {
	once.Do(func() {
		root = newZapLogger(level)
	})
	return root
}

// Nop returns a logger that discards everything. Used by tests and by
// components that treat logging as optional.
func Nop() *Logger {
	return newNopLogger()
}
