// Package logger provides the process-wide structured logger.
package logger

import "sync"

// Accepted values of the log.level setting.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	global     *Logger
	globalOnce sync.Once
)

// Get returns the process logger. Only the first call's level counts.
func Get(level string) *Logger {
	globalOnce.Do(func() {
		global = newZapLogger(level)
	})
	return global
}
