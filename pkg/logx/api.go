package logx

import (
	"fmt"
	"os"
)

var defaultLogger *Logger

func init() {
	l, err := NewLogger(LoadFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logx: %v, falling back to defaults\n", err)
		l, _ = NewLogger(DefaultConfig())
	}
	defaultLogger = l
}

// SetDefaultLogger replaces the package logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetDefaultLogger returns the package logger
func GetDefaultLogger() *Logger {
	return defaultLogger
}

// SetLevel sets the level of the package logger
func SetLevel(level Level) {
	defaultLogger.SetLevel(level)
}

// Sync flushes the package logger
func Sync() error {
	return defaultLogger.Sync()
}

func Debug(msg string) { defaultLogger.log(LevelDebug, msg, nil) }
func Info(msg string)  { defaultLogger.log(LevelInfo, msg, nil) }
func Warn(msg string)  { defaultLogger.log(LevelWarn, msg, nil) }
func Error(msg string) { defaultLogger.log(LevelError, msg, nil) }
func Fatal(msg string) { defaultLogger.log(LevelFatal, msg, nil) }

func Debugf(format string, args ...any) {
	defaultLogger.log(LevelDebug, fmt.Sprintf(format, args...), nil)
}

func Infof(format string, args ...any) {
	defaultLogger.log(LevelInfo, fmt.Sprintf(format, args...), nil)
}

func Warnf(format string, args ...any) {
	defaultLogger.log(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func Errorf(format string, args ...any) {
	defaultLogger.log(LevelError, fmt.Sprintf(format, args...), nil)
}

func Fatalf(format string, args ...any) {
	defaultLogger.log(LevelFatal, fmt.Sprintf(format, args...), nil)
}

// WithFields creates an entry with fields on the package logger
func WithFields(fields Fields) *Entry {
	return defaultLogger.WithFields(fields)
}

// WithField creates an entry with a single field on the package logger
func WithField(key string, value any) *Entry {
	return defaultLogger.WithField(key, value)
}

// WithError creates an entry carrying err on the package logger
func WithError(err error) *Entry {
	return defaultLogger.WithError(err)
}
