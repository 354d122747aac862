// Package logging provides structured logging for the notary backend.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	global *logrus.Logger
	once   sync.Once
)

// Init initializes the global logger. Subsequent calls are no-ops.
func Init(out io.Writer, level string) {
	once.Do(func() {
		l := logrus.New()
		l.SetOutput(out)
		l.SetFormatter(&logrus.JSONFormatter{})
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		l.SetLevel(lvl)
		global = l
	})
}

// Get returns the global logger instance.
func Get() *logrus.Logger {
	if global == nil {
		Init(os.Stdout, "info")
	}
	return global
}

// Fields is a shorthand for structured log context.
type Fields = logrus.Fields

// Debug logs a debug message with optional context.
func Debug(message string, fields ...Fields) {
	entry(fields...).Debug(message)
}

// Info logs an info message with optional context.
func Info(message string, fields ...Fields) {
	entry(fields...).Info(message)
}

// Warn logs a warning message with optional context.
func Warn(message string, fields ...Fields) {
	entry(fields...).Warn(message)
}

// Error logs an error message with the error attached.
func Error(message string, err error, fields ...Fields) {
	e := entry(fields...)
	if err != nil {
		e = e.WithError(err)
	}
	e.Error(message)
}

func entry(fields ...Fields) *logrus.Entry {
	e := logrus.NewEntry(Get())
	for _, f := range fields {
		e = e.WithFields(f)
	}
	return e
}
