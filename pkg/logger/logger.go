// Package logger provides the printf-style logger shared by every layer of the service.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger writes JSON lines to stdout and, optionally, to a log file.
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

// New creates a logger. An empty file path logs to stdout only.
// Level is one of debug, info, warn, error (case-insensitive).
func New(file string, level string) (*Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("logger: invalid level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	l := &Logger{entry: logrus.NewEntry(log)}

	if file == "" {
		log.SetOutput(os.Stdout)
		return l, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", file, err)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	l.file = f

	return l, nil
}

// NewWithWriter creates a logger writing to w. Used by tests and tools.
func NewWithWriter(w io.Writer, level logrus.Level) *Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(w)
	log.SetLevel(level)
	return &Logger{entry: logrus.NewEntry(log)}
}

// WithField returns a child logger that adds key=value to every record.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value), file: l.file}
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.entry.Infof(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.entry.Warnf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.entry.Errorf(format, v...)
}

// Fatal logs and exits the process with status 1.
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.entry.Fatalf(format, v...)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
