package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Logger writes prefixed lines to a file or stream
type Logger struct {
	file   *os.File
	logger *log.Logger
}

// New creates a logger writing to w
func New(w io.Writer) *Logger {
	return &Logger{logger: log.New(w, "", log.LstdFlags)}
}

// Open appends to the log file at path, creating it and its directory when needed
func Open(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &Logger{
		file:   file,
		logger: log.New(file, "", log.LstdFlags),
	}, nil
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.output("INFO: ", format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.output("WARN: ", format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.output("ERROR: ", format, v...)
}

// Printf logs at error level. It lets the logger be handed to the store and scheduler,
// which only log failures
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Error(format, v...)
}

func (l *Logger) output(level, format string, v ...interface{}) {
	l.logger.Output(3, level+fmt.Sprintf(format, v...))
}

// Close closes the log file, if there is one
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
