// Package logger provides module-tagged leveled logging. The TUI owns the
// terminal, so the client points the default logger at a file; the mock
// server logs to stderr with color.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is the severity of a log line.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	SILENT
)

var levelNames = map[Level]string{
	DEBUG:  "DEBUG",
	INFO:   "INFO",
	WARN:   "WARN",
	ERROR:  "ERROR",
	SILENT: "SILENT",
}

var levelColors = map[Level]string{
	DEBUG: "\033[36m",
	INFO:  "\033[32m",
	WARN:  "\033[33m",
	ERROR: "\033[31m",
}

const resetColor = "\033[0m"

// Logger writes leveled, module-tagged lines to a single writer.
type Logger struct {
	mu       sync.Mutex
	level    Level
	useColor bool
	out      *log.Logger
}

// New creates a logger. A nil output means stderr.
func New(level Level, output io.Writer, useColor bool) *Logger {
	if output == nil {
		output = os.Stderr
	}
	return &Logger{
		level:    level,
		useColor: useColor,
		out:      log.New(output, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
}

// SetLevel changes the minimum level that is written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) logf(level Level, module, format string, args ...any) {
	l.mu.Lock()
	min := l.level
	l.mu.Unlock()
	if level < min || level >= SILENT {
		return
	}

	prefix := "[" + levelNames[level] + "]"
	if l.useColor {
		prefix = levelColors[level] + prefix + resetColor
	}
	if module != "" {
		prefix += " [" + module + "]"
	}
	l.out.Printf("%s %s", prefix, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(module, format string, args ...any) { l.logf(DEBUG, module, format, args...) }
func (l *Logger) Info(module, format string, args ...any)  { l.logf(INFO, module, format, args...) }
func (l *Logger) Warn(module, format string, args ...any)  { l.logf(WARN, module, format, args...) }
func (l *Logger) Error(module, format string, args ...any) { l.logf(ERROR, module, format, args...) }

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Init installs the process-wide logger. Later calls replace it.
func Init(level Level, output io.Writer, useColor bool) {
	l := New(level, output, useColor)
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Debug logs through the default logger. Calls before Init are dropped.
func Debug(module, format string, args ...any) {
	if l := current(); l != nil {
		l.Debug(module, format, args...)
	}
}

// Info logs through the default logger.
func Info(module, format string, args ...any) {
	if l := current(); l != nil {
		l.Info(module, format, args...)
	}
}

// Warn logs through the default logger.
func Warn(module, format string, args ...any) {
	if l := current(); l != nil {
		l.Warn(module, format, args...)
	}
}

// Error logs through the default logger.
func Error(module, format string, args ...any) {
	if l := current(); l != nil {
		l.Error(module, format, args...)
	}
}

// ParseLevel maps a config string to a Level. Unknown strings return INFO
// together with an error.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "silent", "none":
		return SILENT, nil
	}
	return INFO, fmt.Errorf("invalid log level: %s", s)
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}
