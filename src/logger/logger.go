package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// -----------------------------------------------------------------------------

// Severity thresholds, lowest first.
const (
	levelDebug = iota
	levelInfo
	levelWarning
	levelError
	levelCritical
)

var levelNames = map[string]int{
	"DEBUG":    levelDebug,
	"INFO":     levelInfo,
	"WARNING":  levelWarning,
	"ERROR":    levelError,
	"CRITICAL": levelCritical,
}

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name   string
	logger *log.Logger
	level  int
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. An unknown or empty level defaults
// to INFO.
func NewLogger(level string, name string) *Logger {
	lv, ok := levelNames[strings.ToUpper(level)]
	if !ok {
		lv = levelInfo
	}
	return &Logger{
		name:   name,
		logger: log.New(os.Stdout, "", log.LstdFlags),
		level:  lv,
	}
}

// -----------------------------------------------------------------------------

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(levelDebug, "DEBUG", format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(levelInfo, "INFO", format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs warning messages
func (l *Logger) Warning(format string, args ...interface{}) {
	l.write(levelWarning, "WARNING", format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(levelError, "ERROR", format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.write(levelCritical, "CRITICAL", format, args...)
	os.Exit(1)
}

// -----------------------------------------------------------------------------

func (l *Logger) write(lv int, tag string, format string, args ...interface{}) {
	if lv < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] %s: %s", l.name, tag, msg)
}
