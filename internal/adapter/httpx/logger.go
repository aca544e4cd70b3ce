package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"
)

// Fields carries structured key/value context for a log line.
type Fields map[string]interface{}

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// ParseLogLevel maps a config string to a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// LogFormat defines the output format for logs.
type LogFormat int

const (
	// LogFormatHuman is the readable format for interactive terminals.
	LogFormatHuman LogFormat = iota
	// LogFormatJSON is the machine-parsable format for CI logs.
	LogFormatJSON
)

// Logger writes leveled, structured log lines. Credential values must be
// redacted by the caller before they reach a Fields map.
type Logger struct {
	level  LogLevel
	format LogFormat
	out    *log.Logger
}

// NewLogger creates a logger writing to stderr.
func NewLogger(level LogLevel, format LogFormat) *Logger {
	return NewLoggerTo(os.Stderr, level, format)
}

// NewLoggerTo creates a logger writing to the given sink. Tests use this
// to capture output.
func NewLoggerTo(w io.Writer, level LogLevel, format LogFormat) *Logger {
	return &Logger{
		level:  level,
		format: format,
		out:    log.New(w, "", log.LstdFlags),
	}
}

// Debug logs diagnostic detail.
func (l *Logger) Debug(ctx context.Context, msg string, fields Fields) {
	l.emit(LogLevelDebug, "DEBUG", msg, fields)
}

// Info logs normal progress.
func (l *Logger) Info(ctx context.Context, msg string, fields Fields) {
	l.emit(LogLevelInfo, "INFO", msg, fields)
}

// Warn logs degraded-but-continuing conditions.
func (l *Logger) Warn(ctx context.Context, msg string, fields Fields) {
	l.emit(LogLevelWarn, "WARN", msg, fields)
}

// Error logs failures.
func (l *Logger) Error(ctx context.Context, msg string, fields Fields) {
	l.emit(LogLevelError, "ERROR", msg, fields)
}

func (l *Logger) emit(level LogLevel, label, msg string, fields Fields) {
	if l == nil || level < l.level {
		return
	}

	if l.format == LogFormatJSON {
		entry := map[string]interface{}{
			"level":     strings.ToLower(label),
			"message":   msg,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			l.out.Printf("[%s] %s (unserializable fields: %v)", label, msg, err)
			return
		}
		l.out.Print(string(data))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", label, msg)
	for _, k := range sortedKeys(fields) {
		fmt.Fprintf(&sb, " %s=%v", k, fields[k])
	}
	l.out.Print(sb.String())
}

func sortedKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
