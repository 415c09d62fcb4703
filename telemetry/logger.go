// Package telemetry provides the module's logging and OpenTelemetry
// tracing/metrics implementations of the core.Logger/core.Telemetry
// interfaces.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is the logging verbosity threshold, ordered TRACE < DEBUG < INFO
// < WARN < ERROR. The CLI's -v flag count maps directly onto it: 0→Warn,
// 1→Info, 2→Debug, 3+→Trace.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// LevelFromVerbosity maps a repeated -v flag count onto a Level.
func LevelFromVerbosity(v int) Level {
	switch {
	case v <= 0:
		return LevelWarn
	case v == 1:
		return LevelInfo
	case v == 2:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// Logger implements core.Logger with leveled, structured output: JSON
// under Kubernetes or when explicitly requested, human text otherwise.
// Error logs are rate-limited to avoid flooding when a strategy loop
// fails repeatedly.
type Logger struct {
	level       Level
	serviceName string
	format      string
	output      io.Writer
	mu          sync.RWMutex

	errorLimiter *RateLimiter
}

var (
	defaultLogger     *Logger
	defaultLoggerOnce sync.Once
)

// NewLogger creates a logger for serviceName. Format auto-detects JSON
// under Kubernetes (KUBERNETES_SERVICE_HOST set), text otherwise;
// OPTILLM_LOG_FORMAT overrides explicitly.
func NewLogger(serviceName string, level Level) *Logger {
	format := "text"
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		format = "json"
	}
	if f := os.Getenv("OPTILLM_LOG_FORMAT"); f != "" {
		format = f
	}
	return &Logger{
		level:        level,
		serviceName:  serviceName,
		format:       format,
		output:       os.Stdout,
		errorLimiter: NewRateLimiter(1 * time.Second),
	}
}

// Default returns the process-wide default logger, built once from the
// OPTILLM_LOG_LEVEL environment variable (defaulting to Warn).
func Default() *Logger {
	defaultLoggerOnce.Do(func() {
		level := LevelWarn
		switch strings.ToUpper(os.Getenv("OPTILLM_LOG_LEVEL")) {
		case "TRACE":
			level = LevelTrace
		case "DEBUG":
			level = LevelDebug
		case "INFO":
			level = LevelInfo
		case "ERROR":
			level = LevelError
		}
		defaultLogger = NewLogger("optillm", level)
	})
	return defaultLogger
}

func (l *Logger) Trace(msg string, fields map[string]interface{}) { l.log(LevelTrace, msg, fields) }
func (l *Logger) Debug(msg string, fields map[string]interface{}) { l.log(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields map[string]interface{})  { l.log(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields map[string]interface{})  { l.log(LevelWarn, msg, fields) }

func (l *Logger) Error(msg string, fields map[string]interface{}) {
	if l.errorLimiter != nil && !l.errorLimiter.Allow() {
		return
	}
	l.log(LevelError, msg, fields)
}

func (l *Logger) log(level Level, msg string, fields map[string]interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.level {
		return
	}

	timestamp := time.Now().Format(time.RFC3339)
	if l.format == "json" {
		l.logJSON(timestamp, level, msg, fields)
	} else {
		l.logText(timestamp, level, msg, fields)
	}
}

func (l *Logger) logJSON(timestamp string, level Level, msg string, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"timestamp": timestamp,
		"level":     level.String(),
		"service":   l.serviceName,
		"message":   msg,
	}
	for k, v := range fields {
		if k != "timestamp" && k != "level" && k != "service" && k != "message" {
			entry[k] = v
		}
	}
	if data, err := json.Marshal(entry); err == nil {
		fmt.Fprintln(l.output, string(data))
	}
}

func (l *Logger) logText(timestamp string, level Level, msg string, fields map[string]interface{}) {
	var b strings.Builder
	if len(fields) > 0 {
		b.WriteString(" ")
		for k, v := range fields {
			fmt.Fprintf(&b, "%s=%v ", k, v)
		}
	}
	fmt.Fprintf(l.output, "%s [%s] [%s] %s%s\n", timestamp, level, l.serviceName, msg, b.String())
}

// SetLevel dynamically updates the log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput changes the output writer; useful for tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}
