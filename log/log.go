// Package log provides a thin wrapper around logrus with a familiar
// API (Infof, Errorf, ...) that picks up request and trip IDs from the
// context.
package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the global logger instance
var Logger = logrus.New()

// CustomFormatter renders entries as [<time>] [LEVEL] [file:line] <message>
type CustomFormatter struct {
	TimestampFormat string
}

// Format implements logrus.Formatter.
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	fmt.Fprintf(b, "[%s] ", entry.Time.Format(f.TimestampFormat))
	fmt.Fprintf(b, "[%s] ", strings.ToUpper(entry.Level.String()))

	// Walk the stack past logrus and this wrapper to find the real caller.
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	file := ""
	line := 0
	for {
		frame, more := frames.Next()
		skip := strings.Contains(frame.File, "github.com/sirupsen/logrus") ||
			strings.HasSuffix(frame.File, "log/log.go") ||
			strings.Contains(frame.File, "runtime/")
		if !skip {
			file = frame.File
			line = frame.Line
			break
		}
		if !more {
			break
		}
	}
	if file != "" {
		parts := strings.Split(file, "/")
		fmt.Fprintf(b, "[%s:%d] ", parts[len(parts)-1], line)
	}

	b.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		if requestID, ok := entry.Data["request_id"].(string); ok && requestID != "" {
			fmt.Fprintf(b, " [req:%s]", requestID)
		}
		if tripID, ok := entry.Data["trip_id"].(string); ok && tripID != "" {
			fmt.Fprintf(b, " [trip:%s]", tripID)
		}
		for key, value := range entry.Data {
			if key != "request_id" && key != "trip_id" {
				fmt.Fprintf(b, " %s=%v", key, value)
			}
		}
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// contextKey mirrors the keys used in the context package.
type contextKey int

const (
	requestIDKey contextKey = iota
	tripIDKey
)

func fromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func entryFor(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{
		"request_id": fromContext(ctx, requestIDKey),
	}
	if tripID := fromContext(ctx, tripIDKey); tripID != "" {
		fields["trip_id"] = tripID
	}
	return Logger.WithFields(fields)
}

// Infof logs formatted message at info level
func Infof(ctx context.Context, format string, args ...interface{}) {
	entryFor(ctx).Infof(format, args...)
}

// Info logs a message at info level
func Info(ctx context.Context, args ...interface{}) {
	entryFor(ctx).Info(args...)
}

// Debugf logs formatted message at debug level
func Debugf(ctx context.Context, format string, args ...interface{}) {
	entryFor(ctx).Debugf(format, args...)
}

// Warnf logs formatted message at warning level
func Warnf(ctx context.Context, format string, args ...interface{}) {
	entryFor(ctx).Warnf(format, args...)
}

// Warn logs a message at warning level
func Warn(ctx context.Context, args ...interface{}) {
	entryFor(ctx).Warn(args...)
}

// Errorf logs formatted message at error level
func Errorf(ctx context.Context, format string, args ...interface{}) {
	entryFor(ctx).Errorf(format, args...)
}

// Error logs a message at error level
func Error(ctx context.Context, args ...interface{}) {
	entryFor(ctx).Error(args...)
}

// Fatalf logs formatted message at fatal level and exits
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	entryFor(ctx).Fatalf(format, args...)
}

// SetLevel sets the global log level
func SetLevel(level logrus.Level) {
	Logger.SetLevel(level)
}

// SetOutput sets the global log output
func SetOutput(out io.Writer) {
	Logger.SetOutput(out)
}

// Init initializes the logger with default settings
func Init() {
	Logger.SetFormatter(&CustomFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})
	Logger.SetLevel(logrus.InfoLevel)
}

// WithFields creates a logger with predefined fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}
