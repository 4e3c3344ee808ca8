package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Config logger configuration.
type Config struct {
	Level     string // debug, info, warn, error
	Format    string // json or text
	Output    string // stdout, stderr or a file path
	Component string
}

// Logger wraps slog.Logger and owns its output.
type Logger struct {
	*slog.Logger
	output io.Writer
}

// New creates a logger. An output file that cannot be opened falls back to
// stdout.
func New(config Config) *Logger {
	var output io.Writer
	switch config.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		if file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666); err == nil {
			output = file
		} else {
			output = os.Stdout
		}
	}
	return NewWithWriter(config, output)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(config Config, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(config.Level)}

	var handler slog.Handler
	if strings.EqualFold(config.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	if config.Component != "" {
		l = l.With("component", config.Component)
	}
	return &Logger{Logger: l, output: w}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	return NewWithWriter(Config{Level: "error"}, io.Discard)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a logger tagged with component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component), output: l.output}
}

// GinMiddleware logs every request with a request id, echoed back in the
// X-Request-ID header.
func (l *Logger) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		}

		switch {
		case status >= 500:
			l.Error("HTTP request completed", args...)
		case status >= 400:
			l.Warn("HTTP request completed", args...)
		default:
			l.Info("HTTP request completed", args...)
		}
	}
}

// Close closes the output when it is a file.
func (l *Logger) Close() error {
	if l.output == os.Stdout || l.output == os.Stderr {
		return nil
	}
	if closer, ok := l.output.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
