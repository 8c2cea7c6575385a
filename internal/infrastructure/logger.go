package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"datawash/internal/config"
)

// ctxKey is a private type for context keys defined in this package.
type ctxKey int

const traceIDKey ctxKey = iota

var (
	globalMu      sync.Mutex
	globalLogger  *slog.Logger
	globalLogFile *os.File
)

// InitializeLogger builds the process-wide slog logger from configuration
// and installs it as the slog default. Repeat calls return the logger from
// the first successful call; a failed call can be retried.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger != nil {
		return globalLogger, nil
	}

	logger, file, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	globalLogger = logger
	globalLogFile = file
	slog.SetDefault(logger)
	return logger, nil
}

// GetLogger returns the process logger, or slog's default when
// InitializeLogger has not run yet.
func GetLogger() *slog.Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// newLogger builds the handler chain for the configured sink and format.
// The returned file is non-nil only for file-backed sinks.
func newLogger(cfg config.LoggingConfig) (*slog.Logger, *os.File, error) {
	sink, file, err := openSink(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     parseLevel(cfg.Level),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(sink, opts)
	} else {
		handler = slog.NewJSONHandler(sink, opts)
	}

	return slog.New(&traceHandler{inner: handler}), file, nil
}

// openSink resolves the configured output to a writer. "file" logs to the
// configured path, "both" mirrors records to stdout, anything else is
// stdout only.
func openSink(cfg config.LoggingConfig) (io.Writer, *os.File, error) {
	switch strings.ToLower(cfg.Output) {
	case "file":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return file, file, nil
	case "both":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return io.MultiWriter(os.Stdout, file), file, nil
	default:
		return os.Stdout, nil, nil
	}
}

// traceHandler decorates every record with the trace_id stored in the
// context, so call sites never thread it by hand. Records logged inside an
// OpenTelemetry span but outside a request fall back to the span's trace ID.
type traceHandler struct {
	inner slog.Handler
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	} else if spanTrace := TraceIDFromContext(ctx); spanTrace != "" {
		r.AddAttrs(slog.String("trace_id", spanTrace))
	}
	return h.inner.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{inner: h.inner.WithGroup(name)}
}

// parseLevel maps a config string to a slog level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTraceID stores a trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace ID stored by WithTraceID, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey).(string)
	return traceID
}

// CloseLogFile closes the file sink if one is open. Called during
// graceful shutdown.
func CloseLogFile() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogFile == nil {
		return nil
	}
	err := globalLogFile.Close()
	globalLogFile = nil
	return err
}

// ResetLoggerForTesting clears the global logger so each test can install
// its own configuration.
func ResetLoggerForTesting() {
	CloseLogFile()

	globalMu.Lock()
	globalLogger = nil
	globalMu.Unlock()
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
