package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger initializes the application logger based on configuration.
// An empty File logs to stderr instead of a rotated file.
func InitLogger(cfg *LoggingConfig) (*slog.Logger, error) {
	level := parseLogLevel(cfg.Level)

	var writer io.Writer
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		writer = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // days
			Compress:   cfg.Compress,
		}
	} else {
		writer = os.Stderr
	}

	logger := slog.New(newHandler(writer, cfg, level))
	slog.SetDefault(logger)

	return logger, nil
}

// newHandler picks the slog handler for the configured format
func newHandler(w io.Writer, cfg *LoggingConfig, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	if strings.ToLower(cfg.Format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}

	// Only color console output, never the rotated file
	if cfg.Color && cfg.File == "" {
		return NewColoredTextHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ColoredTextHandler renders records with slog.TextHandler and colors the level field
type ColoredTextHandler struct {
	handler slog.Handler
	writer  io.Writer
	buf     *bytes.Buffer
	mu      *sync.Mutex
}

// NewColoredTextHandler creates a handler that adds colors for console output
func NewColoredTextHandler(w io.Writer, opts *slog.HandlerOptions) *ColoredTextHandler {
	buf := &bytes.Buffer{}
	return &ColoredTextHandler{
		handler: slog.NewTextHandler(buf, opts),
		writer:  w,
		buf:     buf,
		mu:      &sync.Mutex{},
	}
}

// Handle implements slog.Handler
func (h *ColoredTextHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.handler.Handle(ctx, r); err != nil {
		return err
	}

	line := h.buf.String()
	levelField := "level=" + r.Level.String()
	colored := strings.Replace(line, levelField, "level="+colorize(r.Level, r.Level.String()), 1)

	_, err := io.WriteString(h.writer, colored)
	return err
}

// WithAttrs implements slog.Handler
func (h *ColoredTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ColoredTextHandler{handler: h.handler.WithAttrs(attrs), writer: h.writer, buf: h.buf, mu: h.mu}
}

// WithGroup implements slog.Handler
func (h *ColoredTextHandler) WithGroup(name string) slog.Handler {
	return &ColoredTextHandler{handler: h.handler.WithGroup(name), writer: h.writer, buf: h.buf, mu: h.mu}
}

// Enabled implements slog.Handler
func (h *ColoredTextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// colorize wraps s in the ANSI color for level
func colorize(level slog.Level, s string) string {
	var code string
	switch {
	case level >= slog.LevelError:
		code = "31" // red
	case level >= slog.LevelWarn:
		code = "33" // yellow
	case level >= slog.LevelInfo:
		code = "32" // green
	default:
		code = "90" // gray
	}
	return fmt.Sprintf("\033[%sm%s\033[0m", code, s)
}

// parseLogLevel parses a log level string
func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
