// Package log provides structured logging (slog) for the engine host.
// Records are rendered as plain text lines, matching the html_errors=0
// posture of the default configuration: diagnostics are meant for terminals
// and log files, not for the page output sink.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
)

// HostLogHandler implements slog.Handler, writing plain text lines to a
// single writer.
type HostLogHandler struct {
	opts  handlerConfig
	attrs []slog.Attr
	group string

	mu *sync.Mutex
	w  io.Writer
}

// HandlerOption configures the HostLogHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Level
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a new HostLogHandler writing to w.
func NewHandler(w io.Writer, opts ...HandlerOption) *HostLogHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &HostLogHandler{opts: cfg, w: w, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *HostLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// Handle writes one record as a single line: level, message, then key=value
// pairs in order.
func (h *HostLogHandler) Handle(_ context.Context, record slog.Record) error {
	line := fmt.Sprintf("[%s] %s", record.Level, record.Message)

	if h.opts.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		frame, _ := frames.Next()
		line += fmt.Sprintf(" source=%s:%d", frame.File, frame.Line)
	}

	// Stored attrs already carry the group prefix active when they were
	// added; only record attrs get the current group.
	for _, attr := range h.attrs {
		line += " " + formatAttr("", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		line += " " + formatAttr(h.group, attr)
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, line)
	return err
}

func formatAttr(group string, attr slog.Attr) string {
	key := attr.Key
	if group != "" {
		key = group + "." + key
	}
	return fmt.Sprintf("%s=%v", key, attr.Value.Resolve().Any())
}

// WithAttrs returns a new HostLogHandler that includes the given attributes
// on every record. The attributes keep the group prefix active at the time
// they are added.
func (h *HostLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandler := *h
	newHandler.attrs = append([]slog.Attr{}, h.attrs...)
	for _, attr := range attrs {
		if h.group != "" {
			attr.Key = h.group + "." + attr.Key
		}
		newHandler.attrs = append(newHandler.attrs, attr)
	}
	return &newHandler
}

// WithGroup returns a new HostLogHandler with the given group name
// prefixing attribute keys.
func (h *HostLogHandler) WithGroup(name string) slog.Handler {
	newHandler := *h
	if name != "" {
		if h.group != "" {
			newHandler.group = h.group + "." + name
		} else {
			newHandler.group = name
		}
	}
	return &newHandler
}
