// Package logging provides the structured, leveled log handler used
// across this module's components (the graph builder, the OSM readers,
// the live graph's tile fetcher) to report warning-level, non-fatal
// conditions and operational progress.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// LogHandler wraps a slog.TextHandler with a mutex so concurrent writers
// (the live graph's tile fetcher may log from more than one in-flight
// request) never interleave a single record's output.
type LogHandler struct {
	h     slog.Handler
	mu    *sync.Mutex
	out   io.Writer
	attrs []slog.Attr
}

// NewLogHandler returns a LogHandler writing text-formatted records to o.
func NewLogHandler(o io.Writer, opts *slog.HandlerOptions) *LogHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &LogHandler{
		out: o,
		h: slog.NewTextHandler(o, &slog.HandlerOptions{
			Level:       opts.Level,
			AddSource:   opts.AddSource,
			ReplaceAttr: opts.ReplaceAttr,
		}),
		mu: &sync.Mutex{},
	}
}

// NewLogger returns a *slog.Logger backed by a LogHandler, the form every
// WithLogger option across this module's packages expects.
func NewLogger(o io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	return slog.New(NewLogHandler(o, opts))
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &LogHandler{h: h.h.WithAttrs(attrs), out: h.out, mu: h.mu, attrs: merged}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{h: h.h.WithGroup(name), out: h.out, mu: h.mu, attrs: h.attrs}
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	formattedTime := r.Time.Format("2006/01/02 15:04:05")

	strs := []string{formattedTime, r.Level.String(), r.Message}

	for _, a := range h.attrs {
		strs = append(strs, a.Key+"="+a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		strs = append(strs, a.Key+"="+a.Value.String())
		return true
	})
	strs = append(strs, "\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.out.Write([]byte(strings.Join(strs, " ")))
	return err
}
