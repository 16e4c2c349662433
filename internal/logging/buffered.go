package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// BufferedHandler captures records in memory as JSON lines. Tests install it
// with SetLogger(slog.New(h)) and inspect what was logged.
type BufferedHandler struct {
	level    slog.Leveler
	mu       *sync.Mutex
	buf      *bytes.Buffer
	preAttrs []slog.Attr
}

// NewBufferedHandler captures records at or above level.
func NewBufferedHandler(level slog.Leveler) *BufferedHandler {
	if level == nil {
		level = slog.LevelDebug
	}
	return &BufferedHandler{level: level, mu: &sync.Mutex{}, buf: &bytes.Buffer{}}
}

func (h *BufferedHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

type record struct {
	Level   string            `json:"level"`
	Message string            `json:"msg"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

func (h *BufferedHandler) Handle(_ context.Context, r slog.Record) error {
	rec := record{Level: r.Level.String(), Message: r.Message}
	add := func(a slog.Attr) bool {
		if rec.Attrs == nil {
			rec.Attrs = make(map[string]string)
		}
		rec.Attrs[a.Key] = a.Value.String()
		return true
	}
	for _, a := range h.preAttrs {
		add(a)
	}
	r.Attrs(add)

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.Write(data)
	h.buf.WriteByte('\n')
	return nil
}

func (h *BufferedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.preAttrs = append(append([]slog.Attr(nil), h.preAttrs...), attrs...)
	return &c
}

// WithGroup is a no-op; grouped attributes are flattened.
func (h *BufferedHandler) WithGroup(string) slog.Handler { return h }

// String returns everything captured so far.
func (h *BufferedHandler) String() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buf.String()
}

// Contains reports whether the captured output contains s.
func (h *BufferedHandler) Contains(s string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return bytes.Contains(h.buf.Bytes(), []byte(s))
}

func (h *BufferedHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.Reset()
}
