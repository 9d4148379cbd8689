package logging

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ContextProvider is a function that returns dynamic context attributes.
type ContextProvider func() []slog.Attr

// ContextHandler wraps another handler and injects dynamic context attributes.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

// NewContextHandler creates a handler that adds dynamic context to each record.
func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{
		inner:    inner,
		provider: provider,
	}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		r.AddAttrs(h.provider()...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{
		inner:    h.inner.WithAttrs(attrs),
		provider: h.provider,
	}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{
		inner:    h.inner.WithGroup(name),
		provider: h.provider,
	}
}

// Session tracks the attributes stamped on every record of a run: the
// session id, the loaded map and the current frame number. A nil *Session
// ignores updates.
type Session struct {
	id string

	mu      sync.RWMutex
	mapName string

	frame atomic.Uint64
}

func NewSession(id string) *Session {
	return &Session{id: id}
}

func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

func (s *Session) SetMap(name string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.mapName = name
	s.mu.Unlock()
}

func (s *Session) SetFrame(n uint64) {
	if s == nil {
		return
	}
	s.frame.Store(n)
}

// Attrs is a ContextProvider.
func (s *Session) Attrs() []slog.Attr {
	s.mu.RLock()
	mapName := s.mapName
	s.mu.RUnlock()

	attrs := []slog.Attr{slog.String("session", s.id)}
	if mapName != "" {
		attrs = append(attrs, slog.String("map", mapName))
	}
	if f := s.frame.Load(); f > 0 {
		attrs = append(attrs, slog.Uint64("frame", f))
	}
	return attrs
}
