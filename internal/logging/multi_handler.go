package logging

import (
	"context"
	"log/slog"
)

// MultiHandler duplicates every record across a set of sinks, so the
// stdout JSON stream and the async DB handler share one slog front.
type MultiHandler struct {
	sinks []slog.Handler
}

func NewMultiHandler(sinks ...slog.Handler) *MultiHandler {
	return &MultiHandler{sinks: sinks}
}

// Enabled reports true when any sink would accept the level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range m.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle forwards the record to every sink that accepts its level. The
// first sink error stops the fan-out.
func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, s := range m.sinks {
		if !s.Enabled(ctx, record.Level) {
			continue
		}
		if err := s.Handle(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sinks := make([]slog.Handler, len(m.sinks))
	for i, s := range m.sinks {
		sinks[i] = s.WithAttrs(attrs)
	}
	return &MultiHandler{sinks: sinks}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	sinks := make([]slog.Handler, len(m.sinks))
	for i, s := range m.sinks {
		sinks[i] = s.WithGroup(name)
	}
	return &MultiHandler{sinks: sinks}
}
