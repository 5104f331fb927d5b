package logging

import (
	"context"
	"errors"
	"log/slog"
)

// MultiHandler duplicates records across its children so the stdout JSON
// stream and the system_logs sink see the same events. A failing child does
// not stop delivery to the others.
type MultiHandler struct {
	children []slog.Handler
}

func NewMultiHandler(children ...slog.Handler) *MultiHandler {
	return &MultiHandler{children: children}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, c := range m.children {
		if c.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, c := range m.children {
		if !c.Enabled(ctx, record.Level) {
			continue
		}
		if err := c.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	children := make([]slog.Handler, len(m.children))
	for i, c := range m.children {
		children[i] = c.WithAttrs(attrs)
	}
	return &MultiHandler{children: children}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	children := make([]slog.Handler, len(m.children))
	for i, c := range m.children {
		children[i] = c.WithGroup(name)
	}
	return &MultiHandler{children: children}
}
