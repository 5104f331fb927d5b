package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingHandler struct {
	level slog.Level
	count int
}

func (h *countingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }
func (h *countingHandler) Handle(context.Context, slog.Record) error    { h.count++; return nil }
func (h *countingHandler) WithAttrs([]slog.Attr) slog.Handler           { return h }
func (h *countingHandler) WithGroup(string) slog.Handler                { return h }

func TestMultiHandlerFansOutByLevel(t *testing.T) {
	stdout := &countingHandler{level: slog.LevelInfo}
	sink := &countingHandler{level: slog.LevelError}
	logger := slog.New(NewMultiHandler(stdout, sink))

	logger.Info("request served")
	logger.Error("request failed")

	assert.Equal(t, 2, stdout.count)
	assert.Equal(t, 1, sink.count)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}
