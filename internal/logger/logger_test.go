package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToWriter(t *testing.T) {
	orig := L
	t.Cleanup(func() { L = orig })

	var buf bytes.Buffer
	Init(Options{Enabled: true, Writer: &buf, Level: slog.LevelDebug})
	Debug("cache created", "name", "km-8")
	assert.Contains(t, buf.String(), "cache created")
	assert.Contains(t, buf.String(), "name=km-8")

	buf.Reset()
	Init(Options{Enabled: true, JSON: true, Writer: &buf})
	Info("kmalloc init ok")
	assert.Contains(t, buf.String(), `"msg":"kmalloc init ok"`)

	buf.Reset()
	Init(Options{Enabled: false})
	Error("dropped")
	assert.Empty(t, buf.String())
}

func TestOr(t *testing.T) {
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	require.Same(t, l, Or(l))
	require.Same(t, L, Or(nil))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
