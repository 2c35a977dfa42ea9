package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("generated model types", "count", 3)
	logger.Warn("unmapped type", "type", "geometry")

	out := buf.String()
	assert.NotContains(t, out, "generated model types", "info record should be filtered")
	assert.Contains(t, out, "type=geometry")
}

func TestSetupCreatesDatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logger, err := Setup("debug", dir)
	require.NoError(t, err)
	logger.Debug("hello")

	path := filepath.Join(dir, "modelts-"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading log file")
	assert.Contains(t, string(data), "msg=hello")
}
