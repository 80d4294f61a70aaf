package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{" warn ", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"chatty", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn"}, &buf)
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("cannot read directory", zap.String("dir", "/x"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "cannot read directory")
	assert.Contains(t, out, `"dir": "/x"`)
}

func TestNew_InvalidLevelStillUsable(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "chatty"}, &buf)
	assert.Error(t, err)
	require.NotNil(t, logger)

	logger.Info("still logs")
	assert.Contains(t, buf.String(), "still logs")
}

func TestNew_TeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "claude-idr.log")
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", File: path}, &buf)
	require.NoError(t, err)

	logger.Debug("selected session", zap.String("path", "/s.jsonl"))
	require.NoError(t, logger.Sync())

	assert.Contains(t, buf.String(), "selected session")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "selected session", entry["msg"])
	assert.Equal(t, "/s.jsonl", entry["path"])
	assert.Equal(t, "debug", entry["level"])
	assert.Contains(t, entry, "ts")
}

func TestNew_UncreatableLogDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	var buf bytes.Buffer
	logger, err := New(Config{File: filepath.Join(blocker, "sub", "x.log")}, &buf)
	assert.Error(t, err)
	require.NotNil(t, logger)
	logger.Info("console only")
	assert.Contains(t, buf.String(), "console only")
}
