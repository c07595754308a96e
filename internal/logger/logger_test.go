package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNew_WritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	l, closer, err := New(Options{Level: "debug", Output: &buf})
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	l.Debug("fetching session", "session_id", "s1")
	assert.Contains(t, buf.String(), "fetching session")
	assert.Contains(t, buf.String(), "s1")
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(Options{Level: "error", Output: &buf})
	require.NoError(t, err)

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widget.log")
	l, closer, err := New(Options{Level: "info", File: path})
	require.NoError(t, err)

	l.Info("written to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNew_LogFileError(t *testing.T) {
	_, _, err := New(Options{File: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}

func TestForConsole_DisabledDiscards(t *testing.T) {
	var buf bytes.Buffer
	l, closer, err := ForConsole(false, Options{Level: "debug", Output: &buf})
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	l.Error("should not appear")
	assert.Empty(t, buf.String())
}

func TestForConsole_EnabledWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := ForConsole(true, Options{Level: "info", Output: &buf, Prefix: "Gateway"})
	require.NoError(t, err)

	l.Warn("request failed", "operation", "send")
	assert.Contains(t, buf.String(), "Gateway")
	assert.Contains(t, buf.String(), "request failed")
}
