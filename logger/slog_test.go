package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlog_JSONRecord(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogWithOptions(SlogOptions{Level: InfoLevel, Format: FormatJSON, Output: &buf})

	l.Info("worker started", "port", "/dev/ttyUSB0")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "worker started", rec["msg"])
	assert.Equal(t, "/dev/ttyUSB0", rec["port"])
	assert.Contains(t, rec, "ts")
	assert.NotContains(t, rec, "time")
}

func TestSlog_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogWithOptions(SlogOptions{Level: WarnLevel, Format: FormatJSON, Output: &buf})

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.NotZero(t, buf.Len())
	assert.Equal(t, WarnLevel, l.Level())

	buf.Reset()
	l.SetLevel(DebugLevel)
	l.Debug("now shown")
	assert.NotZero(t, buf.Len())
}

func TestSlog_WithSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := NewSlogWithOptions(SlogOptions{Level: ErrorLevel, Format: FormatJSON, Output: &buf})
	child := parent.With("component", "worker")

	child.Info("hidden")
	assert.Zero(t, buf.Len())

	parent.SetLevel(InfoLevel)
	child.Info("shown")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "worker", rec["component"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"INFO", InfoLevel, false},
		{"", InfoLevel, false},
		{"warning", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"fatal", FatalLevel, false},
		{"loud", InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}
