package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "json", &buf)

	log.Debug("hidden")
	log.WithField("run", "01H").WithError(errors.New("boom")).Warnf("settle %d", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "settle 3", entry["message"])
	assert.Equal(t, "01H", entry["run"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	New("debug", "json", &buf).WithFields(map[string]interface{}{"j": 3, "k": 6}).Debug("formed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.EqualValues(t, 3, entry["j"])
	assert.EqualValues(t, 6, entry["k"])
}

func TestLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	New("info", "console", &buf).Info("sweep done")
	assert.Contains(t, buf.String(), "sweep done")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestEnabled(t *testing.T) {
	log := New("warn", "json", &bytes.Buffer{})
	assert.False(t, log.Enabled("info"))
	assert.True(t, log.Enabled("error"))
}

func TestNop(t *testing.T) {
	Nop().Error("nothing")
	assert.False(t, Nop().Enabled("error"))
}
