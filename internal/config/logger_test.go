package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	t.Setenv("DEBUG", "")

	var buf bytes.Buffer
	log := NewLogger(&Config{Environment: "production", Version: "1.2.3"}, &buf)

	log.Debugw("hidden")
	log.Infow("listed entries", "count", 2)
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "listed entries", line["msg"])
	assert.Equal(t, "1.2.3", line["version"])
	assert.EqualValues(t, 2, line["count"])
}

func TestNewLoggerDebug(t *testing.T) {
	t.Setenv("DEBUG", "")

	var buf bytes.Buffer
	log := NewLogger(&Config{Environment: "development", Debug: true}, &buf)
	log.Debugw("discarding stale list response", "seq", 1)
	require.NoError(t, log.Sync())
	assert.Contains(t, buf.String(), "discarding stale list response")

	buf.Reset()
	t.Setenv("DEBUG", "TRUE")
	log = NewLogger(&Config{Environment: "production"}, &buf)
	log.Debug("mount")
	require.NoError(t, log.Sync())
	assert.Contains(t, buf.String(), `"msg":"mount"`)
}
