package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Parse("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", c.APIBaseURL)
	assert.Equal(t, 3000, c.Port)
	assert.False(t, c.Debug)
	assert.Equal(t, "Guestbook", c.Title)
	assert.Equal(t, "en-US", c.Locale)
	assert.True(t, c.MCP)
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
}

func TestParseFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "guestbook.yaml")
	err := os.WriteFile(file, []byte("api_base_url: https://guestbook.example.com/api/\nport: 8081\nlocale: ko-KR\n"), 0o644)
	require.NoError(t, err)

	t.Setenv("GUESTBOOK_PORT", "9090")
	t.Setenv("GUESTBOOK_DEBUG", "true")

	c, err := Parse(file)
	require.NoError(t, err)

	assert.Equal(t, "https://guestbook.example.com/api", c.APIBaseURL)
	assert.Equal(t, 9090, c.Port)
	assert.True(t, c.Debug)
	assert.Equal(t, "ko-KR", c.Locale)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"relative base url", map[string]string{"GUESTBOOK_API_BASE_URL": "/api"}},
		{"ftp base url", map[string]string{"GUESTBOOK_API_BASE_URL": "ftp://example.com"}},
		{"port", map[string]string{"GUESTBOOK_PORT": "70000"}},
		{"locale", map[string]string{"GUESTBOOK_LOCALE": "not a locale!"}},
		{"ttl", map[string]string{"GUESTBOOK_SESSION_TTL": "0s"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range test.env {
				t.Setenv(k, v)
			}

			_, err := Parse("")
			require.Error(t, err)
		})
	}
}

func TestParseMissingExplicitFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
