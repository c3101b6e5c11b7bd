package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("WARCHEST_API_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3001/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Storage.DataDir)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("WARCHEST_API_URL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
api:
  base_url: https://api.sowork.tw/api
  timeout: 5s
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.sowork.tw/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
gemini:
  api_key: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("WARCHEST_API_URL", "http://env.local/api")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Gemini.APIKey)
	assert.Equal(t, "http://env.local/api", cfg.API.BaseURL)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("WARCHEST_API_URL", "")

	cases := []struct{ name, body string }{
		{"bad timeout", "api:\n  timeout: soon\n"},
		{"bad level", "logging:\n  level: loud\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestAPITimeout_FallsBackOnUnset(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 30*time.Second, cfg.APITimeout())
}
