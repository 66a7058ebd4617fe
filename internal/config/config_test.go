package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesDurations(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	path := writeConfig(t, `
openai:
  timeout: 45s
browser:
  navigation_timeout: 10s
  settle_delay: 2s
media:
  download_timeout: 3m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.OpenAI.Timeout.Std())
	assert.Equal(t, 10*time.Second, cfg.Browser.NavigationTimeout.Std())
	assert.Equal(t, 2*time.Second, cfg.Browser.SettleDelay.Std())
	assert.Equal(t, 3*time.Minute, cfg.Media.DownloadTimeout.Std())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	path := writeConfig(t, "openai:\n  timeout: soon\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.ChatModel)
	assert.Equal(t, "whisper-1", cfg.OpenAI.TranscriptionModel)
	assert.Equal(t, 120*time.Second, cfg.Media.DownloadTimeout.Std())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")

	path := writeConfig(t, "openai:\n  api_key: file-key\n  base_url: https://api.openai.com/v1\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.OpenAI.BaseURL)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
