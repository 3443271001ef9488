package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileYAMLOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: production
llm:
  engine: oai_http
  api_key: sk-test
  model: test-model
  timeout: 12s
  max_retries: 2
curation:
  max_concurrency: 2
  batch_deadline: 45s
`), 0o600))

	cfg := Default()
	require.NoError(t, LoadFile(path, cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.Equal(t, 12*time.Second, cfg.LLM.Timeout.Duration)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Equal(t, 2, cfg.Curation.MaxConcurrency)
	assert.Equal(t, 45*time.Second, cfg.Curation.BatchDeadline.Duration)
	// Untouched defaults survive.
	assert.Equal(t, 15, cfg.Curation.SearchLimit)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadFileJSONDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"http":{"shutdown_timeout":"3s","idle_timeout":1000000000}}`), 0o600))

	cfg := Default()
	require.NoError(t, LoadFile(path, cfg))
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout.Duration)
	assert.Equal(t, time.Second, cfg.HTTP.IdleTimeout.Duration)
}

func TestValidateWithoutKeyDisablesUpstream(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, EngineDisabled, cfg.LLM.Engine)
}

func TestValidateRejectsUnknownEngine(t *testing.T) {
	cfg := Default()
	cfg.LLM.Engine = "carrier-pigeon"
	assert.Error(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LANGBRIDGE_CONFIG_PATH", "")
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "env-model")
	t.Setenv("CURATION_ITEM_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, EngineOAIHTTP, cfg.LLM.Engine)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.Equal(t, 5*time.Second, cfg.Curation.ItemTimeout.Duration)
}
