package appconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigRequiresPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigExpandsEnvironment(t *testing.T) {
	t.Setenv("TODO_DATA_FILE", "/var/lib/todos/data.json")
	path := writeConfig(t, `
host: todos.example.com
basePath: /api/
store:
  path: {{ .TODO_DATA_FILE }}
pulsar:
  url: pulsar://localhost:6650
  topicProducer: todo-events
metrics:
  enabled: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "todos.example.com", cfg.Host)
	assert.Equal(t, "/api", cfg.BasePath)
	assert.Equal(t, "/var/lib/todos/data.json", cfg.Store.Path)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, "pulsar://localhost:6650", cfg.Pulsar.URL)
	assert.Equal(t, "todo-events", cfg.Pulsar.TopicProducer)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/docs", cfg.DocsPath)
}

func TestLoadConfigUnknownBackend(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: redis\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestLoadConfigPostgresNeedsSource(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: postgres\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)

	path = writeConfig(t, "store:\n  backend: postgres\ndatabase:\n  secretName: todo-db\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfig(t, "store: [unterminated\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDefaultRateLimitBurst(t *testing.T) {
	cfg := &Config{RateLimit: RateLimitConfig{RequestsPerSecond: 0.5}}
	cfg.setDefaults()
	assert.Equal(t, 1, cfg.RateLimit.Burst)

	cfg = &Config{RateLimit: RateLimitConfig{RequestsPerSecond: 20}}
	cfg.setDefaults()
	assert.Equal(t, 20, cfg.RateLimit.Burst)

	assert.Equal(t, "data.json", Default().Store.Path)
}
