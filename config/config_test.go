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

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9090
  timeout: 5s
  allowed_origins: ["http://localhost:3000"]
log:
  level: debug
  format: console
predictor:
  threshold: 40
  watch: false
model:
  estimators: 50
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 40.0, cfg.Predictor.Threshold)
	assert.False(t, cfg.Predictor.Watch)
	assert.Equal(t, 50, cfg.Model.Estimators)
	// untouched keys keep their defaults
	assert.Equal(t, "models/forest.msgpack", cfg.Model.ModelPath)
	assert.Equal(t, 1024, cfg.Predictor.CacheSize)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "http:\n  port: 9090\n")
	t.Setenv("AYUR_HTTP_PORT", "7070")
	t.Setenv("AYUR_PREDICTOR_THRESHOLD", "35.5")
	t.Setenv("AYUR_MODEL_MODEL_PATH", "/srv/models/forest.msgpack")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.HTTP.Port)
	assert.Equal(t, 35.5, cfg.Predictor.Threshold)
	assert.Equal(t, "/srv/models/forest.msgpack", cfg.Model.ModelPath)
}

func TestLoadIgnoresUnprefixedEnv(t *testing.T) {
	t.Setenv("PATH", "/usr/bin:/bin")
	t.Setenv("PORT", "5555")
	t.Setenv("LEVEL", "debug")
	t.Setenv("TYPE", "decision_tree")
	t.Setenv("TIMEOUT", "1s")
	t.Setenv("THRESHOLD", "90")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadEnvSplitWords(t *testing.T) {
	t.Setenv("AYUR_DATABASE_PATH", "/var/lib/ayur/history.db")
	t.Setenv("AYUR_CATALOG_PATH", "/etc/ayur/catalog.yaml")
	t.Setenv("AYUR_LOG_MAX_SIZE_MB", "10")
	t.Setenv("AYUR_HTTP_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ayur/history.db", cfg.Database.Path)
	assert.Equal(t, "/etc/ayur/catalog.yaml", cfg.Catalog.Path)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowedOrigins)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "http: [not a map"))
	assert.Error(t, err)

	tests := []struct {
		name string
		body string
	}{
		{name: "port", body: "http:\n  port: 70000\n"},
		{name: "threshold", body: "predictor:\n  threshold: 120\n"},
		{name: "test ratio", body: "model:\n  test_ratio: 1.5\n"},
		{name: "model type", body: "model:\n  type: svm\n"},
		{name: "model path", body: "model:\n  model_path: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
