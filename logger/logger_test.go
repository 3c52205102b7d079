package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ayurpredict/config"
)

func TestNew(t *testing.T) {
	t.Run("creates logger with JSON format", func(t *testing.T) {
		logger, err := New(config.LogConfig{Level: "info", Format: "json"})

		assert.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("creates logger with console format", func(t *testing.T) {
		logger, err := New(config.LogConfig{Level: "debug", Format: "console"})

		assert.NoError(t, err)
		assert.True(t, logger.Core().Enabled(-1))
	})

	t.Run("defaults to info level for invalid level", func(t *testing.T) {
		logger, err := New(config.LogConfig{Level: "invalid"})

		assert.NoError(t, err)
		assert.False(t, logger.Core().Enabled(-1))
		assert.True(t, logger.Core().Enabled(0))
	})

	t.Run("writes to rotated file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "service.log")
		logger, err := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1})
		require.NoError(t, err)

		logger.Info("model loaded")
		_ = logger.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "model loaded")
	})
}
