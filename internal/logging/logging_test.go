package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, NewDefaultConfig().Validate())
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Format = "xml"
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Level = "loud"
		require.Error(t, cfg.Validate())
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("builds from defaults", func(t *testing.T) {
		logger, err := NewLogger(NewDefaultConfig())
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("console format", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Format = "console"
		cfg.Level = "debug"
		logger, err := NewLogger(cfg)
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(-1)) // debug enabled
	})

	t.Run("invalid config fails", func(t *testing.T) {
		_, err := NewLogger(Config{Level: "info", Format: "xml"})
		require.Error(t, err)
	})
}
