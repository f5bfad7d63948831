package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcadeworks/arena/internal/config"
)

func TestNewLoggerJSON(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("test message")
}

func TestNewLoggerConsole(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewLoggerBadLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing log level")
}

func TestNewLoggerBadFormat(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", Format: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format")
}
