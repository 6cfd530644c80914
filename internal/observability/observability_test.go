package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/memeforge/memeforge/internal/config"
)

func TestInitCLILogger(t *testing.T) {
	InitCLILogger("memeforge-test", true)
	require.NotNil(t, CLILogger)
	CLILogger.Debug("cli logger ready", zap.String("test", "value"))
}

func TestNewServerLoggerProfiles(t *testing.T) {
	for _, profile := range []string{"structured", "SIMPLE", ""} {
		logger, err := NewServerLogger("memeforge-test", config.LoggingConfig{Level: "debug", Profile: profile}, "memeforge")
		require.NoError(t, err, profile)
		logger.Info("server logger ready", zap.String("profile", profile))
	}
}

func TestLoggerPrefersServer(t *testing.T) {
	prevCLI, prevServer := CLILogger, ServerLogger
	t.Cleanup(func() { CLILogger, ServerLogger = prevCLI, prevServer })

	InitCLILogger("memeforge-test", false)
	ServerLogger = nil
	assert.Same(t, CLILogger, Logger())

	InitServerLogger("memeforge-test", config.LoggingConfig{Level: "info"}, "")
	assert.Same(t, ServerLogger, Logger())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "WARN", parseLogLevel("warning"))
	assert.Equal(t, "TRACE", parseLogLevel(" Trace "))
	assert.Equal(t, "INFO", parseLogLevel("loud"))
}

func TestResolvePort(t *testing.T) {
	port, err := resolvePort("[::]:9191")
	require.NoError(t, err)
	assert.Equal(t, 9191, port)

	_, err = resolvePort("nonsense")
	assert.Error(t, err)
}
