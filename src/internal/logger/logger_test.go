package logger

import (
	"os"
	"path/filepath"
	"testing"

	"showroom-presence-svc/src/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	})

	t.Run("json output with level", func(t *testing.T) {
		cfg := &config.Configuration{Logs: config.LogsSettings{Level: "debug", EnableJSONOutput: true}}

		Init(cfg)

		assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
		assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		cfg := &config.Configuration{Logs: config.LogsSettings{Level: "loud"}}

		Init(cfg)

		assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, logrus.StandardLogger().Formatter)
	})

	t.Run("writes to log file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "logs")
		cfg := &config.Configuration{Logs: config.LogsSettings{Level: "info", Path: dir}}

		Init(cfg)
		logrus.Info("hello from test")

		data, err := os.ReadFile(filepath.Join(dir, logFileName))
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello from test")
	})
}
