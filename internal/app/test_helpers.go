package app

import (
	"testing"

	"github.com/vk/lamphost/internal/config"
	"github.com/vk/lamphost/internal/plugin"
	"github.com/vk/lamphost/internal/testutil"
)

// SetupAppTest creates a debug-logging app over managers for system testing.
// Setting LAMPHOST_TEST_LOGS=true dumps the log when the test finishes.
func SetupAppTest(t *testing.T, cfg *config.Config, managers ...plugin.Manager) (*App, *testutil.SafeBuffer) {
	t.Helper()

	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"

	_, logBuffer := testutil.LogContext(t)
	return New(logBuffer, cfg, managers...), logBuffer
}
