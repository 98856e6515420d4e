// ABOUTME: Tests for logger construction
// ABOUTME: Checks level parsing and rejection of unknown levels
package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		logger, err := New("warn", format)
		require.NoError(t, err)

		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel), format)
		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel), format)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("loud", "console")
	assert.ErrorContains(t, err, "invalid log level")
}
