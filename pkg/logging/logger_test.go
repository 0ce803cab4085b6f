package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New("yootools", "debug", &buf)
		require.NoError(t, err)

		logger.Debug().Str("file", "a.bytes").Msg("decoded")
		out := buf.String()
		assert.Contains(t, out, "decoded")
		assert.Contains(t, out, "app=yootools")
		assert.Contains(t, out, "file=a.bytes")
	})

	t.Run("Level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New("yootools", "WARN", &buf)
		require.NoError(t, err)

		logger.Info().Msg("hidden")
		logger.Warn().Msg("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("DefaultLevel", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := New("yootools", "", &buf)
		require.NoError(t, err)

		logger.Debug().Msg("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		_, err := New("yootools", "loud", nil)
		assert.Error(t, err)
	})
}
