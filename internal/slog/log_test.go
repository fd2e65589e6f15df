package slog

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger, err := NewLogger(buf, "", false)
		require.NoError(t, err)

		logger.Error().Msg("hello")
		assert.Empty(t, buf.String())
	})

	t.Run("level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger, err := NewLogger(buf, "info", false)
		require.NoError(t, err)

		logger.Debug().Msg("hidden")
		child := ChildLoggerForSource(logger, "codegen")
		child.Info().Msg("visible")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "visible")
		assert.Contains(t, buf.String(), "src=codegen")
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := NewLogger(&bytes.Buffer{}, "loud", false)
		assert.Error(t, err)
	})
}

func TestChildLoggerForSource(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := ChildLoggerForSource(zerolog.New(buf), "vm")
	logger.Info().Msg("run")

	assert.JSONEq(t, `{"lvl":"info","src":"vm","msg":"run"}`, buf.String())
}
