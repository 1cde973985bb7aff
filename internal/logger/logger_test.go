package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"", FormatJSON, FormatConsole} {
		l, err := New("warn", format)
		require.NoError(t, err, format)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New("loud", FormatJSON)
	assert.ErrorContains(t, err, "parsing log level")

	_, err = New("info", "xml")
	assert.ErrorContains(t, err, "unknown log format")
}

func TestNamed_NilBase(t *testing.T) {
	l := Named(nil, "rates")
	require.NotNil(t, l)
	l.Info("discarded")
}

func TestMust(t *testing.T) {
	assert.Panics(t, func() { Must(New("loud", "")) })
}
