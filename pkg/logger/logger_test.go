package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Run("should parse known levels", func(t *testing.T) {
		assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
		assert.Equal(t, zapcore.WarnLevel, parseLevel(" warn "))
	})

	t.Run("should default to info", func(t *testing.T) {
		assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
		assert.Equal(t, zapcore.InfoLevel, parseLevel("loud"))
	})
}

func TestNew(t *testing.T) {
	t.Run("should honour the configured level", func(t *testing.T) {
		l := New(Options{Level: "error"})

		assert.False(t, l.Desugar().Core().Enabled(zapcore.WarnLevel))
		assert.True(t, l.Desugar().Core().Enabled(zapcore.ErrorLevel))
	})

	t.Run("should accept a file sink", func(t *testing.T) {
		l := New(Options{Level: "info", File: filepath.Join(t.TempDir(), "moviehub.log")})

		assert.NotNil(t, l)
		l.Infow("written", "k", "v")
	})
}
