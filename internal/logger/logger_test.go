package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	log := New()
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("ledger_id", "abc").Msg("test message")

	out := buf.String()
	assert.Contains(t, out, "test message")
	assert.Contains(t, out, "ledger_id")
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		env  string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("level "+tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			assert.Equal(t, tt.want, levelFromEnv())
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf).Level(zerolog.WarnLevel)

	log.Info().Msg("dropped")
	log.Warn().Msg("kept")

	assert.False(t, strings.Contains(buf.String(), "dropped"))
	assert.Contains(t, buf.String(), "kept")
}
