package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("Should return logger from context when present", func(t *testing.T) {
		expected := NewLogger(TestConfig())
		ctx := ContextWithLogger(context.Background(), expected)

		actual := FromContext(ctx)

		require.NotNil(t, actual)
		assert.Equal(t, expected, actual)
	})

	t.Run("Should return default logger when no logger in context", func(t *testing.T) {
		l := FromContext(context.Background())
		require.NotNil(t, l)
	})

	t.Run("Should return default logger when wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), ctxKey{}, "not a logger")
		require.NotNil(t, FromContext(ctx))
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, DisabledLevel, ParseLevel("disabled"))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
}

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	cases := []struct {
		level    LogLevel
		expected int
	}{
		{DebugLevel, -4},
		{InfoLevel, 0},
		{WarnLevel, 4},
		{ErrorLevel, 8},
		{DisabledLevel, 1000},
		{LogLevel("unknown"), 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, int(tc.level.ToCharmlogLevel()), "level %s", tc.level)
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("Should write text output", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf, TimeFormat: "15:04:05"})
		l.Info("reduced corpus", "distinct", 3)

		assert.Contains(t, buf.String(), "reduced corpus")
		assert.Contains(t, buf.String(), "distinct=3")
	})

	t.Run("Should write JSON output", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true})
		l.Info("reduced corpus")

		out := buf.String()
		assert.Contains(t, out, "reduced corpus")
		assert.True(t, strings.Contains(out, "{") && strings.Contains(out, "}"))
	})

	t.Run("Should filter below level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: WarnLevel, Output: &buf})
		l.Info("hidden")
		l.Debug("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("Should carry fields from With", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf}).With("component", "reduce")
		l.Info("done")
		assert.Contains(t, buf.String(), "component=reduce")
	})
}
