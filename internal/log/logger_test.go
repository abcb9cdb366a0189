package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskboard/internal/errors"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  level,
		Format: format,
		Output: NewOutput(&buf),
	})
	return logger, &buf
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "default config", config: DefaultConfig()},
		{name: "development config", config: DevelopmentConfig()},
		{
			name: "custom json",
			config: Config{
				Level:  LevelDebug,
				Format: FormatJSON,
				Output: OutputDiscard(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.config)
			require.NotNil(t, logger)
			require.NotNil(t, logger.slog)
			assert.Equal(t, tt.config.Level, logger.Config().Level)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatText)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
}

func TestJSONOutput(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.With("component", "api").Info("request completed", "status", 200)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "request completed", record["msg"])
	assert.Equal(t, "api", record["component"])
	assert.EqualValues(t, 200, record["status"])
}

func TestWithError(t *testing.T) {
	t.Run("taskboard error adds code", func(t *testing.T) {
		logger, buf := newBufferLogger(LevelInfo, FormatJSON)
		err := errors.Wrap(errors.ErrCodeAPITimeout, "request timed out", fmt.Errorf("deadline exceeded")).
			WithSuggestion("retry later")

		logger.WithError(fmt.Errorf("fetch: %w", err)).Error("fetch failed")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "API-002", record["error_code"])
		assert.Equal(t, "request timed out", record["error"])
		assert.Equal(t, "deadline exceeded", record["cause"])
	})

	t.Run("plain error", func(t *testing.T) {
		logger, buf := newBufferLogger(LevelInfo, FormatJSON)
		logger.WithError(fmt.Errorf("boom")).Error("failed")
		assert.Contains(t, buf.String(), `"error":"boom"`)
	})

	t.Run("nil error returns same logger", func(t *testing.T) {
		logger, _ := newBufferLogger(LevelInfo, FormatJSON)
		assert.Same(t, logger, logger.WithError(nil))
	})
}

func TestLogErrorContext(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)

	logger.LogErrorContext(context.Background(), nil)
	assert.Empty(t, buf.String())

	logger.LogError(errors.New(errors.ErrCodeAuthLoginFailed, "bad credentials"))
	assert.Contains(t, buf.String(), "AUTH-001")
	assert.Contains(t, buf.String(), "operation failed")
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Error("nothing to see")
	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLevelFlagValue(t *testing.T) {
	var l Level
	require.NoError(t, l.Set("debug"))
	assert.Equal(t, LevelDebug, l)
	assert.Equal(t, "debug", l.String())
	assert.Error(t, l.Set("verbose"))
	assert.Equal(t, "level", l.Type())
}

func TestFormatFlagValue(t *testing.T) {
	var f Format
	require.NoError(t, f.Set("json"))
	assert.Equal(t, FormatJSON, f)
	assert.Error(t, f.Set("xml"))
	assert.Equal(t, "text", ParseFormat("TEXT").String())
}

func TestDefaultLogger(t *testing.T) {
	original := DefaultLogger()
	defer SetDefaultLogger(original)

	custom := Nop()
	SetDefaultLogger(custom)
	assert.Same(t, custom, DefaultLogger())
	assert.Same(t, custom, OrDefault(nil))

	other := Nop()
	assert.Same(t, other, OrDefault(other))
	assert.True(t, strings.HasPrefix(DefaultConfig().ServiceName, "taskboard"))
}
