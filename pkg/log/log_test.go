package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProviderWithWriter(&buf, zerolog.DebugLevel)

	logger := p.GetLoggerWithName("treestats.evaluator")
	logger.Info("Tree processed", TreeIDKey, 3, LossKey, 0.25, MethodKey, "Newton", ErrorKey, errors.New("boom"))

	line := decodeLine(t, &buf)
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "Tree processed", line["message"])
	assert.Equal(t, "treestats.evaluator", line[ComponentKey])
	assert.Equal(t, float64(3), line[TreeIDKey])
	assert.Equal(t, 0.25, line[LossKey])
	assert.Equal(t, "Newton", line[MethodKey])
	assert.Equal(t, "boom", line[ErrorKey])
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProviderWithWriter(&buf, zerolog.DebugLevel)

	logger := p.GetLoggerWithName("pool").With(OperationKey, OperationLoad)
	logger.Warn("odd key count", DocsKey)

	line := decodeLine(t, &buf)
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, OperationLoad, line[OperationKey])
	assert.Contains(t, line, DocsKey)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProviderWithWriter(&buf, zerolog.WarnLevel)

	logger := p.GetLoggerWithName("x")
	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Error("shown")
	assert.NotZero(t, buf.Len())
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToLogLevel(tt.in))
		})
	}
}

func TestGlobalProvider(t *testing.T) {
	var buf bytes.Buffer
	SetProvider(NewZerologProviderWithWriter(&buf, zerolog.InfoLevel))
	defer SetupLogger("info")

	LogError(errors.New("bad pool"), "load failed")
	line := decodeLine(t, &buf)
	assert.Equal(t, "bad pool", line["error"])
	assert.Equal(t, "load failed", line["message"])
}
