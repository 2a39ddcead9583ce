package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_JSONEncoding(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json"}, zapcore.AddSync(&buf))

	log.Debug("batch processed", zap.Int("successes", 3))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "batch processed", entry["msg"])
	assert.Equal(t, float64(3), entry["successes"])
	assert.Contains(t, entry, "timestamp")
	assert.True(t, IsDebug())
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "verbose"}, zapcore.AddSync(&buf))

	log.Debug("hidden")
	assert.Zero(t, buf.Len())
	assert.False(t, IsDebug())

	log.Info("shown")
	assert.NotZero(t, buf.Len())
}

func TestGlobalLoggerIsUsableBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("no init yet")
		WithProjectID("p").Warn("still fine")
	})
}
