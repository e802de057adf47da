package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConNivel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "WARN", Service: "cotizaciones-api", Output: &buf})

	l.Info().Msg("descartado")
	l.Warn().Str("rfq_id", "r1").Msg("rfq reconciliada")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "r1", entry["rfq_id"])
	assert.Equal(t, "rfq reconciliada", entry["message"])
	assert.Equal(t, "cotizaciones-api", entry["service"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error().Msg("nada") })
}
