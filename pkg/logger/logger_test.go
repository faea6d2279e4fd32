package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/pkg/logger"
)

func lastLine(buf *bytes.Buffer) map[string]any {
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var out map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &out); err != nil {
		return nil
	}
	return out
}

func TestNew_CamposFijos(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{
		Env:     "production",
		Level:   "info",
		Service: "bodegas-api",
		Writer:  &buf,
	})

	log.Info().Str("warehouse", "principal").Msg("bodega lista")

	entry := lastLine(&buf)
	require.NotNil(t, entry, "en production la salida es JSON")
	assert.Equal(t, "bodegas-api", entry["service"])
	assert.Equal(t, "bodega lista", entry["message"])
	assert.Equal(t, "principal", entry["warehouse"])
	assert.Contains(t, entry, "time")
}

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Service: "bodegas-api", Writer: &buf})

	log.Component("nats").Warn().Msg("evento ilegible")

	entry := lastLine(&buf)
	require.NotNil(t, entry)
	assert.Equal(t, "nats", entry["component"])
	assert.Equal(t, "bodegas-api", entry["service"])
}

func TestNew_FiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "error", Writer: &buf})

	log.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())

	log.Error().Msg("sí sale")
	assert.NotZero(t, buf.Len())
}

func TestNew_NivelDesconocidoCaeEnInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "verboso", Writer: &buf})

	log.Debug().Msg("debug filtrado")
	assert.Zero(t, buf.Len())

	log.Info().Msg("info pasa")
	assert.NotZero(t, buf.Len())
}
