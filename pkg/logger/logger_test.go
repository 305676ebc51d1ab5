package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/invorya/almacen-api/pkg/logger"
)

func TestNew_CampoServiceYNivel(t *testing.T) {
	l := logger.New(logger.Config{Env: "production", Level: "warn", Service: "almacen-api"})

	var buf bytes.Buffer
	zl := l.Zerolog().Output(&buf)

	zl.Info().Msg("oculto")
	zl.Warn().Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "oculto", "info queda bajo el nivel warn")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, `"service":"almacen-api"`)
}

func TestNew_SinServiceOmiteElCampo(t *testing.T) {
	l := logger.New(logger.Config{Env: "production", Level: "info"})

	var buf bytes.Buffer
	zl := l.Zerolog().Output(&buf)
	zl.Info().Msg("hola")

	assert.NotContains(t, buf.String(), `"service"`)
}

func TestNew_NivelDesconocidoCaeEnInfo(t *testing.T) {
	l := logger.New(logger.Config{Env: "production", Level: "gritando"})

	var buf bytes.Buffer
	zl := l.Zerolog().Output(&buf)
	zl.Debug().Msg("oculto")
	zl.Info().Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "oculto")
	assert.Contains(t, out, "visible")
}
