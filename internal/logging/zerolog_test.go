package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewZerolog(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, "info", "state")

	log.Debug().Msg("hidden")
	log.Info().Str("path", "mapview.db").Msg("opened")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "opened")
	assert.Contains(t, out, "component=state")
	assert.Contains(t, out, "path=mapview.db")
}

func TestNewZerolog_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, "DEBUG", "state")
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
