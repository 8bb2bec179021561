package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetLevelAcceptsGinModes(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("release")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	SetLevel("test")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	SetLevel("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetLevel("nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestUseJSONWritesStructuredLines(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })
	SetLevel("info")

	var buf bytes.Buffer
	UseJSON(&buf)
	Log.Info().Str("component", "analytics").Msg("hello")

	assert.Contains(t, buf.String(), `"component":"analytics"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}
