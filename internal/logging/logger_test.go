package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSetup_JSON(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	var buf bytes.Buffer
	Setup(Config{Level: "info", Format: "json", Output: &buf, ServiceName: "hairstory"})

	log.Debug().Msg("hidden")
	log.Info().Str("product", "Hair Balm").Msg("[TEST] visible")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "exactly one JSON line")
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "hairstory", entry["service"])
	assert.Equal(t, "Hair Balm", entry["product"])
	assert.Equal(t, "[TEST] visible", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestSetup_Console(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	var buf bytes.Buffer
	logger := Setup(Config{Level: "debug", Format: "console", Output: &buf})

	logger.Debug().Msg("[TEST] console line")

	assert.Contains(t, buf.String(), "[TEST] console line")
	assert.NotContains(t, buf.String(), "{")
}
