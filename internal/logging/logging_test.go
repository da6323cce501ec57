package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	Setup("debug", "json", &buf)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Info().Str("board_id", "7").Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["message"] != "hello" {
		t.Errorf("message = %v, want hello", line["message"])
	}
	if line["board_id"] != "7" {
		t.Errorf("board_id = %v, want 7", line["board_id"])
	}
	if _, ok := line["time"]; !ok {
		t.Error("expected a timestamp field")
	}
}

func TestSetup_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	Setup("chatty", "json", &buf)
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("GlobalLevel = %v, want info", zerolog.GlobalLevel())
	}
	log.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug line written at info level: %q", buf.String())
	}
}

func TestModule(t *testing.T) {
	var buf bytes.Buffer
	Setup("info", "json", &buf)

	l := Module("live.webhook")
	l.Info().Msg("discarded")

	if !strings.Contains(buf.String(), `"module":"live.webhook"`) {
		t.Errorf("module field missing: %q", buf.String())
	}
}
