package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestJSONOutputCarriesService(t *testing.T) {
	var buf bytes.Buffer
	log := newWith(&buf, "info", "json", "cosy-api")
	log.Info("startup complete", "addr", ":8080")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["service"] != "cosy-api" {
		t.Errorf("service = %v, want cosy-api", record["service"])
	}
	if record["msg"] != "startup complete" {
		t.Errorf("msg = %v", record["msg"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newWith(&buf, "warn", "text", "cosy-api")
	log.Info("hidden")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record leaked through warn-level logger")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn record missing")
	}
}
