package binlog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		want  logrus.Level
	}{
		{"debug", LevelDebug, logrus.DebugLevel},
		{"info", LevelInfo, logrus.InfoLevel},
		{"warn", LevelWarn, logrus.WarnLevel},
		{"error", LevelError, logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(Config{Level: tt.level, Format: FormatText})
			if logger.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", logger.GetLevel(), tt.want)
			}
		})
	}
}

func TestFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		want   string
	}{
		{"text format", FormatText, "level=info"},
		{"json format", FormatJSON, `"level":"info"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Level: LevelInfo, Format: tt.format, Output: &buf})
			logger.Info("test message")

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected output to contain %q, got: %s", tt.want, buf.String())
			}
		})
	}
}

func TestJSONFormatIsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})
	logger.Info("test message")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "test message" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})
	logger.WithComponent("imports").Warn("discarded descriptor")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["component"] != "imports" {
		t.Errorf("component = %v, want imports", entry["component"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultAndDiscard(t *testing.T) {
	d := Default()
	if d.GetLevel() != logrus.InfoLevel {
		t.Errorf("Default() level = %v", d.GetLevel())
	}

	quiet := Discard()
	quiet.Error("should not panic or print")
}
