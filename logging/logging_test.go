package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tales.log")
	Init(Options{Level: "debug", Format: "json", File: path})
	t.Cleanup(func() { Close() })

	WithComponent("teller").Warn("command failed", slog.String("command", "pause"))
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	for k, want := range map[string]string{
		"app":       "tales",
		"component": "teller",
		"command":   "pause",
		"msg":       "command failed",
		"level":     "WARN",
	} {
		if m[k] != want {
			t.Errorf("%s = %v, want %q", k, m[k], want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filtered.log")
	Init(Options{Level: "warn", File: path})
	L().Info("dropped")
	L().Error("kept")
	Close()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	s := string(b)
	if strings.Contains(s, "dropped") {
		t.Errorf("info record written at warn level: %q", s)
	}
	if !strings.Contains(s, "kept") {
		t.Errorf("error record missing: %q", s)
	}
}

func TestFromEnvAndGetenv(t *testing.T) {
	t.Setenv("TALES_LOG_LEVEL", "debug")
	t.Setenv("TALES_LOG_FORMAT", "json")
	t.Setenv("TALES_LOG_SOURCE", "TRUE")
	t.Setenv("TALES_LOG_FILE", "")

	o := FromEnv()
	if o.Level != "debug" || o.Format != "json" || !o.AddSource {
		t.Errorf("unexpected env options: %+v", o)
	}
	if o.File != DefaultFile {
		t.Errorf("File = %q, want default %q", o.File, DefaultFile)
	}
	if got := getenv("TALES_UNSET_FOR_TEST", "fallback"); got != "fallback" {
		t.Errorf("getenv fallback = %q", got)
	}
}

func TestMergePrefersEnv(t *testing.T) {
	t.Setenv("TALES_LOG_LEVEL", "error")
	t.Setenv("TALES_LOG_FORMAT", "")
	t.Setenv("TALES_LOG_FILE", "")
	t.Setenv("TALES_LOG_SOURCE", "")

	o := Merge(Options{Level: "info", Format: "json", File: "a.log"})
	if o.Level != "error" {
		t.Errorf("Level = %q, want error", o.Level)
	}
	if o.Format != "json" || o.File != "a.log" {
		t.Errorf("empty env values overrode options: %+v", o)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in).Level(); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
