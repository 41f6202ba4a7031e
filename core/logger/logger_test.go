package logger

import (
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	coreconfig "github.com/m3rciful/yeabuddy/core/config"
)

func TestResolveSettingsDefaults(t *testing.T) {
	s := resolveSettings(nil)
	if s.format != formatJSON || s.level != slog.LevelInfo || s.profile != "prod" {
		t.Fatalf("defaults = %+v", s)
	}
	if s.sampleKeep != 1 || s.sampleEvery != 50 {
		t.Fatalf("sample = %d/%d, want 1/50", s.sampleKeep, s.sampleEvery)
	}
}

func TestResolveSettings(t *testing.T) {
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{Token: "tok"},
		Logging: coreconfig.LoggingConfig{
			Level:       "warning",
			Profile:     " Dev ",
			KeysOrder:   "event, default, user_id,,",
			DebugSample: "2/10",
			AlertChatID: " @ops ",
		},
	}
	s := resolveSettings(cfg)
	if s.format != formatConsole {
		t.Errorf("format = %q, want console for dev profile", s.format)
	}
	if s.level != slog.LevelWarn {
		t.Errorf("level = %v, want WARN", s.level)
	}
	if diff := cmp.Diff([]string{"event", "user_id"}, s.keyOrder); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
	if s.sampleKeep != 2 || s.sampleEvery != 10 {
		t.Errorf("sample = %d/%d, want 2/10", s.sampleKeep, s.sampleEvery)
	}
	if s.alertChat != "@ops" || s.token != "tok" {
		t.Errorf("alert = %q token = %q", s.alertChat, s.token)
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		raw, profile string
		want         logFormat
	}{
		{"json", "debug", formatJSON},
		{"TEXT", "prod", formatKV},
		{"pretty", "prod", formatConsole},
		{"", "debug", formatConsole},
		{"", "prod", formatJSON},
	}
	for _, tc := range cases {
		if got := parseFormat(tc.raw, tc.profile); got != tc.want {
			t.Errorf("parseFormat(%q, %q) = %q, want %q", tc.raw, tc.profile, got, tc.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := parseLevel(raw); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}
