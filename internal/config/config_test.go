package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SESSION_PLAYBACK_FALLBACK", "SESSION_CAPTURE_RESTARTS", "SESSION_SWEEP_SCHEDULE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("default port = %s, want 8080", cfg.Port)
	}
	if cfg.PlaybackFallback != 2*time.Second {
		t.Errorf("default playback fallback = %v", cfg.PlaybackFallback)
	}
	if cfg.CaptureRestartCap != 5 {
		t.Errorf("default capture restart cap = %d", cfg.CaptureRestartCap)
	}
	if cfg.SweepSchedule != "*/10 * * * *" {
		t.Errorf("default sweep schedule = %s", cfg.SweepSchedule)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SESSION_LISTENING_CAP", "30s")
	t.Setenv("SESSION_CAPTURE_RESTARTS", "2")
	t.Setenv("PIPER_URL", "http://piper:5000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("port = %s", cfg.Port)
	}
	if cfg.ListeningCap != 30*time.Second {
		t.Errorf("listening cap = %v", cfg.ListeningCap)
	}
	if cfg.CaptureRestartCap != 2 {
		t.Errorf("capture restart cap = %d", cfg.CaptureRestartCap)
	}
	if cfg.PiperURL != "http://piper:5000" {
		t.Errorf("piper url = %s", cfg.PiperURL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SESSION_CAPTURE_RESTARTS", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative restart cap")
	}
}

func TestMalformedDurationFallsBack(t *testing.T) {
	t.Setenv("SESSION_LISTENING_CAP", "not-a-duration")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListeningCap != 60*time.Second {
		t.Errorf("listening cap = %v, want default 60s", cfg.ListeningCap)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost: "db", DBUser: "u", DBPassword: "p",
		DBName: "voicehire", DBPort: "5432", DBSSLMode: "disable",
	}
	want := "host=db user=u password=p dbname=voicehire port=5432 sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
