package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Realtime.ReconnectBackoffBase != time.Second {
		t.Errorf("ReconnectBackoffBase = %v, want 1s", cfg.Realtime.ReconnectBackoffBase)
	}
	if cfg.Realtime.ReconnectBackoffMax != 30*time.Second {
		t.Errorf("ReconnectBackoffMax = %v, want 30s", cfg.Realtime.ReconnectBackoffMax)
	}
	if cfg.Realtime.MaxReconnectAttempts != 5 {
		t.Errorf("MaxReconnectAttempts = %d, want 5", cfg.Realtime.MaxReconnectAttempts)
	}
	if cfg.Session.ExpirySlack != 30*time.Second {
		t.Errorf("ExpirySlack = %v, want 30s", cfg.Session.ExpirySlack)
	}
	if cfg.Sync.ActivityPollInterval != 20*time.Second {
		t.Errorf("ActivityPollInterval = %v, want 20s", cfg.Sync.ActivityPollInterval)
	}
	if cfg.Sync.ProfilePollInterval != 30*time.Second {
		t.Errorf("ProfilePollInterval = %v, want 30s", cfg.Sync.ProfilePollInterval)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want disabled by default")
	}
	if !cfg.App.IsDevelopment() {
		t.Error("IsDevelopment() = false for default environment")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	resetViper(t)
	t.Setenv("SYNK_API_URL", "https://synk.example.com")
	t.Setenv("SYNK_WS_URL", "wss://synk.example.com")
	t.Setenv("SYNK_WS_MAX_RECONNECTS", "8")
	t.Setenv("SYNK_ACTIVITY_POLL_INTERVAL", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://synk.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Realtime.BaseURL != "wss://synk.example.com" {
		t.Errorf("Realtime.BaseURL = %q", cfg.Realtime.BaseURL)
	}
	if cfg.Realtime.MaxReconnectAttempts != 8 {
		t.Errorf("MaxReconnectAttempts = %d, want 8", cfg.Realtime.MaxReconnectAttempts)
	}
	if cfg.Sync.ActivityPollInterval != 45*time.Second {
		t.Errorf("ActivityPollInterval = %v, want 45s", cfg.Sync.ActivityPollInterval)
	}
}

func TestLoadRejectsNonWebsocketURL(t *testing.T) {
	resetViper(t)
	t.Setenv("SYNK_WS_URL", "http://synk.example.com")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for a non-websocket realtime URL")
	}
}

func TestLoadRejectsBadMetricsPort(t *testing.T) {
	resetViper(t)
	t.Setenv("ENABLE_METRICS", "true")
	t.Setenv("METRICS_PORT", "0")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for metrics port 0")
	}
}
