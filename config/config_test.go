package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/savid/plutotv-proxy/pkg/pluto"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Port)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("Expected derived base URL, got %s", cfg.BaseURL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level info, got %s", cfg.LogLevel)
	}
	if cfg.ChannelsURL != pluto.DefaultChannelsURL || cfg.GuideURL != pluto.DefaultGuideURL {
		t.Errorf("Unexpected provider URLs: %s, %s", cfg.ChannelsURL, cfg.GuideURL)
	}
	if cfg.StartChannel != 1 || !cfg.ColoredLogos || !cfg.WorkaroundBrokenStreams {
		t.Errorf("Unexpected add-on defaults: %+v", cfg)
	}
	if cfg.FetchTimeout != 30*time.Second || cfg.FetchRateLimit != 0 {
		t.Errorf("Unexpected fetch defaults: %v, %v", cfg.FetchTimeout, cfg.FetchRateLimit)
	}
	if cfg.GuideWindow != 12*time.Hour || cfg.RefreshInterval != 30*time.Minute {
		t.Errorf("Unexpected guide defaults: %v, %v", cfg.GuideWindow, cfg.RefreshInterval)
	}
	if cfg.SettingsBackend != "file" || cfg.TunerCount != 2 {
		t.Errorf("Unexpected defaults: backend=%s tuners=%d", cfg.SettingsBackend, cfg.TunerCount)
	}
}

func TestParseFlags(t *testing.T) {
	cfg, err := Parse([]string{
		"-port", "9000",
		"-base", "http://proxy.lan:9000",
		"-log-level", "debug",
		"-start-channel", "100",
		"-colored-logos=false",
		"-refresh-interval", "0",
		"-settings-backend", "bolt",
		"-settings-path", "/tmp/settings.db",
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Port != 9000 || cfg.BaseURL != "http://proxy.lan:9000" || cfg.LogLevel != "debug" {
		t.Errorf("Unexpected server config: %+v", cfg)
	}
	if cfg.StartChannel != 100 || cfg.ColoredLogos {
		t.Errorf("Unexpected add-on config: %+v", cfg)
	}
	if cfg.RefreshInterval != 0 {
		t.Errorf("Expected refresh disabled, got %v", cfg.RefreshInterval)
	}
	if cfg.SettingsBackend != "bolt" || cfg.SettingsPath != "/tmp/settings.db" {
		t.Errorf("Unexpected settings config: %s %s", cfg.SettingsBackend, cfg.SettingsPath)
	}
}

func TestParseEnvironment(t *testing.T) {
	t.Setenv("PLUTO_PORT", "7000")
	t.Setenv("PLUTO_WORKAROUND_BROKEN_STREAMS", "false")
	t.Setenv("PLUTO_GUIDE_WINDOW", "6h")
	t.Setenv("PLUTO_FETCH_RATE_LIMIT", "2.5")

	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Port != 7000 || cfg.WorkaroundBrokenStreams || cfg.GuideWindow != 6*time.Hour || cfg.FetchRateLimit != 2.5 {
		t.Errorf("Environment not applied: %+v", cfg)
	}

	// flags win over the environment
	cfg, err = Parse([]string{"-port", "7001"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Port != 7001 {
		t.Errorf("Expected flag to override environment, got %d", cfg.Port)
	}
}

func TestParseInvalidEnvironment(t *testing.T) {
	t.Setenv("PLUTO_TUNER_COUNT", "many")

	if _, err := Parse(nil); err == nil {
		t.Error("Expected error for invalid PLUTO_TUNER_COUNT")
	}
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: 8181
log_level: warn
start_channel: 500
colored_logos: false
guide_window: 4h
settings_backend: redis
redis_url: redis://localhost:6379/1
tuners: 4
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Parse([]string{"-config", path, "-log-level", "error"})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Port != 8181 || cfg.BaseURL != "http://localhost:8181" {
		t.Errorf("Expected port from file, got %d (%s)", cfg.Port, cfg.BaseURL)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("Expected explicit flag to win over file, got %s", cfg.LogLevel)
	}
	if cfg.StartChannel != 500 || cfg.ColoredLogos || cfg.GuideWindow != 4*time.Hour {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.SettingsBackend != "redis" || cfg.RedisURL != "redis://localhost:6379/1" || cfg.TunerCount != 4 {
		t.Errorf("File values not applied: %+v", cfg)
	}
	// keys absent from the file keep their defaults
	if cfg.RefreshInterval != 30*time.Minute {
		t.Errorf("Expected default refresh interval, got %v", cfg.RefreshInterval)
	}
}

func TestParseConfigFileErrors(t *testing.T) {
	dir := t.TempDir()
	badDuration := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badDuration, []byte("guide_window: soon\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Parse([]string{"-config", badDuration}); err == nil {
		t.Error("Expected error for invalid duration")
	}
	if _, err := Parse([]string{"-config", filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Parse(nil)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "port too low", modify: func(c *Config) { c.Port = 0 }, wantErr: ErrInvalidPort},
		{name: "port too high", modify: func(c *Config) { c.Port = 70000 }, wantErr: ErrInvalidPort},
		{name: "log level", modify: func(c *Config) { c.LogLevel = "trace" }, wantErr: ErrInvalidLogLevel},
		{name: "relative base", modify: func(c *Config) { c.BaseURL = "/proxy" }, wantErr: ErrInvalidURL},
		{name: "bad channels url", modify: func(c *Config) { c.ChannelsURL = "not a url" }, wantErr: ErrInvalidURL},
		{name: "start channel", modify: func(c *Config) { c.StartChannel = 0 }, wantErr: ErrInvalidStartChannel},
		{name: "fetch timeout", modify: func(c *Config) { c.FetchTimeout = 0 }, wantErr: ErrFetchTimeoutPositive},
		{name: "rate limit", modify: func(c *Config) { c.FetchRateLimit = -1 }, wantErr: ErrInvalidRateLimit},
		{name: "guide window", modify: func(c *Config) { c.GuideWindow = 0 }, wantErr: ErrGuideWindowPositive},
		{name: "refresh interval", modify: func(c *Config) { c.RefreshInterval = -time.Second }, wantErr: ErrRefreshIntervalNegative},
		{name: "backend", modify: func(c *Config) { c.SettingsBackend = "etcd" }, wantErr: ErrInvalidSettingsBackend},
		{name: "redis url", modify: func(c *Config) { c.SettingsBackend = "redis" }, wantErr: ErrRedisURLRequired},
		{name: "tuners", modify: func(c *Config) { c.TunerCount = 0 }, wantErr: ErrInvalidTunerCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
