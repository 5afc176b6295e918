package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config in YAML. Absent keys leave the flag value alone.
type fileConfig struct {
	Port     *int    `yaml:"port"`
	BaseURL  *string `yaml:"base_url"`
	LogLevel *string `yaml:"log_level"`

	ChannelsURL             *string `yaml:"channels_url"`
	GuideURL                *string `yaml:"guide_url"`
	StartChannel            *int    `yaml:"start_channel"`
	ColoredLogos            *bool   `yaml:"colored_logos"`
	WorkaroundBrokenStreams *bool   `yaml:"workaround_broken_streams"`
	UserAgent               *string `yaml:"user_agent"`

	FetchTimeout    *string  `yaml:"fetch_timeout"`
	FetchRateLimit  *float64 `yaml:"fetch_rate_limit"`
	GuideWindow     *string  `yaml:"guide_window"`
	RefreshInterval *string  `yaml:"refresh_interval"`

	SettingsBackend *string `yaml:"settings_backend"`
	SettingsPath    *string `yaml:"settings_path"`
	RedisURL        *string `yaml:"redis_url"`

	TunerCount *int `yaml:"tuners"`
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &f, nil
}

// apply copies every present key into cfg unless its flag is in set.
func (f *fileConfig) apply(cfg *Config, set map[string]bool) error {
	setInt(&cfg.Port, f.Port, set["port"])
	setString(&cfg.BaseURL, f.BaseURL, set["base"])
	setString(&cfg.LogLevel, f.LogLevel, set["log-level"])

	setString(&cfg.ChannelsURL, f.ChannelsURL, set["channels-url"])
	setString(&cfg.GuideURL, f.GuideURL, set["guide-url"])
	setInt(&cfg.StartChannel, f.StartChannel, set["start-channel"])
	setBool(&cfg.ColoredLogos, f.ColoredLogos, set["colored-logos"])
	setBool(&cfg.WorkaroundBrokenStreams, f.WorkaroundBrokenStreams, set["workaround-broken-streams"])
	setString(&cfg.UserAgent, f.UserAgent, set["user-agent"])

	if err := setDuration(&cfg.FetchTimeout, f.FetchTimeout, set["fetch-timeout"]); err != nil {
		return fmt.Errorf("fetch_timeout: %w", err)
	}
	if f.FetchRateLimit != nil && !set["fetch-rate-limit"] {
		cfg.FetchRateLimit = *f.FetchRateLimit
	}
	if err := setDuration(&cfg.GuideWindow, f.GuideWindow, set["guide-window"]); err != nil {
		return fmt.Errorf("guide_window: %w", err)
	}
	if err := setDuration(&cfg.RefreshInterval, f.RefreshInterval, set["refresh-interval"]); err != nil {
		return fmt.Errorf("refresh_interval: %w", err)
	}

	setString(&cfg.SettingsBackend, f.SettingsBackend, set["settings-backend"])
	setString(&cfg.SettingsPath, f.SettingsPath, set["settings-path"])
	setString(&cfg.RedisURL, f.RedisURL, set["redis-url"])

	setInt(&cfg.TunerCount, f.TunerCount, set["tuners"])

	return nil
}

func setString(dst *string, v *string, explicit bool) {
	if v != nil && !explicit {
		*dst = *v
	}
}

func setInt(dst *int, v *int, explicit bool) {
	if v != nil && !explicit {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool, explicit bool) {
	if v != nil && !explicit {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, explicit bool) error {
	if v == nil || explicit {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
