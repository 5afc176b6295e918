// Package config provides configuration management for the pluto.tv proxy server.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/savid/plutotv-proxy/pkg/data"
	"github.com/savid/plutotv-proxy/pkg/pluto"
	"github.com/savid/plutotv-proxy/pkg/settings"
)

var (
	// ErrInvalidPort is returned when port number is invalid.
	ErrInvalidPort = errors.New("invalid port number")
	// ErrInvalidLogLevel is returned when log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidURL is returned when a provider or base URL is not absolute.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrInvalidStartChannel is returned when the first channel number is below 1.
	ErrInvalidStartChannel = errors.New("start channel must be at least 1")
	// ErrFetchTimeoutPositive is returned when the fetch timeout is not positive.
	ErrFetchTimeoutPositive = errors.New("fetch timeout must be positive")
	// ErrInvalidRateLimit is returned when the fetch rate limit is negative.
	ErrInvalidRateLimit = errors.New("fetch rate limit must not be negative")
	// ErrGuideWindowPositive is returned when the guide window is not positive.
	ErrGuideWindowPositive = errors.New("guide window must be positive")
	// ErrRefreshIntervalNegative is returned when the refresh interval is negative.
	ErrRefreshIntervalNegative = errors.New("refresh interval must not be negative")
	// ErrInvalidSettingsBackend is returned for an unknown settings backend.
	ErrInvalidSettingsBackend = errors.New("invalid settings backend")
	// ErrRedisURLRequired is returned when the redis backend has no URL.
	ErrRedisURLRequired = errors.New("redis URL is required for the redis settings backend")
	// ErrInvalidTunerCount is returned when the tuner count is below 1.
	ErrInvalidTunerCount = errors.New("tuner count must be at least 1")
)

// envPrefix prefixes every environment variable read by Parse.
const envPrefix = "PLUTO_"

// Config holds the application configuration.
type Config struct {
	Port     int
	BaseURL  string
	LogLevel string

	ChannelsURL             string
	GuideURL                string
	StartChannel            int
	ColoredLogos            bool
	WorkaroundBrokenStreams bool
	UserAgent               string

	FetchTimeout    time.Duration
	FetchRateLimit  float64
	GuideWindow     time.Duration
	RefreshInterval time.Duration

	SettingsBackend string
	SettingsPath    string
	RedisURL        string

	TunerCount int
	ConfigFile string
}

// Parse builds the configuration from args (without the program name). Flag
// defaults come from PLUTO_* environment variables; a YAML file named by
// -config fills in every flag not given on the command line.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}
	env := &envReader{}

	fs := flag.NewFlagSet("plutotv-proxy", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", env.getInt("PORT", 8080), "Port to listen on")
	fs.StringVar(&cfg.BaseURL, "base", env.getString("BASE_URL", ""), "Base URL for playlist and lineup URLs (default http://localhost:<port>)")
	fs.StringVar(&cfg.LogLevel, "log-level", env.getString("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")

	fs.StringVar(&cfg.ChannelsURL, "channels-url", env.getString("CHANNELS_URL", pluto.DefaultChannelsURL), "Provider channel list URL")
	fs.StringVar(&cfg.GuideURL, "guide-url", env.getString("GUIDE_URL", pluto.DefaultGuideURL), "Provider schedule URL")
	fs.IntVar(&cfg.StartChannel, "start-channel", env.getInt("START_CHANNEL", 1), "Display number of the first channel")
	fs.BoolVar(&cfg.ColoredLogos, "colored-logos", env.getBool("COLORED_LOGOS", true), "Prefer colored channel logos")
	fs.BoolVar(&cfg.WorkaroundBrokenStreams, "workaround-broken-streams", env.getBool("WORKAROUND_BROKEN_STREAMS", true), "Ask the player to tolerate broken HLS playlists")
	fs.StringVar(&cfg.UserAgent, "user-agent", env.getString("USER_AGENT", data.DefaultUserAgent), "User-Agent sent upstream and to the player")

	fs.DurationVar(&cfg.FetchTimeout, "fetch-timeout", env.getDuration("FETCH_TIMEOUT", 30*time.Second), "Timeout of a single upstream request")
	fs.Float64Var(&cfg.FetchRateLimit, "fetch-rate-limit", env.getFloat("FETCH_RATE_LIMIT", 0), "Upstream requests per second (0 = unlimited)")
	fs.DurationVar(&cfg.GuideWindow, "guide-window", env.getDuration("GUIDE_WINDOW", 12*time.Hour), "Length of the guide window served and prefetched")
	fs.DurationVar(&cfg.RefreshInterval, "refresh-interval", env.getDuration("REFRESH_INTERVAL", 30*time.Minute), "Interval between guide prefetches (0 disables)")

	fs.StringVar(&cfg.SettingsBackend, "settings-backend", env.getString("SETTINGS_BACKEND", settings.BackendFile), "Settings store (file, bolt, redis)")
	fs.StringVar(&cfg.SettingsPath, "settings-path", env.getString("SETTINGS_PATH", "plutotv-settings.yaml"), "Settings file or database path")
	fs.StringVar(&cfg.RedisURL, "redis-url", env.getString("REDIS_URL", ""), "Redis URL for the redis settings backend")

	fs.IntVar(&cfg.TunerCount, "tuners", env.getInt("TUNER_COUNT", 2), "Tuner count advertised to media servers")
	fs.StringVar(&cfg.ConfigFile, "config", env.getString("CONFIG_FILE", ""), "YAML configuration file")

	if env.err != nil {
		return nil, env.err
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.ConfigFile != "" {
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) {
			set[f.Name] = true
		})

		file, err := loadFile(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		if err := file.apply(cfg, set); err != nil {
			return nil, fmt.Errorf("config file %s: %w", cfg.ConfigFile, err)
		}
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("%w: %s (must be debug, info, warn, or error)", ErrInvalidLogLevel, c.LogLevel)
	}

	for name, raw := range map[string]string{
		"base":         c.BaseURL,
		"channels-url": c.ChannelsURL,
		"guide-url":    c.GuideURL,
	} {
		u, err := url.ParseRequestURI(raw)
		if err != nil || u.Host == "" {
			return fmt.Errorf("%w: %s=%q", ErrInvalidURL, name, raw)
		}
	}

	if c.StartChannel < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidStartChannel, c.StartChannel)
	}

	if c.FetchTimeout <= 0 {
		return ErrFetchTimeoutPositive
	}

	if c.FetchRateLimit < 0 {
		return ErrInvalidRateLimit
	}

	if c.GuideWindow <= 0 {
		return ErrGuideWindowPositive
	}

	if c.RefreshInterval < 0 {
		return ErrRefreshIntervalNegative
	}

	switch c.SettingsBackend {
	case settings.BackendFile, settings.BackendBolt:
	case settings.BackendRedis:
		if c.RedisURL == "" {
			return ErrRedisURLRequired
		}
	default:
		return fmt.Errorf("%w: %s (must be file, bolt, or redis)", ErrInvalidSettingsBackend, c.SettingsBackend)
	}

	if c.TunerCount < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidTunerCount, c.TunerCount)
	}

	return nil
}

// envReader reads typed PLUTO_* variables and keeps the first parse error.
type envReader struct {
	err error
}

func (e *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	return v, ok && v != ""
}

func (e *envReader) fail(key, value string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s%s=%q: %w", envPrefix, key, value, err)
	}
}

func (e *envReader) getString(key, def string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return def
}

func (e *envReader) getInt(key string, def int) int {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return n
}

func (e *envReader) getBool(key string, def bool) bool {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return b
}

func (e *envReader) getFloat(key string, def float64) float64 {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return f
}

func (e *envReader) getDuration(key string, def time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return def
	}
	return d
}
