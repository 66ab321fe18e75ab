// Package config loads service settings from defaults, an optional YAML file
// and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"ai-visibility-validator/internal/bots"
)

// Config holds every tunable of the server and CLI.
type Config struct {
	Port      int    `yaml:"port"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	CruxAPIKey   string `yaml:"crux_api_key"`
	CruxEndpoint string `yaml:"crux_endpoint"`

	UserAgent      string        `yaml:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	MaxRedirects   int           `yaml:"max_redirects"`

	ProbeConcurrency int           `yaml:"probe_concurrency"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	ProbeCacheTTL    time.Duration `yaml:"probe_cache_ttl"`
	ContentCacheTTL  time.Duration `yaml:"content_cache_ttl"`

	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      float64       `yaml:"rate_limit"`
	RateBurst      int           `yaml:"rate_burst"`
	RateLimiterTTL time.Duration `yaml:"rate_limiter_ttl"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	ReloadDebounce  time.Duration `yaml:"reload_debounce"`

	Catalog bots.Catalog `yaml:",inline"`
}

// Default returns production defaults.
func Default() Config {
	return Config{
		Port:      8080,
		LogLevel:  "info",
		LogFormat: "text",

		CruxEndpoint: "https://chromeuxreport.googleapis.com/v1/records:queryRecord",

		UserAgent:      "AI-Visibility-Validator/1.0",
		RequestTimeout: 15 * time.Second,
		DialTimeout:    5 * time.Second,
		MaxBodyBytes:   5 << 20,
		MaxRedirects:   5,

		ProbeConcurrency: 2,
		ProbeTimeout:     5 * time.Second,
		ProbeCacheTTL:    5 * time.Minute,
		ContentCacheTTL:  10 * time.Minute,

		AllowedOrigins: []string{
			"https://ai-check.andreguelmann.com",
			"https://andreguelmann.com",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		RateLimit:      5,
		RateBurst:      10,
		RateLimiterTTL: 10 * time.Minute,

		ReadTimeout:     10 * time.Second,
		WriteTimeout:    60 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		ReloadDebounce:  500 * time.Millisecond,

		Catalog: bots.NewCatalog(),
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = p
	}
	if v := getenv("CRUX_API_KEY"); v != "" {
		c.CruxAPIKey = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate rejects settings the services cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.ProbeConcurrency < 1 {
		errs = append(errs, errors.New("probe_concurrency must be at least 1"))
	}
	if c.MaxRedirects < 1 {
		errs = append(errs, errors.New("max_redirects must be at least 1"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max_body_bytes must be positive"))
	}
	// rate_limit 0 disables limiting.
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("rate_limit must not be negative"))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		errs = append(errs, errors.New("rate_burst must be at least 1"))
	}
	if len(c.Catalog.Bots) == 0 {
		errs = append(errs, errors.New("bot catalogue is empty"))
	}
	seen := map[string]bool{}
	for _, p := range c.Catalog.Profiles {
		if p.Key == "" || p.UserAgent == "" {
			errs = append(errs, fmt.Errorf("probe profile %q needs key and user_agent", p.Key))
		}
		if seen[p.Key] {
			errs = append(errs, fmt.Errorf("duplicate probe profile %q", p.Key))
		}
		seen[p.Key] = true
	}
	return errors.Join(errs...)
}
