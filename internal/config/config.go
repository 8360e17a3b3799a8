// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/cors-anywhere/config.toml",
	"configs/config.toml",
}

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config   string `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	Host     string `kong:"help='Listen host (overrides config).',env='HOST'"`
	Port     int    `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	LogLevel string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Upstream UpstreamConfig `toml:"upstream"`
	Policy   PolicyConfig   `toml:"policy"`
	Info     InfoConfig     `toml:"info"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`

	filePath string // resolved config file path (unexported)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string          `toml:"host"`
	Port         int             `toml:"port"` // 0 means "use default" (8080); TOML cannot distinguish 0 from unset
	BodyMaxBytes int64           `toml:"body_max_bytes"`
	RateLimit    RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig controls per-IP request rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// UpstreamConfig holds settings for requests sent to target URLs.
type UpstreamConfig struct {
	TimeoutSeconds  int   `toml:"timeout_seconds"`
	IdleConnections int   `toml:"idle_connections"`
	MaxRedirects    int   `toml:"max_redirects"`
	MaxBodyBytes    int64 `toml:"max_body_bytes"`
}

// PolicyConfig holds the allow-list and deny-list patterns.
//
// Patterns use Go regexp syntax and match anywhere in the string: "example.com"
// also matches "https://example.com.evil.net". Anchor patterns with ^ and $
// when a whole-string match is intended.
type PolicyConfig struct {
	// AllowOrigins are matched against the Origin header. Nil means [".*"].
	AllowOrigins []string `toml:"allow_origins"`
	// DenyTargets are matched against the decoded target URL.
	DenyTargets []string `toml:"deny_targets"`
	// AllowMissingOrigin admits requests without an Origin header, i.e.
	// non-browser callers. Nil means true.
	AllowMissingOrigin *bool `toml:"allow_missing_origin"`
}

// MissingOriginAllowed reports the effective allow_missing_origin setting.
func (p *PolicyConfig) MissingOriginAllowed() bool {
	return p.AllowMissingOrigin == nil || *p.AllowMissingOrigin
}

// InfoConfig controls the info page and where connection metadata is read from.
type InfoConfig struct {
	Name             string   `toml:"name"`
	SourceURL        string   `toml:"source_url"`
	OriginalURL      string   `toml:"original_url"`
	DonateURL        string   `toml:"donate_url"`
	Limits           []string `toml:"limits"`
	ClientIPHeader   string   `toml:"client_ip_header"`
	CountryHeader    string   `toml:"country_header"`
	DatacenterHeader string   `toml:"datacenter_header"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load reads the TOML config file and applies CLI overrides.
// When no explicit path is given (via --config or CONFIG_PATH), it searches
// /etc/cors-anywhere/config.toml then configs/config.toml.
func Load(cli *CLI) (*Config, error) {
	path := cli.Config
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return nil, fmt.Errorf("config: no config file found (searched %v)", configSearchPaths)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.filePath = path
	cfg.applyCLI(cli)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied and no file
// behind it.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
}

func (c *Config) validate() error {
	// Numeric bounds.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0–65535; got %d", c.Server.Port)
	}
	if c.Server.BodyMaxBytes < 0 {
		return fmt.Errorf("server.body_max_bytes must be non-negative; got %d", c.Server.BodyMaxBytes)
	}
	if c.Upstream.TimeoutSeconds < 0 {
		return fmt.Errorf("upstream.timeout_seconds must be non-negative; got %d", c.Upstream.TimeoutSeconds)
	}
	if c.Upstream.IdleConnections < 0 {
		return fmt.Errorf("upstream.idle_connections must be non-negative; got %d", c.Upstream.IdleConnections)
	}
	if c.Upstream.MaxRedirects < 0 {
		return fmt.Errorf("upstream.max_redirects must be non-negative; got %d", c.Upstream.MaxRedirects)
	}
	if c.Upstream.MaxBodyBytes < 0 {
		return fmt.Errorf("upstream.max_body_bytes must be non-negative; got %d", c.Upstream.MaxBodyBytes)
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", c.Server.RateLimit.RequestsPerSecond)
	}

	// Policy patterns.
	for _, p := range c.Policy.AllowOrigins {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("policy.allow_origins: invalid pattern %q: %w", p, err)
		}
	}
	for _, p := range c.Policy.DenyTargets {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("policy.deny_targets: invalid pattern %q: %w", p, err)
		}
	}

	// Info page links.
	for name, raw := range map[string]string{
		"info.source_url":   c.Info.SourceURL,
		"info.original_url": c.Info.OriginalURL,
		"info.donate_url":   c.Info.DonateURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("%s must be an absolute URL; got %q", name, raw)
		}
	}

	// Log fields.
	level := strings.ToLower(c.Log.Level)
	switch level {
	case "debug", "info", "warn", "error", "":
		// valid
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	format := strings.ToLower(c.Log.Format)
	switch format {
	case "json", "text", "":
		// valid
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	// Metrics path validation (only when metrics are enabled).
	if c.Metrics.Enabled && c.Metrics.Path != "" {
		p := c.Metrics.Path
		if p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		if p == "/" {
			return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, "/")
		}
		for _, reserved := range []string{"/healthz", "/proxy/status"} {
			if p == reserved || strings.HasPrefix(p, reserved+"/") {
				return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
			}
		}
	}

	return nil
}

// setDefaults fills zero-valued fields with sensible defaults.
// For integer fields (Port, BodyMaxBytes, etc.), zero means "unset" because TOML
// cannot distinguish between an explicit 0 and an omitted key. Setting port=0 in
// the config file therefore results in the default port (8080).
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BodyMaxBytes == 0 {
		c.Server.BodyMaxBytes = 10 * 1024 * 1024 // 10 MB
	}
	if c.Upstream.TimeoutSeconds == 0 {
		c.Upstream.TimeoutSeconds = 60
	}
	if c.Upstream.IdleConnections == 0 {
		c.Upstream.IdleConnections = 100
	}
	if c.Upstream.MaxRedirects == 0 {
		c.Upstream.MaxRedirects = 10
	}
	if c.Upstream.MaxBodyBytes == 0 {
		c.Upstream.MaxBodyBytes = 32 * 1024 * 1024 // 32 MB
	}
	if c.Policy.AllowOrigins == nil {
		c.Policy.AllowOrigins = []string{".*"}
	}
	if c.Policy.AllowMissingOrigin == nil {
		allow := true
		c.Policy.AllowMissingOrigin = &allow
	}
	if c.Info.Name == "" {
		c.Info.Name = "CORS-ANYWHERE"
	}
	if c.Info.Limits == nil {
		c.Info.Limits = []string{"100,000 requests/day", "1,000 requests/10 minutes"}
	}
	if c.Info.ClientIPHeader == "" {
		c.Info.ClientIPHeader = "CF-Connecting-IP"
	}
	if c.Info.CountryHeader == "" {
		c.Info.CountryHeader = "CF-IPCountry"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.filePath
}
