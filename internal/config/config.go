// Package config loads the server configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"ChartEmbed/internal/core/oembed"
)

// Config validation errors
var (
	// ErrInvalidPort is returned when Server.Port is outside 1-65535
	ErrInvalidPort = errors.New("server port must be between 1 and 65535")
	// ErrInvalidRateLimit is returned when the rate limit settings are not positive
	ErrInvalidRateLimit = errors.New("rate limit requests and window must be positive")
	// ErrMissingDatabaseURL is returned when no database connection string is configured
	ErrMissingDatabaseURL = errors.New("database URL is required")
	// ErrInvalidBreaker is returned when the chart store circuit breaker settings are not positive
	ErrInvalidBreaker = errors.New("database breaker threshold and timeout must be positive")
	// ErrMissingChartDomain is returned when the domain published charts live on is not configured
	ErrMissingChartDomain = errors.New("oembed chart domain is required")
	// ErrMissingProviderURL is returned when neither a provider URL nor a site domain is configured
	ErrMissingProviderURL = errors.New("oembed provider URL or domain is required")
	// ErrInvalidProviderURL is returned when the provider URL is not an absolute http(s) URL
	ErrInvalidProviderURL = errors.New("oembed provider URL must be an absolute http(s) URL")
	// ErrInvalidHostMatch is returned for an unknown host match mode
	ErrInvalidHostMatch = errors.New("oembed host match must be off, exact or site")
	// ErrInvalidPatternCacheSize is returned when the pattern cache size is not positive
	ErrInvalidPatternCacheSize = errors.New("oembed pattern cache size must be positive")
	// ErrMissingThumbnailBaseURL is returned when thumbnails are enabled without a public base URL
	ErrMissingThumbnailBaseURL = errors.New("thumbnail base URL is required when a thumbnail directory is set")
	// ErrInvalidLogLevel is returned for an unknown log level
	ErrInvalidLogLevel = errors.New("log level must be debug, info, warn or error")
	// ErrInvalidLogFormat is returned for an unknown log format
	ErrInvalidLogFormat = errors.New("log format must be json or text")
)

// Config is the complete server configuration
type Config struct {
	Server     ServerConfig    `koanf:"server"`
	Database   DatabaseConfig  `koanf:"database"`
	OEmbed     OEmbedConfig    `koanf:"oembed"`
	Thumbnails ThumbnailConfig `koanf:"thumbnails"`
	Logging    LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	CORSOrigins     []string      `koanf:"cors_origins"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimitRequests is the number of requests a client may make per RateLimitWindow
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	// RateLimitClients bounds the number of clients tracked at once
	RateLimitClients int `koanf:"rate_limit_clients"`
}

// DatabaseConfig holds the chart store connection settings
type DatabaseConfig struct {
	URL          string `koanf:"url"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`

	// Circuit breaker around chart lookups
	BreakerThreshold int           `koanf:"breaker_threshold"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
}

// OEmbedConfig holds the oEmbed provider settings
type OEmbedConfig struct {
	// Domain is the site domain; provider_url defaults to https://<Domain>
	Domain string `koanf:"domain"`
	// ChartDomain is the domain published charts are served from
	ChartDomain  string `koanf:"chart_domain"`
	ProviderName string `koanf:"provider_name"`
	// ProviderURL overrides the https://<Domain> default
	ProviderURL     string `koanf:"provider_url"`
	ElementIDPrefix string `koanf:"element_id_prefix"`
	HostMatch       string `koanf:"host_match"`

	// ExtraPatterns are additional chart URL patterns, tried after the chart domain
	ExtraPatterns []string `koanf:"extra_patterns"`
	// AlternateDomains are additional chart domains using the standard URL scheme
	AlternateDomains []string `koanf:"alternate_domains"`

	PatternCacheSize int `koanf:"pattern_cache_size"`

	StrictFormat             bool `koanf:"strict_format"`
	PathFallback             bool `koanf:"path_fallback"`
	RequirePublishPermission bool `koanf:"require_publish_permission"`
	// DomainsFromDB registers the chart_domains table as a pattern provider
	DomainsFromDB bool `koanf:"domains_from_db"`
}

// ThumbnailConfig locates the chart preview images rendered at publish time.
// An empty Dir disables thumbnail fields in responses.
type ThumbnailConfig struct {
	Dir     string `koanf:"dir"`
	BaseURL string `koanf:"base_url"`
}

// LoggingConfig selects the slog handler
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Server.Port)
	}
	if c.Server.RateLimitRequests <= 0 || c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("%w: got %d per %v", ErrInvalidRateLimit, c.Server.RateLimitRequests, c.Server.RateLimitWindow)
	}

	if c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}
	if c.Database.BreakerThreshold <= 0 || c.Database.BreakerTimeout <= 0 {
		return fmt.Errorf("%w: got %d, %v", ErrInvalidBreaker, c.Database.BreakerThreshold, c.Database.BreakerTimeout)
	}

	if strings.TrimSpace(c.OEmbed.ChartDomain) == "" {
		return ErrMissingChartDomain
	}
	providerURL := c.ResolvedProviderURL()
	if providerURL == "" {
		return ErrMissingProviderURL
	}
	if u, err := url.Parse(providerURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: got %q", ErrInvalidProviderURL, providerURL)
	}
	if _, err := oembed.ParseHostMatchMode(c.OEmbed.HostMatch); err != nil {
		return fmt.Errorf("%w: got %q", ErrInvalidHostMatch, c.OEmbed.HostMatch)
	}
	if c.OEmbed.PatternCacheSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPatternCacheSize, c.OEmbed.PatternCacheSize)
	}

	if c.Thumbnails.Dir != "" && c.Thumbnails.BaseURL == "" {
		return ErrMissingThumbnailBaseURL
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	return nil
}

// ResolvedProviderURL returns the configured provider URL, or https://<Domain>
// when only the site domain is set. Trailing slashes are removed.
func (c *Config) ResolvedProviderURL() string {
	if c.OEmbed.ProviderURL != "" {
		return strings.TrimRight(c.OEmbed.ProviderURL, "/")
	}
	if domain := strings.TrimSpace(c.OEmbed.Domain); domain != "" {
		return "https://" + strings.TrimRight(domain, "/")
	}
	return ""
}

// SlogLevel maps the configured level name to a slog.Level
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: got %q", ErrInvalidLogLevel, l.Level)
	}
}
