package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"ChartEmbed/internal/core/oembed"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/chartembed/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the values applied before the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RateLimitRequests: 100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitClients:  10000,
			CORSOrigins:       []string{"*"},
		},
		Database: DatabaseConfig{
			URL:              "",
			MaxOpenConns:     20,
			AutoMigrate:      true,
			BreakerThreshold: 5,
			BreakerTimeout:   30 * time.Second,
		},
		OEmbed: OEmbedConfig{
			ProviderName:     "Datawrapper",
			ElementIDPrefix:  oembed.DefaultElementIDPrefix,
			HostMatch:        string(oembed.HostMatchExact),
			PatternCacheSize: 256,
			DomainsFromDB:    true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration using a layered approach:
//
//  1. Defaults: built-in values from defaultConfig
//  2. Config File: optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// PORT -> server.port, OEMBED_CHART_DOMAIN -> oembed.chart_domain
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" when there is none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths maps list-valued settings to the splitter used when they
// arrive as a single environment string. URL patterns may contain commas, so
// they are whitespace separated.
var sliceConfigPaths = map[string]func(string) []string{
	"server.cors_origins":      splitComma,
	"oembed.alternate_domains": splitComma,
	"oembed.extra_patterns":    strings.Fields,
}

// processSliceFields converts string values of known list settings to slices.
// Values coming from YAML are already lists and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for path, split := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		if err := k.Set(path, split(strVal)); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	trimmed := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			trimmed = append(trimmed, p)
		}
	}
	return trimmed
}

// envMappings maps environment variable names (lower-cased) to config paths.
var envMappings = map[string]string{
	"port":                  "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",
	"rate_limit_clients":    "server.rate_limit_clients",
	"cors_origins":          "server.cors_origins",

	"database_url":               "database.url",
	"database_max_open_conns":    "database.max_open_conns",
	"database_auto_migrate":      "database.auto_migrate",
	"database_breaker_threshold": "database.breaker_threshold",
	"database_breaker_timeout":   "database.breaker_timeout",

	"oembed_domain":                     "oembed.domain",
	"oembed_chart_domain":               "oembed.chart_domain",
	"oembed_provider_name":              "oembed.provider_name",
	"oembed_provider_url":               "oembed.provider_url",
	"oembed_element_id_prefix":          "oembed.element_id_prefix",
	"oembed_host_match":                 "oembed.host_match",
	"oembed_extra_patterns":             "oembed.extra_patterns",
	"oembed_alternate_domains":          "oembed.alternate_domains",
	"oembed_pattern_cache_size":         "oembed.pattern_cache_size",
	"oembed_strict_format":              "oembed.strict_format",
	"oembed_path_fallback":              "oembed.path_fallback",
	"oembed_require_publish_permission": "oembed.require_publish_permission",
	"oembed_domains_from_db":            "oembed.domains_from_db",

	"thumbnail_dir":      "thumbnails.dir",
	"thumbnail_base_url": "thumbnails.base_url",

	"log_level":  "logging.level",
	"log_format": "logging.format",
}

// envTransformFunc returns the config path for a known environment variable.
// Unknown variables map to "" and are skipped, so unrelated environment
// variables never leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
