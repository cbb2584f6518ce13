// Package config loads the optional loki.yaml build configuration.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "loki.yaml"

// Config is the build configuration.
type Config struct {
	Logging     LoggingConfig  `yaml:"logging"`
	VerifyLinks bool           `yaml:"verify_links"`
	MetricsFile string         `yaml:"metrics_file"`
	Markdown    MarkdownConfig `yaml:"markdown"`
	Sitemap     SitemapConfig  `yaml:"sitemap"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MarkdownConfig tunes the Markdown body format.
type MarkdownConfig struct {
	GFM *bool `yaml:"gfm"`
}

// SitemapConfig controls sitemap.xml generation.
type SitemapConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration at path. An empty path means DefaultFile, which may be
// absent; an explicit path must exist. ${VAR} references are expanded after loading
// .env files.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found: %s", path).Build()
		}
		return nil, errors.FileSystemError(err, "failed to read config file %s", path).Build()
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config file").
			WithContext("path", path).
			Fatal().
			Build()
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	if cfg.Markdown.GFM == nil {
		enabled := true
		cfg.Markdown.GFM = &enabled
	}
	cfg.Sitemap.BaseURL = strings.TrimSuffix(cfg.Sitemap.BaseURL, "/")
}

func validate(cfg *Config) error {
	if cfg.Sitemap.Enabled && cfg.Sitemap.BaseURL == "" {
		return errors.ConfigError("sitemap.base_url is required when sitemap.enabled is set").Build()
	}
	return nil
}
