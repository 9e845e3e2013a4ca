// Package config holds the crawler settings and loads them from an
// optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/yingtu35/broken-link-finder/internal/webscraper"
	"github.com/yingtu35/broken-link-finder/pkg/domain"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the full set of crawl settings.
type Config struct {
	Workers            int           `yaml:"workers"`
	Timeout            time.Duration `yaml:"timeout"`
	MaxRedirects       int           `yaml:"max_redirects"`
	RequestsPerSecond  float64       `yaml:"requests_per_second"`
	UserAgent          string        `yaml:"user_agent"`
	ExcludedExtensions []string      `yaml:"excluded_extensions"`
	MonitoredDomain    string        `yaml:"monitored_domain"`
	NoColor            bool          `yaml:"no_color"`
	LogLevel           string        `yaml:"log_level"`
	MetricsAddr        string        `yaml:"metrics_addr"`
	Export             Export        `yaml:"export"`
}

// Export names the files the report is written to. Empty means skip.
type Export struct {
	CSV  string `yaml:"csv"`
	JSON string `yaml:"json"`
}

func Default() Config {
	return Config{
		Workers:            webscraper.DefaultWorkers,
		Timeout:            webscraper.DefaultTimeout,
		MaxRedirects:       webscraper.DefaultMaxRedirects,
		UserAgent:          webscraper.DefaultUserAgent,
		ExcludedExtensions: append([]string(nil), webscraper.DefaultExcludedExtensions...),
		MonitoredDomain:    webscraper.DefaultMonitoredDomain,
		LogLevel:           "warn",
	}
}

// Load reads a YAML file on top of Default. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	if err := decode(f, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func decode(r io.Reader, cfg *Config) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// Options converts the settings into crawler options.
func (c Config) Options() webscraper.Options {
	return webscraper.Options{
		Workers:            c.Workers,
		Timeout:            c.Timeout,
		MaxRedirects:       c.MaxRedirects,
		RequestsPerSecond:  c.RequestsPerSecond,
		UserAgent:          c.UserAgent,
		ExcludedExtensions: append([]string{}, c.ExcludedExtensions...),
		MonitoredDomain:    c.MonitoredDomain,
	}
}

// Validate checks ranges, normalizes the extension list and reduces the
// monitored domain to its registrable domain.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, c.Timeout)
	}
	if c.MaxRedirects < 1 {
		return fmt.Errorf("%w: max_redirects must be at least 1, got %d", ErrInvalidConfig, c.MaxRedirects)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests_per_second must not be negative", ErrInvalidConfig)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	c.ExcludedExtensions = NormalizeExtensions(c.ExcludedExtensions)
	if raw := strings.TrimSpace(c.MonitoredDomain); raw != "" {
		c.MonitoredDomain = domain.HostDomain(raw)
		if c.MonitoredDomain == "" {
			return fmt.Errorf("%w: monitored_domain %q is not a host name", ErrInvalidConfig, raw)
		}
	} else {
		c.MonitoredDomain = ""
	}
	return nil
}

// NormalizeExtensions lowercases entries and strips a leading dot and
// surrounding whitespace; empty entries are dropped.
func NormalizeExtensions(list []string) []string {
	out := make([]string, 0, len(list))
	for _, ext := range list {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext == "" {
			continue
		}
		out = append(out, ext)
	}
	return out
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, s)
}
