// Package config loads vecsearch settings from defaults, an optional YAML
// file and VECSEARCH_ environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/spf13/viper"

	"github.com/viant/vecsearch/similarity"
)

// Config is the top-level configuration.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Search  SearchConfig  `mapstructure:"search"`
	Embed   EmbedConfig   `mapstructure:"embed"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// SearchConfig tunes ranking.
type SearchConfig struct {
	Metric     string `mapstructure:"metric"`
	Index      string `mapstructure:"index"`
	Candidates int    `mapstructure:"candidates"`
	BatchSize  int    `mapstructure:"batch_size"`
}

// EmbedConfig configures both embedders.
type EmbedConfig struct {
	Text  TextEmbedConfig  `mapstructure:"text"`
	Image ImageEmbedConfig `mapstructure:"image"`
}

// TextEmbedConfig selects the text embedding provider.
type TextEmbedConfig struct {
	Provider  string `mapstructure:"provider"`
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
}

// ImageEmbedConfig configures the histogram image embedder.
type ImageEmbedConfig struct {
	Bins int `mapstructure:"bins"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Listen disables it.
type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

// Load reads configuration from path (or defaults only when path is empty)
// with VECSEARCH_ environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// SetDefaults registers every key with its default. Keys must be known to
// viper for environment overrides to apply on Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.path", "vecsearch.db")
	v.SetDefault("search.metric", string(similarity.MetricCosine))
	v.SetDefault("search.index", "none")
	v.SetDefault("search.candidates", 100)
	v.SetDefault("search.batch_size", 1024)
	v.SetDefault("embed.text.provider", "hashing")
	v.SetDefault("embed.text.model", "")
	v.SetDefault("embed.text.dimension", 384)
	v.SetDefault("embed.text.api_key", "")
	v.SetDefault("embed.text.base_url", "")
	v.SetDefault("embed.image.bins", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.listen", "")
}

// SetupEnv maps VECSEARCH_SECTION_KEY variables onto section.key.
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix("VECSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// FromViper unmarshals and validates v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("config: validating: %w", errors.Join(errs...))
	}
	return &cfg, nil
}

// Validate returns every problem found.
func (c *Config) Validate() []error {
	var errs []error
	oneOf := func(key, got string, allowed ...string) {
		for _, a := range allowed {
			if got == a {
				return
			}
		}
		errs = append(errs, fmt.Errorf("config: %s must be one of [%s], got %q", key, strings.Join(allowed, ", "), got))
	}

	oneOf("store.backend", c.Store.Backend, "sqlite", "badger", "memory")
	if c.Store.Backend != "memory" && c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("config: store.path must be set for backend %q", c.Store.Backend))
	}

	metric, err := similarity.ParseMetric(c.Search.Metric)
	if err != nil {
		errs = append(errs, fmt.Errorf("config: search.metric: %w", err))
	}
	oneOf("search.index", c.Search.Index, "none", "brute", "cover", "sql")
	if err == nil && metric != similarity.MetricCosine && c.Search.Index != "none" && c.Search.Index != "" {
		errs = append(errs, fmt.Errorf("config: search.index %s pre-selects by cosine and needs search.metric cosine, got %q", c.Search.Index, c.Search.Metric))
	}
	if c.Search.Index == "sql" && c.Store.Backend != "sqlite" {
		errs = append(errs, fmt.Errorf("config: search.index sql requires store.backend sqlite, got %q", c.Store.Backend))
	}
	if c.Search.Candidates < 0 {
		errs = append(errs, fmt.Errorf("config: search.candidates must be >= 0, got %d", c.Search.Candidates))
	}
	if c.Search.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("config: search.batch_size must be > 0, got %d", c.Search.BatchSize))
	}

	oneOf("embed.text.provider", c.Embed.Text.Provider, "hashing", "openai", "gemini")
	if c.Embed.Text.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("config: embed.text.dimension must be > 0, got %d", c.Embed.Text.Dimension))
	}
	if (c.Embed.Text.Provider == "openai" || c.Embed.Text.Provider == "gemini") && c.Embed.Text.APIKey == "" {
		errs = append(errs, fmt.Errorf("config: embed.text.api_key is required for provider %q", c.Embed.Text.Provider))
	}
	if c.Embed.Image.Bins <= 0 || c.Embed.Image.Bins > 64 {
		errs = append(errs, fmt.Errorf("config: embed.image.bins must be in [1, 64], got %d", c.Embed.Image.Bins))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	oneOf("log.format", c.Log.Format, "text", "json")

	if c.Metrics.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
			errs = append(errs, fmt.Errorf("config: metrics.listen must be host:port, got %q: %w", c.Metrics.Listen, err))
		}
	}
	return errs
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log.level: %w", err)
	}
	return level, nil
}
