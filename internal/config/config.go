package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Text    TextConfig    `mapstructure:"text"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// SourceConfig holds lovelybooks API configuration
type SourceConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	UserAgent            string        `mapstructure:"user_agent"`
	PageSize             int           `mapstructure:"page_size"`
	Timeout              time.Duration `mapstructure:"timeout"`
	MaxRetries           int           `mapstructure:"max_retries"`
	RetryWait            time.Duration `mapstructure:"retry_wait"`
	MaxWorkers           int           `mapstructure:"max_workers"`
	MaxRequestsPerSecond int           `mapstructure:"max_requests_per_second"` // 0 disables pacing
	Proxies              []string      `mapstructure:"proxies"`
}

// ScrapeConfig selects what a run collects
type ScrapeConfig struct {
	Categories    []string `mapstructure:"categories"`
	MaxPages      int      `mapstructure:"max_pages"` // 0 means every page
	ProgressEvery int      `mapstructure:"progress_every"`
}

// TextConfig controls cleanup of free-text fields
type TextConfig struct {
	StripMarkup     bool   `mapstructure:"strip_markup"`
	RemoveStopwords bool   `mapstructure:"remove_stopwords"`
	Language        string `mapstructure:"language"`
}

// OutputConfig describes where the run document goes
type OutputConfig struct {
	Dir         string `mapstructure:"dir"` // local directory or bucket URL (file://, s3://, gs://)
	Prefix      string `mapstructure:"prefix"`
	Compression string `mapstructure:"compression"` // none | zstd
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text | json
	Output     string `mapstructure:"output"` // stdout | stderr | file
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig enables the prometheus endpoint when Address is set
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	Address   string `mapstructure:"address"`
}

// New returns a viper instance carrying the defaults and env bindings.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}

// Load reads configuration from YAML with environment variable overrides.
// The file is optional: without one, defaults, env and bound flags apply.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url must be set")
	}
	if c.Source.PageSize <= 0 {
		return fmt.Errorf("source.page_size must be positive, got %d", c.Source.PageSize)
	}
	if c.Source.MaxRetries <= 0 {
		return fmt.Errorf("source.max_retries must be positive, got %d", c.Source.MaxRetries)
	}
	if c.Source.MaxWorkers <= 0 {
		return fmt.Errorf("source.max_workers must be positive, got %d", c.Source.MaxWorkers)
	}
	if c.Scrape.MaxPages < 0 {
		return fmt.Errorf("scrape.max_pages must not be negative, got %d", c.Scrape.MaxPages)
	}

	switch c.Output.Compression {
	case "", "none", "zstd":
	default:
		return fmt.Errorf("unsupported output.compression %q", c.Output.Compression)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.base_url", "https://www.lovelybooks.de")
	v.SetDefault("source.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("source.page_size", 60)
	v.SetDefault("source.timeout", 60*time.Second)
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.retry_wait", 2*time.Second)
	v.SetDefault("source.max_workers", runtime.NumCPU())
	v.SetDefault("source.max_requests_per_second", 0)
	v.SetDefault("source.proxies", []string{})

	v.SetDefault("scrape.categories", []string{"romantasy", "fantasy"})
	v.SetDefault("scrape.max_pages", 0)
	v.SetDefault("scrape.progress_every", 50)

	v.SetDefault("text.strip_markup", true)
	v.SetDefault("text.remove_stopwords", false)
	v.SetDefault("text.language", "de")

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.prefix", "books")
	v.SetDefault("output.compression", "none")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/collector.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("metrics.namespace", "lovelybooks")
	v.SetDefault("metrics.address", "")
}
