// Package config loads application configuration from file and
// environment and installs the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog  CatalogConfig  `yaml:"catalog" mapstructure:"catalog"`
	Raster   RasterConfig   `yaml:"raster" mapstructure:"raster"`
	Tiles    TilesConfig    `yaml:"tiles" mapstructure:"tiles"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// CatalogConfig configures the STAC search client.
type CatalogConfig struct {
	BaseURL        string   `yaml:"base_url" mapstructure:"base_url"`
	Collections    []string `yaml:"collections" mapstructure:"collections"`
	RequestsPerSec float64  `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	MaxRetries     int      `yaml:"max_retries" mapstructure:"max_retries"`
}

// RasterConfig configures the band fetcher.
type RasterConfig struct {
	MaxAttempts        int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffSecs int `yaml:"initial_backoff_secs" mapstructure:"initial_backoff_secs"`
	AttemptTimeoutSecs int `yaml:"attempt_timeout_secs" mapstructure:"attempt_timeout_secs"`
	MaxOverviewDim     int `yaml:"max_overview_dim" mapstructure:"max_overview_dim"`
}

// TilesConfig configures the external tile server used for visualization.
type TilesConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnalysisConfig holds analysis defaults the flags fall back to.
type AnalysisConfig struct {
	MaxCloudCover float64 `yaml:"max_cloud_cover" mapstructure:"max_cloud_cover"`
	SearchLimit   int     `yaml:"search_limit" mapstructure:"search_limit"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LANDSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("catalog.base_url", "https://earth-search.aws.element84.com/v1")
	v.SetDefault("catalog.collections", []string{"sentinel-2-l2a"})
	v.SetDefault("catalog.requests_per_sec", 5)
	v.SetDefault("catalog.max_retries", 3)
	v.SetDefault("raster.max_attempts", 3)
	v.SetDefault("raster.initial_backoff_secs", 2)
	v.SetDefault("raster.attempt_timeout_secs", 120)
	v.SetDefault("raster.max_overview_dim", 1024)
	v.SetDefault("tiles.base_url", "https://titiler.xyz")
	v.SetDefault("analysis.max_cloud_cover", 10)
	v.SetDefault("analysis.search_limit", 10)
	v.SetDefault("analysis.timeout_secs", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration is usable before any command runs.
func (c *Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return eris.New("config: catalog.base_url is required")
	}
	if len(c.Catalog.Collections) == 0 {
		return eris.New("config: catalog.collections must name at least one collection")
	}
	if c.Analysis.MaxCloudCover < 0 || c.Analysis.MaxCloudCover > 100 {
		return eris.Errorf("config: analysis.max_cloud_cover must be between 0 and 100, got %v", c.Analysis.MaxCloudCover)
	}
	if c.Raster.MaxAttempts < 1 || c.Raster.MaxAttempts > 10 {
		return eris.Errorf("config: raster.max_attempts must be between 1 and 10, got %d", c.Raster.MaxAttempts)
	}
	if c.Analysis.SearchLimit < 1 || c.Analysis.SearchLimit > 100 {
		return eris.Errorf("config: analysis.search_limit must be between 1 and 100, got %d", c.Analysis.SearchLimit)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
