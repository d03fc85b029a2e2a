// Package config loads application configuration from file and
// environment and initializes the global logger.
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
	Crosswalk CrosswalkConfig `yaml:"crosswalk" mapstructure:"crosswalk"`
	IPUMS     IPUMSConfig     `yaml:"ipums" mapstructure:"ipums"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Runlog    RunlogConfig    `yaml:"runlog" mapstructure:"runlog"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// CrosswalkConfig configures the detection and normalization pipeline.
type CrosswalkConfig struct {
	SourceURL     string  `yaml:"source_url" mapstructure:"source_url"`
	SampleCap     int     `yaml:"sample_cap" mapstructure:"sample_cap"`
	MinScore      float64 `yaml:"min_score" mapstructure:"min_score"`
	SocPolicy     string  `yaml:"soc_policy" mapstructure:"soc_policy"`
	ResolvePolicy string  `yaml:"resolve_policy" mapstructure:"resolve_policy"`
	SkipRows      int     `yaml:"skip_rows" mapstructure:"skip_rows"`
}

// IPUMSConfig holds IPUMS API settings.
type IPUMSConfig struct {
	APIKey     string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	Collection string `yaml:"collection" mapstructure:"collection"`
}

// StoreConfig configures the Postgres crosswalk table.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RunlogConfig configures the local run log database.
type RunlogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// FetchConfig configures the HTTP downloader.
type FetchConfig struct {
	UserAgent  string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxRetries int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// CensusWorkbookURL is the published 2018 occupation code list with
// crosswalk.
const CensusWorkbookURL = "https://www2.census.gov/programs-surveys/demo/guidance/industry-occupation/2018-occupation-code-list-and-crosswalk.xlsx"

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OCCWALK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("crosswalk.source_url", CensusWorkbookURL)
	v.SetDefault("crosswalk.sample_cap", 400)
	v.SetDefault("crosswalk.min_score", 0.5)
	v.SetDefault("crosswalk.soc_policy", "strict")
	v.SetDefault("crosswalk.resolve_policy", "strict")
	v.SetDefault("crosswalk.skip_rows", 0)
	v.SetDefault("ipums.api_key", "")
	v.SetDefault("ipums.base_url", "https://api.ipums.org")
	v.SetDefault("ipums.collection", "cps")
	v.SetDefault("store.database_url", "")
	v.SetDefault("runlog.path", "occwalk.db")
	v.SetDefault("fetch.user_agent", "occwalk/1.0")
	v.SetDefault("fetch.max_retries", 3)
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
