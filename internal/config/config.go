package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Cache    CacheConfig    `yaml:"cache" envconfig:"CACHE"`
	Radar    RadarConfig    `yaml:"radar" envconfig:"RADAR"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// AnalysisConfig contains engine limits for workbook inputs
type AnalysisConfig struct {
	MaxFileSizeBytes int64  `yaml:"max_file_size_bytes" envconfig:"MAX_FILE_SIZE_BYTES"`
	DefaultLang      string `yaml:"default_lang" envconfig:"DEFAULT_LANG"`
}

// CacheConfig bounds the deterministic analysis cache
type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl" envconfig:"TTL"`
	MaxEntries int           `yaml:"max_entries" envconfig:"MAX_ENTRIES"`
}

// RadarConfig locates the optional dimension library override
type RadarConfig struct {
	LibraryPath string `yaml:"library_path" envconfig:"LIBRARY_PATH"`
}

// Load loads configuration from environment variables and an optional
// config file; environment takes precedence, defaults fill the rest.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("KPILENS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := findConfigFile(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills every field left unset by env and file
func (c *Config) applyDefaults() {
	def := Default()
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	if c.Logging.Output == "" {
		c.Logging.Output = def.Logging.Output
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = def.Logging.FilePath
	}
	if c.Analysis.MaxFileSizeBytes == 0 {
		c.Analysis.MaxFileSizeBytes = def.Analysis.MaxFileSizeBytes
	}
	if c.Analysis.DefaultLang == "" {
		c.Analysis.DefaultLang = def.Analysis.DefaultLang
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = def.Cache.TTL
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = def.Cache.MaxEntries
	}
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Cache.TTL == 0 {
		envConfig.Cache.TTL = fileConfig.Cache.TTL
	}
	if envConfig.Cache.MaxEntries == 0 {
		envConfig.Cache.MaxEntries = fileConfig.Cache.MaxEntries
	}
	if envConfig.Radar.LibraryPath == "" {
		envConfig.Radar.LibraryPath = fileConfig.Radar.LibraryPath
	}
	if envConfig.Analysis.MaxFileSizeBytes == 0 {
		envConfig.Analysis.MaxFileSizeBytes = fileConfig.Analysis.MaxFileSizeBytes
	}
	if envConfig.Analysis.DefaultLang == "" {
		envConfig.Analysis.DefaultLang = fileConfig.Analysis.DefaultLang
	}

	return envConfig
}

// validate normalizes and checks the configuration
func (c *Config) validate() error {
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max entries must be positive, got %d", c.Cache.MaxEntries)
	}
	if c.Analysis.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.Analysis.MaxFileSizeBytes)
	}

	// Always JSON logs
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// findConfigFile returns the first config file found in common locations
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Analysis: AnalysisConfig{
			MaxFileSizeBytes: 32 << 20,
			DefaultLang:      "en",
		},
		Cache: CacheConfig{
			TTL:        30 * time.Minute,
			MaxEntries: 8,
		},
		Radar: RadarConfig{},
	}
}
