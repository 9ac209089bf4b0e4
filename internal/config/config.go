package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. PROTEINSTRUCT_LOG_LEVEL.
const EnvPrefix = "PROTEINSTRUCT"

type Config struct {
	Addr                 string `mapstructure:"addr"`
	LogFile              string `mapstructure:"log_file"`
	LogLevel             string `mapstructure:"log_level"`
	UniProtBaseURL       string `mapstructure:"uniprot_base_url"`
	SwissModelBaseURL    string `mapstructure:"swissmodel_base_url"`
	FetchTimeoutSecs     int64  `mapstructure:"fetch_timeout_seconds"`
	StructureTimeoutSecs int64  `mapstructure:"structure_timeout_seconds"`
	MinLength            int    `mapstructure:"min_length"`
	WrapWidth            int    `mapstructure:"wrap_width"`
	CacheSize            int    `mapstructure:"cache_size"`
	DefaultMaxSeq        int    `mapstructure:"default_max_seq"`
	MaxSessions          int    `mapstructure:"max_sessions"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("uniprot_base_url", "https://rest.uniprot.org")
	v.SetDefault("swissmodel_base_url", "https://swissmodel.expasy.org")
	v.SetDefault("fetch_timeout_seconds", 120)
	v.SetDefault("structure_timeout_seconds", 60)
	v.SetDefault("min_length", 20)
	v.SetDefault("wrap_width", 80)
	v.SetDefault("cache_size", 32)
	v.SetDefault("default_max_seq", 100)
	v.SetDefault("max_sessions", 1024)
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	c.normalize()
	return &c
}

// LoadConfig loads a config file from the given path. If path is empty, looks for ./config.json.
// A missing file is not fatal: defaults and PROTEINSTRUCT_* environment overrides still apply.
func LoadConfig(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = "config.json"
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isMissing(err) {
		return nil, err
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	c.normalize()
	return &c, nil
}

func isMissing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func (c *Config) normalize() {
	if c.MinLength <= 0 {
		c.MinLength = 20
	}
	if c.WrapWidth <= 0 {
		c.WrapWidth = 80
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 32
	}
	if c.DefaultMaxSeq <= 0 {
		c.DefaultMaxSeq = 100
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = 1024
	}
}

// FetchTimeout is the deadline for one proteome download.
func (c *Config) FetchTimeout() time.Duration {
	if c.FetchTimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.FetchTimeoutSecs) * time.Second
}

// StructureTimeout is the deadline for one model download.
func (c *Config) StructureTimeout() time.Duration {
	if c.StructureTimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.StructureTimeoutSecs) * time.Second
}
