// Package config loads the service configuration from a YAML file, a .env
// file and DOCFMT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DOCFMT_SERVER_PORT.
const EnvPrefix = "DOCFMT"

// Config is the application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Rules      RulesConfig      `mapstructure:"rules"`
	Annotation AnnotationConfig `mapstructure:"annotation"`
	Workers    WorkersConfig    `mapstructure:"workers"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port" validate:"min=1,max=65535"`
	Mode          string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	MaxUploadSize int64         `mapstructure:"max_upload_size" validate:"min=1"` // bytes
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RulesConfig configures where rule sets live and which applies by default.
type RulesConfig struct {
	Dir    string `mapstructure:"dir" validate:"required"`
	Preset string `mapstructure:"preset" validate:"omitempty,oneof=none academic"`
}

// AnnotationConfig configures the comments written into checked documents.
type AnnotationConfig struct {
	Author   string `mapstructure:"author"`
	Initials string `mapstructure:"initials"`
	Language string `mapstructure:"language"` // empty uses the rule set's
}

// WorkersConfig bounds how many passes run at once.
type WorkersConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"min=1"`
}

// CacheConfig configures the extracted-rules cache.
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Type     string `mapstructure:"type" validate:"oneof=memory redis"`
	Address  string `mapstructure:"address" validate:"required_if=Type redis"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
	TTL      int    `mapstructure:"ttl" validate:"min=0"` // seconds
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file"`
}

// Load reads configPath (optional; a missing file means defaults), then
// .env in the working directory, then environment overrides, and validates
// the result.
func Load(configPath string) (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.max_upload_size", 32<<20)

	v.SetDefault("rules.dir", "./data/rules")
	v.SetDefault("rules.preset", "none")

	v.SetDefault("annotation.author", "docfmt")
	v.SetDefault("annotation.initials", "DF")
	v.SetDefault("annotation.language", "")

	v.SetDefault("workers.concurrency", 4)

	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 3600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}
