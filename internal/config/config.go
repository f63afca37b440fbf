package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// DevelopmentAPIKey is the fallback credential outside production mode.
	DevelopmentAPIKey = "development-api-key-change-in-production"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Auth    AuthConfig    `koanf:"auth"`
	Convert ConvertConfig `koanf:"convert"`
	Sweep   SweepConfig   `koanf:"sweep"`
	Limits  LimitsConfig  `koanf:"limits"`
	Logging LoggingConfig `koanf:"logging"`
}

type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

type AuthConfig struct {
	APIKey      string `koanf:"api_key"`
	Environment string `koanf:"environment"`
}

type ConvertConfig struct {
	FFmpeg  string `koanf:"ffmpeg"`
	FFprobe string `koanf:"ffprobe"`
	WorkDir string `koanf:"work_dir"`
}

type SweepConfig struct {
	MaxAge   string `koanf:"max_age"`
	Interval string `koanf:"interval"`
}

type LimitsConfig struct {
	MaxUpload string `koanf:"max_upload"`
}

type LoggingConfig struct {
	Level string `koanf:"level"`
}

// Load reads config from TOML file (if provided) then overlays env vars.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	// 2. Load TOML config file if provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, err
		}
	}

	// 3. Load env vars: GF_SERVER_PORT -> server.port
	// Only set env vars that have non-empty values to avoid overriding TOML config.
	if err := k.Load(env.ProviderWithValue("GF_", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		mapped := strings.Replace(
			strings.ToLower(strings.TrimPrefix(key, "GF_")),
			"_", ".", -1,
		)
		return mapped, value
	}), nil); err != nil {
		return nil, err
	}

	// 4. Handle top-level convenience env vars
	if v := os.Getenv("GF_API_KEY"); v != "" {
		k.Set("auth.api_key", v)
	}
	if v := os.Getenv("GF_ENV"); v != "" {
		k.Set("auth.environment", v)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if cfg.Convert.WorkDir == "" {
		cfg.Convert.WorkDir = os.TempDir()
	}

	return &cfg, nil
}
