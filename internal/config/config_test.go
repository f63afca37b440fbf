package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8000 {
		t.Fatalf("server defaults: %+v", cfg.Server)
	}
	if cfg.Auth.Environment != EnvDevelopment {
		t.Fatalf("environment = %s", cfg.Auth.Environment)
	}
	if cfg.Convert.FFmpeg != "ffmpeg" || cfg.Convert.FFprobe != "ffprobe" {
		t.Fatalf("convert defaults: %+v", cfg.Convert)
	}
	if cfg.Convert.WorkDir != os.TempDir() {
		t.Fatalf("work dir = %s", cfg.Convert.WorkDir)
	}
	if cfg.Sweep.MaxAge != "1h" || cfg.Sweep.Interval != "10m" {
		t.Fatalf("sweep defaults: %+v", cfg.Sweep)
	}
	if cfg.Limits.MaxUpload != "50M" {
		t.Fatalf("max upload = %s", cfg.Limits.MaxUpload)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9090

[auth]
api_key = "file-key"
environment = "production"

[sweep]
max_age = "30m"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Auth.APIKey != "file-key" || cfg.Auth.Environment != EnvProduction {
		t.Fatalf("auth: %+v", cfg.Auth)
	}
	if cfg.Sweep.MaxAge != "30m" {
		t.Fatalf("max age = %s", cfg.Sweep.MaxAge)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Fatalf("host = %s", cfg.Server.Host)
	}
}

// TestConvenienceEnvOverrides: GF_API_KEY and GF_ENV win over file values.
func TestConvenienceEnvOverrides(t *testing.T) {
	t.Setenv("GF_API_KEY", "env-key")
	t.Setenv("GF_ENV", EnvProduction)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.APIKey != "env-key" {
		t.Fatalf("api key = %s", cfg.Auth.APIKey)
	}
	if cfg.Auth.Environment != EnvProduction {
		t.Fatalf("environment = %s", cfg.Auth.Environment)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
