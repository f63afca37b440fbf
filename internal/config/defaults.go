package config

import (
	"github.com/knadh/koanf/v2"
)

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"server.host": "0.0.0.0",
		"server.port": 8000,

		"auth.api_key":     "",
		"auth.environment": EnvDevelopment,

		"convert.ffmpeg":   "ffmpeg",
		"convert.ffprobe":  "ffprobe",
		"convert.work_dir": "",

		"sweep.max_age":  "1h",
		"sweep.interval": "10m",

		"limits.max_upload": "50M",

		"logging.level": "info",
	}

	for key, val := range defaults {
		k.Set(key, val)
	}
	return nil
}
