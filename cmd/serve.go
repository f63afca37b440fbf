package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/viperadnan-git/gifforge/internal/config"
	"github.com/viperadnan-git/gifforge/internal/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the conversion service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Pre-shared API key required for conversion requests",
				Sources: cli.EnvVars("GF_AUTH_API_KEY"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if v := cmd.String("api-key"); v != "" {
				cfg.Auth.APIKey = v
			}
			if v := cmd.String("log-level"); v != "" {
				cfg.Logging.Level = v
			}

			if cfg.Auth.APIKey == "" {
				if cfg.Auth.Environment == config.EnvProduction {
					return fmt.Errorf("auth.api_key is required in production (set GF_AUTH_API_KEY env or auth.api_key in config)")
				}
				cfg.Auth.APIKey = config.DevelopmentAPIKey
				log.Warn().Msg("using default development API key - change in production!")
			}

			return server.Run(ctx, cfg)
		},
	}
}
