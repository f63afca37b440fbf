package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/viperadnan-git/gifforge/internal/api"
	"github.com/viperadnan-git/gifforge/internal/config"
	"github.com/viperadnan-git/gifforge/internal/core/artifact"
	"github.com/viperadnan-git/gifforge/internal/core/convert"
	"github.com/viperadnan-git/gifforge/internal/core/job"
)

func Run(ctx context.Context, cfg *config.Config) error {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if _, err := exec.LookPath(cfg.Convert.FFmpeg); err != nil {
		log.Warn().Str("binary", cfg.Convert.FFmpeg).Msg("ffmpeg not found in PATH, conversions will fail")
	}

	sweepMaxAge := parseDurationOr(cfg.Sweep.MaxAge, time.Hour)
	sweepInterval := parseDurationOr(cfg.Sweep.Interval, 10*time.Minute)

	store := artifact.NewStore(cfg.Convert.WorkDir)
	registry := job.NewRegistry()
	converter := convert.NewFFmpeg(cfg.Convert.FFmpeg, cfg.Convert.FFprobe)
	runner := job.NewRunner(registry, store, converter)

	e := echo.New()
	e.HideBanner = true

	api.SetupRouter(e, api.RouterConfig{
		APIKey:      cfg.Auth.APIKey,
		MaxUpload:   cfg.Limits.MaxUpload,
		Runner:      runner,
		Registry:    registry,
		Store:       store,
		SweepMaxAge: sweepMaxAge,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepLoop(ctx, store, registry, sweepMaxAge, sweepInterval)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()
	log.Info().Str("addr", addr).Str("env", cfg.Auth.Environment).Msg("server listening")

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	return nil
}

// sweepLoop reclaims artifacts and stale registry entries in the background,
// covering jobs that are never polled or downloaded.
func sweepLoop(ctx context.Context, store *artifact.Store, registry *job.Registry, maxAge, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Sweep(maxAge)
			registry.Reap(maxAge)
		}
	}
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
