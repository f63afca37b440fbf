package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/viperadnan-git/gifforge/internal/api/handlers"
	"github.com/viperadnan-git/gifforge/internal/api/middleware"
	"github.com/viperadnan-git/gifforge/internal/core/artifact"
	"github.com/viperadnan-git/gifforge/internal/core/job"
)

type RouterConfig struct {
	APIKey      string
	MaxUpload   string
	Runner      *job.Runner
	Registry    *job.Registry
	Store       *artifact.Store
	SweepMaxAge time.Duration
}

func SetupRouter(e *echo.Echo, cfg RouterConfig) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST"},
	}))
	e.Use(echomw.BodyLimit(cfg.MaxUpload))
	e.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(20)))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h := handlers.NewHandler(cfg.Runner, cfg.Registry, cfg.Store, cfg.SweepMaxAge)

	e.POST("/convert", h.Convert, middleware.APIKey(cfg.APIKey))
	e.GET("/progress/:id", h.Progress)
	e.GET("/download/:id", h.Download)
}
