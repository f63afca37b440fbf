package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/viperadnan-git/gifforge/internal/api/response"
	"github.com/viperadnan-git/gifforge/internal/core/artifact"
	"github.com/viperadnan-git/gifforge/internal/core/convert"
	"github.com/viperadnan-git/gifforge/internal/core/job"
)

var allowedExtensions = map[string]bool{
	"mp4":  true,
	"avi":  true,
	"mov":  true,
	"mkv":  true,
	"webm": true,
}

type Handler struct {
	runner      *job.Runner
	registry    *job.Registry
	store       *artifact.Store
	sweepMaxAge time.Duration
}

func NewHandler(runner *job.Runner, registry *job.Registry, store *artifact.Store, sweepMaxAge time.Duration) *Handler {
	return &Handler{
		runner:      runner,
		registry:    registry,
		store:       store,
		sweepMaxAge: sweepMaxAge,
	}
}

// Convert accepts a multipart video upload, validates it synchronously, and
// submits an asynchronous conversion job. The response carries only the job
// id; results are fetched via /progress and /download.
func (h *Handler) Convert(c echo.Context) error {
	// Opportunistic cleanup of expired artifacts on each submission.
	go h.store.Sweep(h.sweepMaxAge)

	file, err := c.FormFile("video")
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid_request", "no video file provided")
	}
	if file.Filename == "" || file.Size == 0 {
		return response.Error(c, http.StatusBadRequest, "invalid_request", "no video selected")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if !allowedExtensions[ext] {
		return response.Error(c, http.StatusBadRequest, "invalid_request",
			"invalid file type, please upload MP4, AVI, MOV, MKV, or WebM")
	}

	opts, err := parseOptions(c)
	if err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid_request", err.Error())
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, http.StatusInternalServerError, "internal_error", "failed to read upload")
	}
	defer src.Close()

	jobID, err := h.runner.Submit(src, file.Filename, opts)
	if err != nil {
		log.Error().Err(err).Msg("job submission failed")
		return response.Error(c, http.StatusInternalServerError, "internal_error", "failed to start conversion")
	}

	log.Info().Str("job_id", jobID).Str("filename", file.Filename).Int64("size", file.Size).Msg("conversion job submitted")

	return response.Success(c, http.StatusAccepted, map[string]string{"job_id": jobID})
}

// parseOptions reads conversion parameters from the form, applying defaults
// and rejecting malformed values before any job is created.
func parseOptions(c echo.Context) (convert.Options, error) {
	opts := convert.DefaultOptions()

	if v := c.FormValue("fps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return opts, fmt.Errorf("fps must be a positive integer")
		}
		opts.FPS = n
	}
	if v := c.FormValue("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, fmt.Errorf("scale must be a positive number")
		}
		opts.Scale = f
	}
	if v := c.FormValue("start_time"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return opts, fmt.Errorf("start_time must be a non-negative number")
		}
		opts.StartTime = f
	}
	if v := c.FormValue("duration"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, fmt.Errorf("duration must be a positive number")
		}
		opts.Duration = f
	}
	if v := c.FormValue("loops"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("loops must be a non-negative integer")
		}
		opts.Loops = n
	}
	if v := c.FormValue("speed"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("speed must be a number")
		}
		// Non-positive speed is policy, not an error: treated as 1.0 downstream.
		opts.Speed = f
	}

	return opts, nil
}
