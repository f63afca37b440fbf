package handlers

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/viperadnan-git/gifforge/internal/api/response"
	"github.com/viperadnan-git/gifforge/internal/core/job"
)

// Download streams a completed job's GIF as an attachment. Handing the
// artifact back is what ends the job's lifecycle: a fully streamed download
// removes the registry entry and deletes the output file, so a second
// request for the same id returns not-found.
func (h *Handler) Download(c echo.Context) error {
	id := c.Param("id")

	j, ok := h.registry.Get(id)
	if !ok {
		return response.Error(c, http.StatusNotFound, "not_found", "job not found")
	}

	if j.Status != job.StatusCompleted {
		return response.Error(c, http.StatusBadRequest, "not_completed", "conversion not completed or failed")
	}

	if _, err := os.Stat(j.OutputPath); err != nil {
		// Completed job whose artifact vanished, e.g. swept before download.
		log.Warn().Str("job_id", id).Str("output", j.OutputPath).Msg("output missing for completed job")
		return response.Error(c, http.StatusNotFound, "output_missing", "output file not found")
	}

	name := fmt.Sprintf("converted_gif_%d.gif", time.Now().Unix())
	if err := c.Attachment(j.OutputPath, name); err != nil {
		return err
	}

	h.registry.Remove(id)
	h.store.Delete(j.OutputPath)
	log.Info().Str("job_id", id).Msg("artifact downloaded and disposed")
	return nil
}
