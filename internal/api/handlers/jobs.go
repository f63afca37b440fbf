package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/viperadnan-git/gifforge/internal/api/response"
)

type progressBody struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

// Progress reports the current state of a job. Unknown or expired ids get a
// not-found envelope.
func (h *Handler) Progress(c echo.Context) error {
	j, ok := h.registry.Get(c.Param("id"))
	if !ok {
		return response.Error(c, http.StatusNotFound, "not_found", "job not found")
	}

	return response.Success(c, http.StatusOK, progressBody{
		Status:   string(j.Status),
		Progress: j.Progress,
		Error:    j.Error,
	})
}
