package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/viperadnan-git/gifforge/internal/api/response"
)

// APIKey gates conversion requests behind the pre-shared credential. The key
// may arrive in the X-API-Key header or, for plain form posts, in the api_key
// form field. A missing key and an invalid key are distinct outcomes.
func APIKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := c.Request().Header.Get("X-API-Key")
			if provided == "" {
				// FormValue parses and caches the multipart form, so the
				// handler's FormFile call still sees the upload.
				provided = c.FormValue("api_key")
			}

			if provided == "" {
				return response.Error(c, http.StatusUnauthorized,
					"api_key_required", "API key required for conversion")
			}

			if provided != key {
				log.Debug().Str("path", c.Path()).Msg("rejected invalid API key")
				return response.Error(c, http.StatusForbidden,
					"api_key_invalid", "the provided API key is not valid")
			}

			return next(c)
		}
	}
}
