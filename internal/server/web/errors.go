package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/filedrop/internal/models"
)

// handleError renders every failure as {"error": message}. Internal causes
// are logged, never sent.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	ctx := c.Request().Context()
	if code >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "status", code, "uri", c.Request().RequestURI, "error", err)
	} else {
		s.logger.Debug(ctx, "request rejected", "status", code, "uri", c.Request().RequestURI, "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, models.ErrorResponse{Error: message})
	}
	if werr != nil {
		s.logger.Warn(ctx, "error response not sent", "error", werr)
	}
}
