package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xaenox/comment-triage/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleError renders every failure as {"error": message}. Unknown methods
// on known paths are reported like unknown paths.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := err.Error()

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		message = fmt.Sprint(he.Message)
		if code == http.StatusMethodNotAllowed {
			code = http.StatusNotFound
			message = http.StatusText(http.StatusNotFound)
		}
	case errors.Is(err, storage.ErrNotFound):
		code = http.StatusNotFound
		message = "Comment not found"
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error("Handler error",
			zap.String("path", c.Request().URL.Path),
			zap.Error(err))
	}

	if err := c.JSON(code, errorResponse{Error: message}); err != nil {
		s.logger.Warn("Failed to write error response", zap.Error(err))
	}
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v untouched.
func decodeBody(c echo.Context, v interface{}) error {
	body := c.Request().Body
	if body == nil {
		return nil
	}

	err := json.NewDecoder(body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body: "+err.Error())
}
