package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	deliverycontext "identity/internal/delivery/context"
	"identity/internal/delivery/http/response"
	domainerrors "identity/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler. Domain errors
// carry their own status code and user-facing message; anything else is
// logged and collapsed into a generic 500 so internals never leak.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Rate-limit errors additionally announce when to retry.
	var rateErr *domainerrors.RateLimitError
	if errors.As(err, &rateErr) {
		c.Response().Header().Set("Retry-After", strconv.FormatInt(rateErr.RetryAfterSeconds(), 10))
		m.writeJSON(c, rateErr.HTTPCode(), rateErr.Message())

		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		m.writeJSON(c, appErr.HTTPCode(), appErr.Message())

		return
	}

	// Echo's own errors (404 route not found, 405, body too large, ...).
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		m.writeJSON(c, httpErr.Code, message)

		return
	}

	m.log(c).Error("Unhandled error",
		slog.Any("error", err),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)

	m.writeJSON(c, http.StatusInternalServerError, "Internal server error")
}

func (m *ErrorMiddleware) writeJSON(c echo.Context, code int, message string) {
	if err := c.JSON(code, response.Message{Message: message}); err != nil {
		m.log(c).Error("Failed to write error response", slog.Any("error", err))
	}
}

func (m *ErrorMiddleware) log(c echo.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)
}
