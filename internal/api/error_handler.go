package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders {"error": "<message>"}. Anything
// unrecognised is logged with its cause chain and answered with a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors: bind and validation failures, unknown routes.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Backend failures may carry domain sentinels in their cause chain
	// (a corrupt stored row fails to parse). They are still 500s.
	if errors.Is(err, domain.ErrUnexpected) {
		return unexpected(err, log, c)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, domain.ErrIncorrectCredentials):
		return http.StatusUnauthorized, "Incorrect credentials"
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return http.StatusConflict, "User already exists"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusBadRequest, "Missing auth token"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid auth token"
	}
	return unexpected(err, log, c)
}

func unexpected(err error, log zerolog.Logger, c echo.Context) (int, string) {
	ev := log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
	if oe, ok := oops.AsOops(err); ok {
		ev = ev.Interface("code", oe.Code()).Fields(oe.Context())
	}
	ev.Msg("unexpected error")

	return http.StatusInternalServerError, "Unexpected error"
}
