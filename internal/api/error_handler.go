package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/facegate/auth-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the domain error taxonomy to deterministic HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	// Malformed input.
	case errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, domain.ErrInvalidRegistration):
		return http.StatusBadRequest, err.Error()

	// Capture-quality problems: the photo extracted wrongly, distinct from
	// a denial so the client can prompt for a retake.
	case errors.Is(err, domain.ErrNoFaceDetected),
		errors.Is(err, domain.ErrMultipleFacesDetected):
		return http.StatusUnprocessableEntity, err.Error()

	// Denials.
	case errors.Is(err, domain.ErrWrongPassword),
		errors.Is(err, domain.ErrNoMatch),
		errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()

	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "account not found"

	case errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrProvisioningConflict):
		return http.StatusConflict, err.Error()

	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, err.Error()

	case errors.Is(err, domain.ErrIdentityProviderUnavailable):
		return http.StatusBadGateway, err.Error()

	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error().Err(err).Msg("account store unavailable")
		return http.StatusServiceUnavailable, "account store unavailable"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
