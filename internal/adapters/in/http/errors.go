package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"souvlaki/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error is the body of every failed response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// toError maps an error to its status code and response body. Unexpected errors get
// a generic message so store internals never reach clients.
func toError(err error) Error {
	var (
		httpErr  *echo.HTTPError
		upstream *errs.UpstreamError
	)

	switch {
	case errors.As(err, &httpErr):
		return Error{Code: httpErr.Code, Message: fmt.Sprint(httpErr.Message)}
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return Error{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, errs.ErrObjectNotFound):
		return Error{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, errs.ErrStatusTransitionIsInvalid),
		errors.Is(err, errs.ErrConcurrentModification):
		return Error{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, ErrUnauthorized):
		return Error{Code: http.StatusUnauthorized, Message: err.Error()}
	case errors.Is(err, ErrForbidden):
		return Error{Code: http.StatusForbidden, Message: err.Error()}
	case errors.As(err, &upstream):
		return Error{Code: http.StatusInternalServerError, Message: upstream.Message}
	default:
		return Error{Code: http.StatusInternalServerError, Message: "internal server error"}
	}
}

func respondError(c echo.Context, err error) error {
	body := toError(err)
	if body.Code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}
	return c.JSON(body.Code, body)
}

// NewErrorHandler renders errors returned by middleware and unknown routes in the
// same shape as handler errors.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		body := toError(err)
		if body.Code >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(body.Code)
		} else {
			err = c.JSON(body.Code, body)
		}
		if err != nil {
			logger.ErrorContext(c.Request().Context(), "failed to write error response", "error", err)
		}
	}
}
