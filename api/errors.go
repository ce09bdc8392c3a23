package api

import (
	"context"
	"net/http"

	"github.com/YuminosukeSato/nameml/pkg/errors"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var valErr *errors.ValidationError
	var cfgErr *errors.InvalidConfigurationError
	switch {
	case errors.As(err, &valErr), errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.IsNotFitted(err):
		return http.StatusConflict
	case errors.Is(err, errors.ErrEmptyData), errors.Is(err, errors.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal failures from clients.
func publicMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
