package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/employee-directory/internal/directory"
	"github.com/jonathan/employee-directory/internal/records"
	"github.com/jonathan/employee-directory/internal/schemas"
	"github.com/jonathan/employee-directory/internal/validation"
)

// ErrBadRequest indicates a request body or query that could not be read.
type ErrBadRequest struct {
	Message string
	Cause   error
}

func (e *ErrBadRequest) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ErrBadRequest) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for an error returned by the directory.
// Failures of the record store itself surface as 502, except a missing record.
func HTTPStatus(err error) int {
	var (
		badRequest *ErrBadRequest
		invalid    *validation.Error
		schemaErr  *schemas.ValidationError
		statusErr  *records.StatusError
		pageErr    *records.PageError
		storeErr   *records.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &badRequest),
		errors.Is(err, records.ErrEmptyID),
		errors.Is(err, records.ErrInvalidPagination),
		errors.Is(err, directory.ErrImmutableField),
		errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &statusErr):
		switch statusErr.Status {
		case http.StatusNotFound:
			return http.StatusNotFound
		case http.StatusBadRequest:
			return http.StatusBadRequest
		default:
			return http.StatusBadGateway
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &pageErr), errors.As(err, &storeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with the status HTTPStatus picks. Validation
// failures also carry the per-field messages.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)

	var invalid *validation.Error
	if errors.As(err, &invalid) {
		s.jsonResponse(w, status, map[string]any{
			"error":  err.Error(),
			"fields": invalid.Fields,
		})
		return
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.errorResponse(w, status, err.Error())
}
