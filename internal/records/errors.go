package records

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrEmptyID is returned before any request when a record id is empty or blank.
var ErrEmptyID = errors.New("employee id must not be empty")

// ErrInvalidPagination is returned before any request when page or perPage is below 1.
var ErrInvalidPagination = errors.New("page and perPage must be positive")

// StatusError reports a response whose status was not a success.
// Its message always carries the numeric status and the status text.
type StatusError struct {
	Op         string
	Status     int
	StatusText string
	URL        string
	// Message is the store's own explanation, when the body carried one.
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("failed to %s: %d %s", e.Op, e.Status, e.StatusText)
	if e.Message != "" {
		msg += " (" + e.Message + ")"
	}
	return msg
}

// IsNotFound reports whether err is a StatusError for a missing record.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// Error represents a failure that happened before a status could be read:
// building the request, the transport itself or decoding the body.
type Error struct {
	Op      string
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to %s: %s: %v", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// PageError reports a list response whose pagination metadata is inconsistent.
type PageError struct {
	Op      string
	Message string
}

func (e *PageError) Error() string {
	return fmt.Sprintf("failed to %s: invalid page: %s", e.Op, e.Message)
}

// statusText extracts the reason phrase from a response status line such as
// "404 Not Found", falling back to the standard text for the code.
func statusText(resp *http.Response) string {
	if _, text, ok := strings.Cut(resp.Status, " "); ok && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}
	return http.StatusText(resp.StatusCode)
}
