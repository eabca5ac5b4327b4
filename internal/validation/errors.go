package validation

import "fmt"

// Error reports a form that failed validation. It is returned before any request is sent.
type Error struct {
	Fields Errors
}

// NewError wraps field errors, returning nil when there are none.
func NewError(fields Errors) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}

func (e *Error) Error() string {
	if len(e.Fields) == 1 {
		for field, msg := range e.Fields {
			return fmt.Sprintf("validation failed: %s: %s", field, msg)
		}
	}
	return fmt.Sprintf("validation failed: %d fields: %s", len(e.Fields), e.Fields.String())
}
