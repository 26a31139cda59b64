package pipeline

import (
	"fmt"

	"github.com/lexigrade/api/internal/model"
)

// Error is a phase-level pipeline failure carrying the machine code and
// retryability surfaced to callers.
type Error struct {
	Code    model.ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether resubmitting the job can succeed.
func (e *Error) Retryable() bool { return e.Code.Retryable() }

func newError(code model.ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}
