package failure

import (
	"errors"
	"net/http"
)

// Failure is an error that carries the HTTP status it should be reported with.
// Errors that are not a Failure are treated as internal.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	cause   error
}

func (e *Failure) Error() string {
	return e.Message
}

func (e *Failure) Unwrap() error {
	return e.cause
}

func New(code int, message string) error {
	return &Failure{Code: code, Message: message}
}

// Wrap keeps cause reachable through errors.Is and errors.As while reporting message.
func Wrap(code int, message string, cause error) error {
	return &Failure{Code: code, Message: message, cause: cause}
}

// BadRequest reports err as a client error. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return Wrap(http.StatusBadRequest, err.Error(), err)
}

func BadRequestFromString(message string) error {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) error {
	return New(http.StatusForbidden, message)
}

// NotFound takes the full message, e.g. "room not found".
func NotFound(message string) error {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) error {
	return New(http.StatusConflict, message)
}

// InternalError hides err behind a generic 500. A nil err stays nil.
func InternalError(err error) error {
	if err == nil {
		return nil
	}

	return Wrap(http.StatusInternalServerError, err.Error(), err)
}

// GetCode returns the status of the outermost Failure in err's chain, or 500.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}
