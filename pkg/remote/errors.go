package remote

import (
	"errors"
	"fmt"
)

// genericErrorMessage is surfaced when the service returns a failure status
// without a parsable {mensagem} body.
const genericErrorMessage = "account service request failed"

// Error is a non-2xx response from the account service. Message carries the
// service's own error text when it provided one.
type Error struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("remote: %s (status %d)", e.Message, e.StatusCode)
}

// AsError unwraps err into a *Error when it is one.
func AsError(err error) (*Error, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	re, ok := AsError(err)
	return ok && re.StatusCode == 404
}
