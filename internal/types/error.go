package types

import (
	"fmt"
	"net/http"
)

// CustomError is a client-facing error carrying its HTTP status
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// BadRequest builds a 400 CustomError for a rejected request
func BadRequest(errorType, format string, args ...interface{}) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: fmt.Sprintf(format, args...),
		Type:    errorType,
	}
}
