package gateway

import (
	"errors"
	"fmt"
)

// RequestFailedError is returned for any HTTP status outside 200-299.
type RequestFailedError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("API Error: %d - %s", e.Status, e.Body)
}

// MalformedResponseError is returned when a 2xx body is not valid JSON.
type MalformedResponseError struct {
	Endpoint string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Endpoint, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ApplicationError is a well-formed envelope whose code is not success.
type ApplicationError struct {
	Code    int
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Code, e.Message)
}

// ShapeMismatchError is a successful payload missing the expected field.
type ShapeMismatchError struct {
	Field string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("unexpected response shape: %s missing or wrong type", e.Field)
}

// Describe turns any error from the data layer into the short text shown
// in place of data.
func Describe(err error) string {
	var reqErr *RequestFailedError
	var malformed *MalformedResponseError
	var appErr *ApplicationError
	var shape *ShapeMismatchError

	switch {
	case errors.As(err, &reqErr):
		return fmt.Sprintf("request failed (%d)", reqErr.Status)
	case errors.As(err, &malformed):
		return "backend returned an unreadable response"
	case errors.As(err, &appErr):
		if appErr.Message != "" {
			return appErr.Message
		}
		return fmt.Sprintf("backend error %d", appErr.Code)
	case errors.As(err, &shape):
		return "backend returned data in an unexpected format"
	default:
		return "backend unavailable"
	}
}
