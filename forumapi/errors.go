package forumapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Error is a non-2xx response from the backend. Msg is the trimmed response
// body, which the backend uses for human readable error text.
type Error struct {
	Status    int
	Msg       string
	RequestID string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Msg)
}

func newError(resp *http.Response, body []byte) *Error {
	e := &Error{
		Status: resp.StatusCode,
		Msg:    strings.TrimSpace(string(body)),
	}
	if resp.Request != nil {
		e.RequestID = resp.Request.Header.Get(RequestIDHeader)
	}
	return e
}

// AsHTTPError returns the *Error inside err, if there is one.
func AsHTTPError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsHTTPError returns true if the backend answered with a non-2xx status, as
// opposed to the request failing in transport or decoding.
func IsHTTPError(err error) bool {
	_, ok := AsHTTPError(err)
	return ok
}

// IsUnauthorized returns true for 401 and 403 responses.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsHTTPError(err)
	if !ok {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}
