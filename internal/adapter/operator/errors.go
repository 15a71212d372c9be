package operator

import "errors"

// APIError is a failed request to the operator API. Message is the server's
// response body when one was provided, otherwise an operation-specific
// fallback; Error returns it verbatim so UI surfaces see exactly what the
// server said.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsNotFound returns true if the error is a 404.
func IsNotFound(err error) bool {
	var e *APIError
	if errors.As(err, &e) {
		return e.StatusCode == 404
	}
	return false
}

// IsForbidden returns true if the error is a 401 or 403.
func IsForbidden(err error) bool {
	var e *APIError
	if errors.As(err, &e) {
		return e.StatusCode == 401 || e.StatusCode == 403
	}
	return false
}
