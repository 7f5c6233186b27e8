package insightvm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a non-2xx response from the console API. It carries
// the numeric status code and whatever error body the server returned.
type APIError struct {
	StatusCode int    `json:"status"`
	Message    string `json:"message"`
	Body       []byte `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error: status %d", e.StatusCode)
	}

	return fmt.Sprintf("API error: status %d: %s", e.StatusCode, e.Message)
}

// TransportError represents a connection-level failure: DNS resolution,
// refused connection, TLS handshake, or a request that exceeded its
// configured deadline. These are transient by nature, unlike APIError.
type TransportError struct {
	Op       string
	URL      string
	Err      error
	TimedOut bool
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s %s: request timed out: %v", e.Op, e.URL, e.Err)
	}

	return fmt.Sprintf("%s %s: transport failure: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline expiry rather than a
// connection-level fault.
func (e *TransportError) Timeout() bool {
	return e.TimedOut
}

// Static errors that can be wrapped with context.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrEndpointRequired    = errors.New("console endpoint is required")
	ErrCredentialsRequired = errors.New("username and password are required")
	ErrSkipTLSOnlyInDev    = errors.New("skipTLS is only allowed in development environments")
	ErrMutateFuncRequired  = errors.New("mutate function is required")
	ErrStatusFuncRequired  = errors.New("status function is required")
	ErrNoMoreItems         = errors.New("no more items")
	ErrCacheDisabled       = errors.New("cache disabled")
)

// ParseAPIError decodes a server error body into an APIError. The console
// returns {"status": N, "message": "..."} bodies; anything unparseable
// still yields a usable APIError with the raw body attached.
func ParseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Body: body}

	if len(body) > 0 {
		var wire struct {
			Message string `json:"message"`
		}

		if err := json.Unmarshal(body, &wire); err == nil {
			apiErr.Message = wire.Message
		}
	}

	return apiErr
}

// IsNotFound checks if the error is a 404 from the API.
func IsNotFound(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}

	return false
}

// IsUnauthorized checks if the error is a 401 from the API.
func IsUnauthorized(err error) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}

	return false
}

// IsTimeout checks if the error is a request-level deadline expiry.
func IsTimeout(err error) bool {
	transportErr := &TransportError{}
	if errors.As(err, &transportErr) {
		return transportErr.Timeout()
	}

	return false
}

// IsTransient reports whether an error is worth retrying: transport
// failures and request timeouts qualify, HTTP failures do not. The
// Operation Poller uses this to tolerate a failed status check without
// aborting the wait.
func IsTransient(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}
