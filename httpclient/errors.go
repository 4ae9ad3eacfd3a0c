package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse is the error payload returned by the backend. API endpoints
// send a human-readable message; auth endpoints may answer in the OAuth
// error/error_description shape instead.
type ErrorResponse struct {
	Message          string `json:"message"`
	Err              string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ErrUnauthorized matches any *HTTPError with status 401 via errors.Is.
// Callers observing it must re-authenticate.
var ErrUnauthorized = errors.New("unauthorized")

// ErrRefreshTokenExpired indicates that the refresh token has expired or is
// invalid; a new sign-in is required.
var ErrRefreshTokenExpired = errors.New("refresh token expired or invalid")

// TransportError is a connection-level failure: the request never produced
// an HTTP response (DNS, dial, TLS, timeout). Never retried by this layer.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response, carrying the message extracted from the
// server's error payload and the raw body for callers that need more.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// Is reports ErrUnauthorized for 401 responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// RefreshError is a failure of the token refresh exchange itself. It is
// surfaced instead of the 401 that triggered the refresh.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string { return "token refresh failed: " + e.Err.Error() }

func (e *RefreshError) Unwrap() error { return e.Err }

// newHTTPError builds an HTTPError from a response and its already-read
// body.
func newHTTPError(resp *http.Response, body []byte) *HTTPError {
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Message:    extractMessage(resp.StatusCode, body),
		Body:       body,
	}
}

// extractMessage pulls the human-readable message out of an error body,
// falling back to the standard status text when the body carries none.
func extractMessage(status int, body []byte) string {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		switch {
		case er.Message != "":
			return er.Message
		case er.ErrorDescription != "":
			if er.Err != "" {
				return er.Err + ": " + er.ErrorDescription
			}
			return er.ErrorDescription
		case er.Err != "":
			return er.Err
		}
	}
	return http.StatusText(status)
}
