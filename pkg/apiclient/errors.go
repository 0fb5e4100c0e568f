package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents an RFC 7807 problem returned by the API.
type APIError struct {
	// Code is the namespace error code, e.g. FileNotFoundException.
	// Empty for errors outside the namespace taxonomy.
	Code       string `json:"code,omitempty"`
	Title      string `json:"title"`
	Detail     string `json:"detail,omitempty"`
	StatusCode int    `json:"status"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// ErrorCode returns the namespace error code carried by the problem.
func (e *APIError) ErrorCode() string {
	return e.Code
}

// ErrorDetail returns the problem detail, falling back to its title.
func (e *APIError) ErrorDetail() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFound returns true if this is a not found error.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// decodeError turns an error response into an *APIError. Bodies that are
// not problem documents are kept verbatim as the detail.
func decodeError(status int, body []byte) error {
	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && (apiErr.Title != "" || apiErr.Detail != "") {
		apiErr.StatusCode = status
		return &apiErr
	}
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &APIError{
		Title:      http.StatusText(status),
		Detail:     detail,
		StatusCode: status,
	}
}
