package llmanalysis

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrNoAPIKey indicates the request carried no API key for a provider
	// that requires one.
	ErrNoAPIKey = errors.New("llmanalysis: missing API key")

	// ErrInvalidResponse indicates the provider returned a body that does
	// not match the expected shape: missing or empty assistant text, or a
	// final payload that cannot be decoded as JSON even after the tolerant
	// brace-scanning fallback.
	ErrInvalidResponse = errors.New("llmanalysis: invalid provider response")
)

// NoAPIKeyError reports which provider was invoked without credentials.
type NoAPIKeyError struct {
	Provider ProviderID
}

func (e *NoAPIKeyError) Error() string {
	return fmt.Sprintf("no API key configured for provider '%s'", e.Provider)
}

func (e *NoAPIKeyError) Unwrap() error {
	return ErrNoAPIKey
}

// APIError represents an error reported by the vendor itself, either as a
// JSON error body on a non-success status, as an error event mid-stream,
// or as an explicit refusal. Message carries the vendor's text verbatim.
type APIError struct {
	Provider ProviderID
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider '%s' API error: %s", e.Provider, e.Message)
}

// HTTPError represents a non-success HTTP status with no parseable vendor
// error body. It is the degraded form of APIError.
type HTTPError struct {
	Provider   ProviderID
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider '%s' returned HTTP %d", e.Provider, e.StatusCode)
}

// IsAPIError checks if an error is a vendor-reported error (error body,
// stream error event, or refusal).
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsHTTPError checks if an error is a non-success status without a vendor
// error body, and returns the status code when it is.
func IsHTTPError(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}

// IsAuthError checks if an error is related to authentication: a missing
// key, or a 401/403 status from the provider.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNoAPIKey) {
		return true
	}
	if code, ok := IsHTTPError(err); ok {
		return code == 401 || code == 403
	}
	return false
}
