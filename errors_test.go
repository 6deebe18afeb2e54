package llmanalysis

import (
	"errors"
	"fmt"
	"testing"
)

func TestNoAPIKeyErrorUnwrap(t *testing.T) {
	err := &NoAPIKeyError{Provider: ProviderOpenAI}
	if !errors.Is(err, ErrNoAPIKey) {
		t.Error("NoAPIKeyError should unwrap to ErrNoAPIKey")
	}
	if !IsAuthError(err) {
		t.Error("missing key should count as an auth error")
	}
}

func TestErrorPredicates(t *testing.T) {
	apiErr := &APIError{Provider: ProviderGemini, Message: "quota exceeded"}
	if !IsAPIError(apiErr) {
		t.Error("IsAPIError failed on APIError")
	}
	if !IsAPIError(fmt.Errorf("wrapped: %w", apiErr)) {
		t.Error("IsAPIError failed on wrapped APIError")
	}

	httpErr := &HTTPError{Provider: ProviderAnthropic, StatusCode: 503}
	if code, ok := IsHTTPError(httpErr); !ok || code != 503 {
		t.Errorf("IsHTTPError = (%d, %v), want (503, true)", code, ok)
	}
	if IsAuthError(httpErr) {
		t.Error("503 should not count as an auth error")
	}

	for _, code := range []int{401, 403} {
		if !IsAuthError(&HTTPError{Provider: ProviderOpenAI, StatusCode: code}) {
			t.Errorf("HTTP %d should count as an auth error", code)
		}
	}

	if IsAPIError(errors.New("plain")) || IsAuthError(errors.New("plain")) {
		t.Error("predicates matched a plain error")
	}
}
