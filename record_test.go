package llmanalysis

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestRequestEnvelopeRedactsKeyParam(t *testing.T) {
	env := requestEnvelope(ProviderGemini,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:streamGenerateContent?alt=sse&key=SECRET",
		[]byte(`{"contents": []}`))

	if strings.Contains(string(env), "SECRET") {
		t.Fatalf("envelope leaked the API key: %s", env)
	}
	if got := gjson.GetBytes(env, "url").Str; !strings.Contains(got, "key=REDACTED") {
		t.Errorf("url = %q, want key=REDACTED", got)
	}
	if got := gjson.GetBytes(env, "provider").Str; got != "gemini" {
		t.Errorf("provider = %q, want gemini", got)
	}
	if !gjson.GetBytes(env, "body").IsObject() {
		t.Errorf("body not embedded as raw JSON: %s", env)
	}
}

func TestRequestEnvelopeWithoutBody(t *testing.T) {
	env := requestEnvelope(ProviderOpenAI, "https://api.openai.com/v1/responses", nil)
	if gjson.GetBytes(env, "body").Exists() {
		t.Errorf("empty body should be omitted: %s", env)
	}
}

func TestRedactKeyParam(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "key present",
			in:   "https://host/path?key=abc123",
			want: "https://host/path?key=REDACTED",
		},
		{
			name: "no key param untouched",
			in:   "https://host/path?alt=sse",
			want: "https://host/path?alt=sse",
		},
		{
			name: "unparseable URL passed through",
			in:   "://not-a-url",
			want: "://not-a-url",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactKeyParam(tt.in); got != tt.want {
				t.Errorf("redactKeyParam(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
