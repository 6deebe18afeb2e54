package llmanalysis

import (
	"net/url"

	"github.com/tidwall/sjson"
)

// RecordSink captures raw vendor traffic for debugging. It is injected
// through WithRecordSink and sits entirely outside the parsing and
// normalization pipeline: sinks observe, they never influence behavior.
// Implementations must tolerate being called from the stream's producer
// goroutine.
type RecordSink interface {
	// RecordRequest receives one capture envelope per outbound request.
	RecordRequest(provider ProviderID, envelope []byte)

	// RecordStreamLine receives each raw SSE data payload as it arrives.
	RecordStreamLine(provider ProviderID, data string)

	// RecordResponse receives the raw body of a non-streaming response.
	RecordResponse(provider ProviderID, body []byte)
}

// requestEnvelope builds the JSON capture envelope for an outbound
// request. API keys are stripped from the URL query (Gemini carries the
// key as a query parameter); auth headers are never captured.
func requestEnvelope(provider ProviderID, rawURL string, body []byte) []byte {
	env, _ := sjson.Set("{}", "provider", provider.String())
	env, _ = sjson.Set(env, "url", redactKeyParam(rawURL))
	if len(body) > 0 {
		env, _ = sjson.SetRaw(env, "body", string(body))
	}
	return []byte(env)
}

func redactKeyParam(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
