package llmanalysis

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeStructured(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "direct JSON object",
			text: `{"summary": "s", "insights": []}`,
			want: `{"summary": "s", "insights": []}`,
		},
		{
			name: "surrounding whitespace",
			text: "\n  {\"a\": 1}  \n",
			want: `{"a": 1}`,
		},
		{
			name: "markdown fenced payload",
			text: "Here is the analysis:\n```json\n{\"a\": 1}\n```\nLet me know!",
			want: `{"a": 1}`,
		},
		{
			name: "commentary around payload",
			text: `Sure! {"summary": "s"} Hope that helps.`,
			want: `{"summary": "s"}`,
		},
		{
			name: "longest decodable candidate wins",
			text: `{"a": 1} and the full one {"summary": "s", "insights": [{"title": "t"}]}`,
			want: `{"summary": "s", "insights": [{"title": "t"}]}`,
		},
		{
			name: "braces inside strings do not confuse the scan",
			text: `prefix {"text": "uses { and } freely", "n": 1} suffix`,
			want: `{"text": "uses { and } freely", "n": 1}`,
		},
		{
			name: "escaped quote inside string",
			text: `x {"text": "quote \" and brace }"} y`,
			want: `{"text": "quote \" and brace }"}`,
		},
		{
			name:    "no JSON at all",
			text:    "I could not produce an analysis.",
			wantErr: true,
		},
		{
			name:    "unbalanced braces",
			text:    `{"a": 1`,
			wantErr: true,
		},
		{
			name:    "empty text",
			text:    "",
			wantErr: true,
		},
		{
			name:    "top-level array is not an object",
			text:    `[1, 2, 3]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeStructured(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got payload %s", got)
				}
				if !errors.Is(err, ErrInvalidResponse) {
					t.Errorf("error %v does not wrap ErrInvalidResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("payload = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateAgainstSchema(t *testing.T) {
	schema := &StructuredSchema{
		Name: "analysis",
		Schema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"summary"},
			"properties": map[string]interface{}{
				"summary": map[string]interface{}{"type": "string"},
			},
		},
	}

	if err := ValidateAgainstSchema(json.RawMessage(`{"summary": "s"}`), schema); err != nil {
		t.Errorf("conforming payload rejected: %v", err)
	}

	err := ValidateAgainstSchema(json.RawMessage(`{"other": 1}`), schema)
	if err == nil {
		t.Fatal("expected validation failure for missing required field")
	}
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error %v does not wrap ErrInvalidResponse", err)
	}

	// No schema means nothing to validate.
	if err := ValidateAgainstSchema(json.RawMessage(`{}`), nil); err != nil {
		t.Errorf("nil schema should validate: %v", err)
	}
}
