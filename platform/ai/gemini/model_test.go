package gemini

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence without language", "```\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`},
		{"prose around", "Hier is het resultaat:\n{\"a\":1}\nSucces!", `{"a":1}`},
		{"braces in strings", `{"summary":"uses {curly} braces \"quoted\""}`, `{"summary":"uses {curly} braces \"quoted\""}`},
	}

	for _, tc := range cases {
		got, err := ExtractJSON(tc.in)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
		if !json.Valid([]byte(got)) {
			t.Fatalf("%s: extracted text is not valid JSON: %s", tc.name, got)
		}
	}
}

func TestExtractJSONErrors(t *testing.T) {
	for _, in := range []string{"", "no json here", `{"a":1`} {
		if _, err := ExtractJSON(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
