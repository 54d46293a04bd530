package ai

import (
	"math"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain",
			input:    `{"target": "sql"}`,
			expected: `{"target": "sql"}`,
		},
		{
			name:     "fenced",
			input:    "```json\n{\"target\": \"sql\"}\n```",
			expected: `{"target": "sql"}`,
		},
		{
			name:     "fenced without language",
			input:    "```\n{\"target\": \"retrieval\"}\n```",
			expected: `{"target": "retrieval"}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "\n   {\"score\": 1}  \n",
			expected: `{"score": 1}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSON(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestUnmarshalLoose(t *testing.T) {
	data, err := UnmarshalLoose("```json\n{\"match_score\": 80, \"gaps\": [\"k8s\"]}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if CoerceFloat(data["match_score"]) != 80 {
		t.Fatalf("expected match_score 80, got %v", data["match_score"])
	}

	gaps := CoerceStrings(data["gaps"])
	if len(gaps) != 1 || gaps[0] != "k8s" {
		t.Fatalf("unexpected gaps: %v", gaps)
	}

	if _, err := UnmarshalLoose("not json at all"); err == nil {
		t.Fatalf("expected error for invalid payload")
	}
}

func TestCoercions(t *testing.T) {
	if !CoerceBool("Yes") || CoerceBool("nope") {
		t.Fatalf("unexpected bool coercion")
	}

	if CoerceFloat("0.75") != 0.75 {
		t.Fatalf("unexpected float coercion")
	}

	if !math.IsNaN(CoerceFloat("not-a-number")) {
		t.Fatalf("expected NaN for unparseable float")
	}

	if CoerceString(nil) != "" {
		t.Fatalf("expected empty string for nil")
	}

	if got := CoerceStrings("single"); len(got) != 1 || got[0] != "single" {
		t.Fatalf("expected scalar promoted to list, got %v", got)
	}
}
