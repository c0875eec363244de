package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json untouched", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"anonymous fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "valid object untouched",
			in:   `{"status": "PRESENT", "confidence": 0.9}`,
			want: `{"status": "PRESENT", "confidence": 0.9}`,
		},
		{
			name: "first key unquoted",
			in:   `{status": "PRESENT"}`,
			want: `{"status": "PRESENT"}`,
		},
		{
			name: "later key unquoted",
			in:   `{"a": 1, confidence": 0.9}`,
			want: `{"a": 1, "confidence": 0.9}`,
		},
		{
			name: "underscored key",
			in:   `{relevant_pages": [2]}`,
			want: `{"relevant_pages": [2]}`,
		},
		{
			name: "space before the surviving quote",
			in:   `{status ": "PRESENT"}`,
			want: `{"status": "PRESENT"}`,
		},
		{
			name: "punctuation inside values untouched",
			in:   `{"evidence": "a, b: c"}`,
			want: `{"evidence": "a, b: c"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RepairJSON(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, json.Valid([]byte(got)))
		})
	}
}
