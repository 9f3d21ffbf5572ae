// internal/analyzer/citations_test.go
package analyzer

import (
	"testing"
)

func TestExtractCitations(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "basic urls",
			text:     "See https://acme.com/reviews and http://beta.io for details.",
			expected: []string{"https://acme.com/reviews", "http://beta.io"},
		},
		{
			name:     "trailing punctuation stripped",
			text:     "Sources: https://acme.com/page. Also https://beta.io/x), and https://gamma.dev/y?",
			expected: []string{"https://acme.com/page", "https://beta.io/x", "https://gamma.dev/y"},
		},
		{
			name:     "placeholder domains skipped",
			text:     "Try https://example.com/demo or https://yoursite.com but really https://acme.com",
			expected: []string{"https://acme.com"},
		},
		{
			name:     "case-insensitive dedup keeps first casing",
			text:     "https://Acme.com/Page and https://acme.com/page again",
			expected: []string{"https://Acme.com/Page"},
		},
		{
			name:     "no urls",
			text:     "No links here.",
			expected: nil,
		},
		{
			name:     "localhost skipped",
			text:     "http://localhost:8080/x and http://127.0.0.1/y",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCitations(tt.text)
			if len(got) != len(tt.expected) {
				t.Fatalf("ExtractCitations() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("citation[%d] = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestMergeCitations(t *testing.T) {
	platform := []string{"https://acme.com/source", "https://example.com/skip"}
	text := "Also see https://beta.io and https://ACME.com/source again."

	got := MergeCitations(platform, text)
	expected := []string{"https://acme.com/source", "https://beta.io"}

	if len(got) != len(expected) {
		t.Fatalf("MergeCitations() = %v, want %v", got, expected)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("merged[%d] = %q, want %q", i, got[i], expected[i])
		}
	}
}
