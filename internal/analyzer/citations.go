// internal/analyzer/citations.go
package analyzer

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://(?:[-\w.]|(?:%[\da-fA-F]{2}))+[^\s\)\]\}"'<>]*`)

// Domains that appear in AI answers as illustrative placeholders, never as
// real sources.
var placeholderDomains = []string{
	"example.com",
	"placeholder",
	"yoursite",
	"website.com",
	"domain.com",
	"localhost",
	"127.0.0.1",
}

// ExtractCitations scans answer text for source URLs. Trailing sentence
// punctuation is stripped, placeholder domains are skipped, and duplicates
// are dropped case-insensitively keeping the first-seen casing.
func ExtractCitations(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var urls []string
	for _, raw := range matches {
		url := strings.TrimRight(raw, ".,;:!?)")
		if url == "" || isPlaceholderURL(url) {
			continue
		}
		key := strings.ToLower(url)
		if seen[key] {
			continue
		}
		seen[key] = true
		urls = append(urls, url)
	}
	return urls
}

func isPlaceholderURL(url string) bool {
	lower := strings.ToLower(url)
	for _, domain := range placeholderDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// MergeCitations combines platform-reported citations with text-scanned ones,
// platform citations first, deduplicated case-insensitively.
func MergeCitations(platformCitations []string, text string) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, url := range platformCitations {
		url = strings.TrimSpace(url)
		if url == "" || isPlaceholderURL(url) {
			continue
		}
		key := strings.ToLower(url)
		if seen[key] {
			continue
		}
		seen[key] = true
		urls = append(urls, url)
	}
	for _, url := range ExtractCitations(text) {
		key := strings.ToLower(url)
		if seen[key] {
			continue
		}
		seen[key] = true
		urls = append(urls, url)
	}
	return urls
}
