// internal/analyzer/heuristic.go
package analyzer

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/AI-Template-SDK/brand-tracker/internal/models"
)

// Deterministic extraction used when the LLM tier fails. Pure text analysis:
// same input always yields the same mentions.

const (
	contextSnippetRadius = 100
	contextSnippetMax    = 200
	recommendationWindow = 12
)

var recommendationKeywords = map[string]bool{
	"recommend":      true,
	"recommends":     true,
	"recommended":    true,
	"recommendation": true,
	"best":           true,
	"top":            true,
	"suggest":        true,
	"suggests":       true,
	"suggested":      true,
	"ideal":          true,
	"excellent":      true,
	"leading":        true,
	"preferred":      true,
	"favorite":       true,
	"go-to":          true,
}

var tokenPattern = regexp.MustCompile(`\S+`)

// brandOccurrences are the byte offsets of whole-word matches for a brand or
// any of its aliases. Longer names claim their text region first, so an alias
// that contains the brand name counts one occurrence, not two.
func brandOccurrences(text, brand string, aliases []string) []int {
	names := append([]string{brand}, aliases...)
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	var claimed [][2]int
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
		if err != nil {
			continue
		}
	match:
		for _, loc := range re.FindAllStringIndex(text, -1) {
			for _, span := range claimed {
				if loc[0] < span[1] && loc[1] > span[0] {
					continue match
				}
			}
			claimed = append(claimed, [2]int{loc[0], loc[1]})
		}
	}

	offsets := make([]int, 0, len(claimed))
	for _, span := range claimed {
		offsets = append(offsets, span[0])
	}
	sort.Ints(offsets)
	return offsets
}

// ExtractHeuristic counts whole-word occurrences of each brand (and its
// aliases) in text and ranks mentioned brands by count, ties broken by first
// occurrence.
func ExtractHeuristic(text string, brands []string, aliasesFor func(string) []string) []models.BrandMention {
	type scored struct {
		mention models.BrandMention
		first   int
	}

	var found []scored
	for _, brand := range brands {
		offsets := brandOccurrences(text, brand, aliasesFor(brand))
		if len(offsets) == 0 {
			continue
		}
		found = append(found, scored{
			mention: models.BrandMention{
				Brand:         brand,
				Count:         len(offsets),
				Context:       contextSnippet(text, offsets[0]),
				IsRecommended: nearRecommendation(text, offsets),
			},
			first: offsets[0],
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].mention.Count != found[j].mention.Count {
			return found[i].mention.Count > found[j].mention.Count
		}
		return found[i].first < found[j].first
	})

	mentions := make([]models.BrandMention, len(found))
	for i, s := range found {
		s.mention.Rank = i + 1
		mentions[i] = s.mention
	}
	return mentions
}

// contextSnippet returns the text surrounding offset, clamped to word
// boundaries and at most contextSnippetMax characters.
func contextSnippet(text string, offset int) string {
	start := offset - contextSnippetRadius
	if start < 0 {
		start = 0
	}
	end := offset + contextSnippetRadius
	if end > len(text) {
		end = len(text)
	}

	// Never split a rune at the window edges.
	for start < offset && !utf8.RuneStart(text[start]) {
		start++
	}
	for end > start && end < len(text) && !utf8.RuneStart(text[end]) {
		end--
	}

	// Avoid cutting words in half.
	if start > 0 {
		if idx := strings.IndexAny(text[start:end], " \t\n"); idx >= 0 && idx < contextSnippetRadius {
			start += idx + 1
		}
	}
	if end < len(text) {
		if idx := strings.LastIndexAny(text[start:end], " \t\n"); idx > 0 {
			end = start + idx
		}
	}

	return truncateSnippet(strings.TrimSpace(text[start:end]))
}

// truncateSnippet caps s at contextSnippetMax bytes without splitting a rune.
func truncateSnippet(s string) string {
	if len(s) <= contextSnippetMax {
		return s
	}
	cut := contextSnippetMax
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// nearRecommendation reports whether any recommendation keyword occurs within
// recommendationWindow tokens of any brand occurrence.
func nearRecommendation(text string, offsets []int) bool {
	tokens := tokenPattern.FindAllStringIndex(text, -1)
	if len(tokens) == 0 {
		return false
	}

	// Token index for each brand occurrence offset.
	occIdx := make([]int, 0, len(offsets))
	for _, off := range offsets {
		idx := sort.Search(len(tokens), func(i int) bool { return tokens[i][1] > off })
		if idx < len(tokens) {
			occIdx = append(occIdx, idx)
		}
	}

	for _, idx := range occIdx {
		lo := idx - recommendationWindow
		if lo < 0 {
			lo = 0
		}
		hi := idx + recommendationWindow
		if hi >= len(tokens) {
			hi = len(tokens) - 1
		}
		for i := lo; i <= hi; i++ {
			word := strings.ToLower(strings.Trim(text[tokens[i][0]:tokens[i][1]], `.,;:!?"'()`))
			if recommendationKeywords[word] {
				return true
			}
		}
	}
	return false
}
