// internal/metrics/calculator.go
package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/AI-Template-SDK/brand-tracker/internal/models"
	"github.com/sirupsen/logrus"
)

// AggregationError is a violated metrics invariant: aggregation input that
// should have been impossible to produce.
type AggregationError struct {
	Message string
}

func (e *AggregationError) Error() string {
	return "aggregation error: " + e.Message
}

// Rank weights for the visibility score. Rank 4 and below share the floor
// weight.
func rankWeight(rank int) float64 {
	switch rank {
	case 1:
		return 1.0
	case 2:
		return 0.7
	case 3:
		return 0.5
	default:
		return 0.3
	}
}

// Aggregate is the run-wide view computed from all prompt results.
type Aggregate struct {
	Brands               []*models.BrandMetrics
	Leaderboard          []models.LeaderboardEntry
	PlatformLeaderboards map[string][]models.PlatformLeaderboardEntry
	TotalPromptsAnalyzed int
}

// BrandFor returns the metrics for brand, or nil.
func (a *Aggregate) BrandFor(brand string) *models.BrandMetrics {
	for _, b := range a.Brands {
		if strings.EqualFold(b.Brand, brand) {
			return b
		}
	}
	return nil
}

// Calculator computes competitive metrics from analyzed prompt results.
type Calculator struct {
	log *logrus.Logger
}

// NewCalculator creates a metrics calculator.
func NewCalculator(log *logrus.Logger) *Calculator {
	return &Calculator{log: log}
}

// Aggregate computes per-brand metrics and leaderboards over all results.
// Only the tracked brand and configured competitors are summarized; mentions
// of other brands stay on the individual results.
func (c *Calculator) Aggregate(results []*models.PromptResult, input *models.TrackerInput) (*Aggregate, error) {
	if err := validateResults(results); err != nil {
		return nil, err
	}

	brands := input.AllBrands()
	total := len(results)

	platforms := map[string]bool{}
	platformTotals := map[string]int{}
	for _, r := range results {
		platforms[r.Platform] = true
		platformTotals[r.Platform]++
	}

	// Citation attribution, overall and per platform.
	overallAttributed := 0
	overallByBrand := map[string]int{}
	platformAttributed := map[string]int{}
	platformByBrand := map[string]map[string]int{}
	for p := range platforms {
		platformByBrand[p] = map[string]int{}
	}
	for _, r := range results {
		for _, url := range r.Citations {
			brand := attributeCitation(url, brands, input.AliasesFor)
			if brand == "" {
				continue
			}
			overallAttributed++
			overallByBrand[brand]++
			platformAttributed[r.Platform]++
			platformByBrand[r.Platform][brand]++
		}
	}

	agg := &Aggregate{
		PlatformLeaderboards: map[string][]models.PlatformLeaderboardEntry{},
		TotalPromptsAnalyzed: total,
	}

	for _, brand := range brands {
		bm := &models.BrandMetrics{
			Brand:                brand,
			IsTracked:            strings.EqualFold(brand, input.TrackedBrand),
			TotalPromptsAnalyzed: total,
			PlatformBreakdown:    map[string]models.PlatformMetrics{},
		}

		weightSum := 0.0
		platformWeights := map[string]float64{}
		platformMentions := map[string]int{}
		platformPrompts := map[string]int{}

		type contextEntry struct {
			text  string
			order int
		}
		var contexts []contextEntry

		for i, r := range results {
			m := r.MentionFor(brand)
			if m == nil {
				continue
			}
			bm.PromptsWithMention++
			bm.TotalMentions += m.Count
			weightSum += rankWeight(m.Rank)
			platformWeights[r.Platform] += rankWeight(m.Rank)
			platformMentions[r.Platform] += m.Count
			platformPrompts[r.Platform]++

			if m.Context != "" {
				contexts = append(contexts, contextEntry{text: m.Context, order: i})
			}

			switch {
			case r.PromptWinner != nil && strings.EqualFold(*r.PromptWinner, brand):
				bm.PromptsWon++
			case r.PromptLoser != nil && strings.EqualFold(*r.PromptLoser, brand):
				bm.PromptsLost++
			case r.PromptWinner == nil:
				bm.PromptsTied++
			}
		}

		bm.PromptsMissed = total - bm.PromptsWithMention
		bm.VisibilityScore = score(weightSum, total)
		bm.CitationShare = share(overallByBrand[brand], overallAttributed)

		for p := range platforms {
			bm.PlatformBreakdown[p] = models.PlatformMetrics{
				VisibilityScore:    score(platformWeights[p], platformTotals[p]),
				CitationShare:      share(platformByBrand[p][brand], platformAttributed[p]),
				Mentions:           platformMentions[p],
				PromptsWithMention: platformPrompts[p],
			}
		}

		// Top contexts: longest first, ties by prompt order, deduped by
		// case-folded 50-char prefix.
		sort.SliceStable(contexts, func(i, j int) bool {
			if len(contexts[i].text) != len(contexts[j].text) {
				return len(contexts[i].text) > len(contexts[j].text)
			}
			return contexts[i].order < contexts[j].order
		})
		seen := map[string]bool{}
		bm.TopContexts = []string{}
		for _, entry := range contexts {
			key := dedupKey(entry.text)
			if seen[key] {
				continue
			}
			seen[key] = true
			bm.TopContexts = append(bm.TopContexts, entry.text)
			if len(bm.TopContexts) == 3 {
				break
			}
		}

		agg.Brands = append(agg.Brands, bm)
	}

	rankBrands(agg.Brands)

	for _, bm := range agg.Brands {
		agg.Leaderboard = append(agg.Leaderboard, models.LeaderboardEntry{
			Rank:            bm.Rank,
			Brand:           bm.Brand,
			IsTracked:       bm.IsTracked,
			VisibilityScore: bm.VisibilityScore,
			CitationShare:   bm.CitationShare,
			TotalMentions:   bm.TotalMentions,
			PromptsWon:      bm.PromptsWon,
		})
	}

	for p := range platforms {
		agg.PlatformLeaderboards[p] = platformLeaderboard(agg.Brands, p)
	}

	c.log.Infof("[Metrics] aggregated %d results across %d platforms for %d brands",
		total, len(platforms), len(brands))

	return agg, nil
}

func validateResults(results []*models.PromptResult) error {
	for _, r := range results {
		for _, m := range r.Mentions {
			if m.Count < 1 {
				return &AggregationError{Message: fmt.Sprintf(
					"mention count %d for %s in %s:%s", m.Count, m.Brand, r.Platform, r.PromptID)}
			}
			if m.Rank < 1 {
				return &AggregationError{Message: fmt.Sprintf(
					"mention rank %d for %s in %s:%s", m.Rank, m.Brand, r.Platform, r.PromptID)}
			}
		}
	}
	return nil
}

func score(weightSum float64, total int) float64 {
	if total == 0 || weightSum == 0 {
		return 0
	}
	return math.Min(100, 100*weightSum/float64(total))
}

func share(count, attributed int) float64 {
	if attributed == 0 {
		return 0
	}
	return 100 * float64(count) / float64(attributed)
}

// attributeCitation maps a URL to the first brand whose normalized name or
// alias appears in the lowercased URL, or "" when no brand matches.
func attributeCitation(url string, brands []string, aliasesFor func(string) []string) string {
	lower := strings.ToLower(url)
	for _, brand := range brands {
		if strings.Contains(lower, normalizeBrand(brand)) {
			return brand
		}
		for _, alias := range aliasesFor(brand) {
			if norm := normalizeBrand(alias); norm != "" && strings.Contains(lower, norm) {
				return brand
			}
		}
	}
	return ""
}

// normalizeBrand lowercases and strips spaces so "Hub Spot" matches
// "hubspot.com".
func normalizeBrand(brand string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(brand)), " ", "")
}

func dedupKey(context string) string {
	key := strings.ToLower(context)
	if len(key) > 50 {
		key = key[:50]
	}
	return key
}

// rankBrands orders brands by visibility desc, citation share desc, total
// mentions desc, name asc, and assigns ranks.
func rankBrands(brands []*models.BrandMetrics) {
	sort.SliceStable(brands, func(i, j int) bool {
		a, b := brands[i], brands[j]
		if a.VisibilityScore != b.VisibilityScore {
			return a.VisibilityScore > b.VisibilityScore
		}
		if a.CitationShare != b.CitationShare {
			return a.CitationShare > b.CitationShare
		}
		if a.TotalMentions != b.TotalMentions {
			return a.TotalMentions > b.TotalMentions
		}
		return strings.ToLower(a.Brand) < strings.ToLower(b.Brand)
	})
	for i, bm := range brands {
		bm.Rank = i + 1
	}
}

// platformLeaderboard applies the competitive ranking rule restricted to one
// platform's results.
func platformLeaderboard(brands []*models.BrandMetrics, platform string) []models.PlatformLeaderboardEntry {
	type row struct {
		brand string
		pm    models.PlatformMetrics
	}
	var rows []row
	for _, bm := range brands {
		rows = append(rows, row{brand: bm.Brand, pm: bm.PlatformBreakdown[platform]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].pm.VisibilityScore != rows[j].pm.VisibilityScore {
			return rows[i].pm.VisibilityScore > rows[j].pm.VisibilityScore
		}
		if rows[i].pm.CitationShare != rows[j].pm.CitationShare {
			return rows[i].pm.CitationShare > rows[j].pm.CitationShare
		}
		if rows[i].pm.Mentions != rows[j].pm.Mentions {
			return rows[i].pm.Mentions > rows[j].pm.Mentions
		}
		return strings.ToLower(rows[i].brand) < strings.ToLower(rows[j].brand)
	})

	entries := make([]models.PlatformLeaderboardEntry, len(rows))
	for i, r := range rows {
		entries[i] = models.PlatformLeaderboardEntry{
			Rank:          i + 1,
			Brand:         r.brand,
			CitationShare: r.pm.CitationShare,
			Mentions:      r.pm.Mentions,
		}
	}
	return entries
}
