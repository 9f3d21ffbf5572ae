// internal/analyzer/analyzer.go
package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/AI-Template-SDK/brand-tracker/internal/models"
	"github.com/AI-Template-SDK/brand-tracker/internal/tracking"
	"github.com/sirupsen/logrus"
)

// Analyzer turns succeeded platform tasks into prompt results. The LLM tier
// is tried first; any extraction failure falls back to the deterministic
// heuristic and records a warning, so analysis itself never fails a task.
type Analyzer struct {
	extractor Extractor
	collector *tracking.Collector
	log       *logrus.Logger
}

// NewAnalyzer creates an analyzer over the given extraction tier.
func NewAnalyzer(extractor Extractor, collector *tracking.Collector, log *logrus.Logger) *Analyzer {
	return &Analyzer{
		extractor: extractor,
		collector: collector,
		log:       log,
	}
}

// Analyze produces the immutable result for one succeeded task.
func (a *Analyzer) Analyze(ctx context.Context, task *models.PlatformTask, input *models.TrackerInput) *models.PromptResult {
	brands := input.AllBrands()
	tier := models.ExtractionTierLLM

	mentions, err := a.extractor.Extract(ctx, task.RawAnswer, brands, input.AliasesFor)
	if err != nil {
		a.collector.AddWarning("analysis",
			fmt.Sprintf("extraction fallback used for %s:%s", task.Platform, task.PromptID))
		a.log.Debugf("[Analyzer] falling back to heuristic for %s:%s: %v", task.Platform, task.PromptID, err)
		mentions = ExtractHeuristic(task.RawAnswer, brands, input.AliasesFor)
		tier = models.ExtractionTierHeuristic
	}

	result := &models.PromptResult{
		PromptID:       task.PromptID,
		PromptText:     task.PromptText,
		Platform:       task.Platform,
		PlatformModel:  task.ModelID,
		RawResponse:    task.RawAnswer,
		Mentions:       mentions,
		Citations:      MergeCitations(task.Citations, task.RawAnswer),
		ExtractionTier: tier,
	}

	// Winner and loser are decided among the tracked brand and configured
	// competitors only; other extracted names stay in Mentions but hold
	// neither slot.
	known := make([]models.BrandMention, 0, len(mentions))
	for _, m := range mentions {
		if KnownBrand(m.Brand, input) {
			known = append(known, m)
		}
	}
	result.PromptWinner = promptWinner(known)
	result.PromptLoser = promptLoser(known)

	if m := result.MentionFor(input.TrackedBrand); m != nil {
		result.TrackedMentioned = true
		result.TrackedRank = m.Rank
	}

	result.CompetitorsFound = []string{}
	result.CompetitorsMissed = []string{}
	for _, competitor := range input.Competitors {
		if result.MentionFor(competitor) != nil {
			result.CompetitorsFound = append(result.CompetitorsFound, competitor)
		} else {
			result.CompetitorsMissed = append(result.CompetitorsMissed, competitor)
		}
	}

	return result
}

// promptWinner is the brand with the strict-maximum mention count, or nil
// when the maximum is shared.
func promptWinner(mentions []models.BrandMention) *string {
	if len(mentions) == 0 {
		return nil
	}
	max, runnerUp := -1, -1
	var winner string
	for _, m := range mentions {
		if m.Count > max {
			runnerUp = max
			max = m.Count
			winner = m.Brand
		} else if m.Count > runnerUp {
			runnerUp = m.Count
		}
	}
	if max == runnerUp {
		return nil
	}
	return &winner
}

// promptLoser is the brand with the strict-minimum count among results where
// at least two brands are mentioned, or nil when the minimum is shared.
func promptLoser(mentions []models.BrandMention) *string {
	if len(mentions) < 2 {
		return nil
	}
	min, runnerUp := -1, -1
	var loser string
	for _, m := range mentions {
		if min == -1 || m.Count < min {
			runnerUp = min
			min = m.Count
			loser = m.Brand
		} else if runnerUp == -1 || m.Count < runnerUp {
			runnerUp = m.Count
		}
	}
	if min == runnerUp {
		return nil
	}
	return &loser
}

// KnownBrand reports whether name is the tracked brand or a configured
// competitor (matched case-insensitively).
func KnownBrand(name string, input *models.TrackerInput) bool {
	for _, brand := range input.AllBrands() {
		if strings.EqualFold(brand, name) {
			return true
		}
	}
	return false
}
