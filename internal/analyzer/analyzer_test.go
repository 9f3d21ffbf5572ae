// internal/analyzer/analyzer_test.go
package analyzer

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/AI-Template-SDK/brand-tracker/internal/models"
	"github.com/AI-Template-SDK/brand-tracker/internal/tracking"
	"github.com/sirupsen/logrus"
)

type stubExtractor struct {
	mentions []models.BrandMention
	err      error
}

func (s *stubExtractor) Extract(ctx context.Context, answerText string, brands []string, aliasesFor func(string) []string) ([]models.BrandMention, error) {
	return s.mentions, s.err
}

func testAnalyzer(extractor Extractor) (*Analyzer, *tracking.Collector) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	collector := tracking.NewCollector(log)
	return NewAnalyzer(extractor, collector, log), collector
}

func sampleInput() *models.TrackerInput {
	return &models.TrackerInput{
		Category:     "CRM software",
		TrackedBrand: "Acme",
		Competitors:  []string{"Beta", "Gamma"},
		Platforms:    []string{"chatgpt"},
	}
}

func sampleTask(answer string) *models.PlatformTask {
	return &models.PlatformTask{
		PromptID:   "prompt_000",
		PromptText: "What is the best CRM?",
		Platform:   "chatgpt",
		State:      models.TaskSucceeded,
		RawAnswer:  answer,
		ModelID:    "gpt-4.1",
	}
}

func TestAnalyzeLLMTier(t *testing.T) {
	extractor := &stubExtractor{
		mentions: []models.BrandMention{
			{Brand: "Acme", Count: 2, Rank: 1, Context: "Acme is the best CRM", IsRecommended: true},
			{Brand: "Beta", Count: 1, Rank: 2, Context: "Beta also works"},
		},
	}
	a, collector := testAnalyzer(extractor)

	result := a.Analyze(context.Background(), sampleTask("Acme is the best CRM, Beta also works but Acme is better"), sampleInput())

	if result.ExtractionTier != models.ExtractionTierLLM {
		t.Errorf("tier = %s, want llm", result.ExtractionTier)
	}
	if result.PromptWinner == nil || *result.PromptWinner != "Acme" {
		t.Errorf("winner = %v, want Acme", result.PromptWinner)
	}
	if result.PromptLoser == nil || *result.PromptLoser != "Beta" {
		t.Errorf("loser = %v, want Beta", result.PromptLoser)
	}
	if !result.TrackedMentioned || result.TrackedRank != 1 {
		t.Errorf("tracked: mentioned=%v rank=%d, want true/1", result.TrackedMentioned, result.TrackedRank)
	}
	if len(result.CompetitorsFound) != 1 || result.CompetitorsFound[0] != "Beta" {
		t.Errorf("competitors found = %v, want [Beta]", result.CompetitorsFound)
	}
	if len(result.CompetitorsMissed) != 1 || result.CompetitorsMissed[0] != "Gamma" {
		t.Errorf("competitors missed = %v, want [Gamma]", result.CompetitorsMissed)
	}
	if collector.WarningCount() != 0 {
		t.Errorf("no warnings expected for LLM tier, got %d", collector.WarningCount())
	}
}

func TestAnalyzeFallbackOnExtractionError(t *testing.T) {
	extractor := &stubExtractor{err: &ExtractionError{Reason: "api call failed", Err: errors.New("boom")}}
	a, collector := testAnalyzer(extractor)

	result := a.Analyze(context.Background(), sampleTask("Acme is the best CRM, Beta also works but Acme is better"), sampleInput())

	if result.ExtractionTier != models.ExtractionTierHeuristic {
		t.Fatalf("tier = %s, want heuristic", result.ExtractionTier)
	}

	// Heuristic output on the canonical example.
	if len(result.Mentions) != 2 {
		t.Fatalf("mentions = %+v, want 2 entries", result.Mentions)
	}
	if result.Mentions[0].Brand != "Acme" || result.Mentions[0].Count != 2 {
		t.Errorf("first mention = %+v, want Acme count 2", result.Mentions[0])
	}
	if result.PromptWinner == nil || *result.PromptWinner != "Acme" {
		t.Errorf("winner = %v, want Acme", result.PromptWinner)
	}

	if collector.WarningCount() != 1 {
		t.Fatalf("warnings = %d, want 1", collector.WarningCount())
	}
	snap := collector.TakeSnapshot()
	want := "extraction fallback used for chatgpt:prompt_000"
	if snap.Warnings[0].Message != want {
		t.Errorf("warning = %q, want %q", snap.Warnings[0].Message, want)
	}
}

func TestAnalyzeMergesCitations(t *testing.T) {
	extractor := &stubExtractor{mentions: nil}
	a, _ := testAnalyzer(extractor)

	task := sampleTask("Acme per https://acme.com/reviews is solid.")
	task.Citations = []string{"https://g2.com/acme"}

	result := a.Analyze(context.Background(), task, sampleInput())

	if len(result.Citations) != 2 {
		t.Fatalf("citations = %v, want platform + scanned", result.Citations)
	}
	if result.Citations[0] != "https://g2.com/acme" {
		t.Errorf("platform citations should come first, got %v", result.Citations)
	}
}

func TestAnalyzeUntrackedBrandsStayInMentions(t *testing.T) {
	extractor := &stubExtractor{
		mentions: []models.BrandMention{
			{Brand: "Acme", Count: 1, Rank: 1},
			{Brand: "Zeta", Count: 1, Rank: 2},
		},
	}
	a, _ := testAnalyzer(extractor)

	result := a.Analyze(context.Background(), sampleTask("Acme and Zeta."), sampleInput())

	if result.MentionFor("Zeta") == nil {
		t.Error("unrecognized brand should stay in the mentions list")
	}
	if KnownBrand("Zeta", sampleInput()) {
		t.Error("Zeta should not be a known brand")
	}
	if !KnownBrand("acme", sampleInput()) {
		t.Error("known-brand check should be case-insensitive")
	}
}

func TestAnalyzeWinnerIgnoresUnrecognizedBrands(t *testing.T) {
	extractor := &stubExtractor{
		mentions: []models.BrandMention{
			{Brand: "Zeta", Count: 5, Rank: 1},
			{Brand: "Acme", Count: 3, Rank: 2},
			{Brand: "Beta", Count: 1, Rank: 3},
		},
	}
	a, _ := testAnalyzer(extractor)

	result := a.Analyze(context.Background(), sampleTask("Zeta leads, then Acme, then Beta."), sampleInput())

	if result.PromptWinner == nil || *result.PromptWinner != "Acme" {
		t.Errorf("winner = %v, want Acme (unrecognized brands hold neither slot)", result.PromptWinner)
	}
	if result.PromptLoser == nil || *result.PromptLoser != "Beta" {
		t.Errorf("loser = %v, want Beta", result.PromptLoser)
	}
	if result.MentionFor("Zeta") == nil {
		t.Error("unrecognized brand should stay in the mentions list")
	}
}

func TestAnalyzeLoserIgnoresUnrecognizedMinimum(t *testing.T) {
	extractor := &stubExtractor{
		mentions: []models.BrandMention{
			{Brand: "Acme", Count: 3, Rank: 1},
			{Brand: "Beta", Count: 2, Rank: 2},
			{Brand: "Zeta", Count: 1, Rank: 3},
		},
	}
	a, _ := testAnalyzer(extractor)

	result := a.Analyze(context.Background(), sampleTask("Acme, Beta, Zeta."), sampleInput())

	if result.PromptWinner == nil || *result.PromptWinner != "Acme" {
		t.Errorf("winner = %v, want Acme", result.PromptWinner)
	}
	if result.PromptLoser == nil || *result.PromptLoser != "Beta" {
		t.Errorf("loser = %v, want Beta (strict min among tracked and competitors)", result.PromptLoser)
	}
}

func TestValidateAndRank(t *testing.T) {
	aliases := func(brand string) []string {
		if brand == "Salesforce" {
			return []string{"SFDC"}
		}
		return nil
	}
	brands := []string{"Salesforce", "HubSpot"}

	t.Run("canonicalizes names and aliases", func(t *testing.T) {
		rows := []extractedMention{
			{Brand: "sfdc", Count: 2},
			{Brand: "hubspot", Count: 1},
		}
		mentions, err := validateAndRank(rows, brands, aliases)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mentions[0].Brand != "Salesforce" || mentions[1].Brand != "HubSpot" {
			t.Errorf("canonicalization failed: %+v", mentions)
		}
		if mentions[0].Rank != 1 || mentions[1].Rank != 2 {
			t.Errorf("ranks = %d, %d, want 1, 2", mentions[0].Rank, mentions[1].Rank)
		}
	})

	t.Run("rejects empty brand", func(t *testing.T) {
		_, err := validateAndRank([]extractedMention{{Brand: " ", Count: 1}}, brands, aliases)
		if err == nil {
			t.Fatal("expected error for empty brand")
		}
	})

	t.Run("rejects count below one", func(t *testing.T) {
		_, err := validateAndRank([]extractedMention{{Brand: "HubSpot", Count: 0}}, brands, aliases)
		if err == nil {
			t.Fatal("expected error for zero count")
		}
	})

	t.Run("collapses duplicate rows", func(t *testing.T) {
		rows := []extractedMention{
			{Brand: "HubSpot", Count: 3},
			{Brand: "hubspot", Count: 1},
		}
		mentions, err := validateAndRank(rows, brands, aliases)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(mentions) != 1 || mentions[0].Count != 3 {
			t.Errorf("duplicates should keep the first row: %+v", mentions)
		}
	})
}
