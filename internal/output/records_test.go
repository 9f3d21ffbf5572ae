// internal/output/records_test.go
package output

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/AI-Template-SDK/brand-tracker/internal/metrics"
	"github.com/AI-Template-SDK/brand-tracker/internal/models"
	"github.com/AI-Template-SDK/brand-tracker/internal/tracking"
	"github.com/sirupsen/logrus"
)

func strPtr(s string) *string { return &s }

func TestPromptResultRecordFields(t *testing.T) {
	result := &models.PromptResult{
		PromptID:      "prompt_000",
		PromptText:    "best crm?",
		Platform:      "chatgpt",
		PlatformModel: "gpt-4.1",
		RawResponse:   "Acme is the best CRM, Beta also works but Acme is better",
		Mentions: []models.BrandMention{
			{Brand: "Acme", Count: 2, Rank: 1, Context: "Acme is the best CRM", IsRecommended: true},
			{Brand: "Beta", Count: 1, Rank: 2, Context: "Beta also works"},
		},
		Citations:         []string{"https://acme.com"},
		PromptWinner:      strPtr("Acme"),
		PromptLoser:       strPtr("Beta"),
		TrackedMentioned:  true,
		TrackedRank:       1,
		CompetitorsFound:  []string{"Beta"},
		CompetitorsMissed: []string{"Gamma"},
	}

	record := NewPromptResultRecord("run-1", result)

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, field := range []string{
		"type", "promptId", "promptText", "platform", "platformModel",
		"rawResponse", "mentions", "citations", "promptWinner", "promptLoser",
		"trackedBrandMentioned", "trackedBrandRank", "competitorsMentioned",
		"competitorsMissed",
	} {
		if _, ok := m[field]; !ok {
			t.Errorf("prompt_result missing field %q", field)
		}
	}
	if m["type"] != "prompt_result" {
		t.Errorf("type = %v, want prompt_result", m["type"])
	}
	if m["promptWinner"] != "Acme" {
		t.Errorf("promptWinner = %v, want Acme", m["promptWinner"])
	}

	mentions := m["mentions"].([]interface{})
	first := mentions[0].(map[string]interface{})
	for _, field := range []string{"brand", "count", "rank", "context", "isRecommended"} {
		if _, ok := first[field]; !ok {
			t.Errorf("mention row missing field %q", field)
		}
	}
}

func TestPromptResultRecordNilWinner(t *testing.T) {
	result := &models.PromptResult{PromptID: "prompt_000", Platform: "chatgpt"}
	record := NewPromptResultRecord("run-1", result)

	data, _ := json.Marshal(record)
	var m map[string]interface{}
	json.Unmarshal(data, &m)

	if v, ok := m["promptWinner"]; !ok || v != nil {
		t.Errorf("promptWinner should be explicit null, got %v (present=%v)", v, ok)
	}
	if v, ok := m["trackedBrandRank"]; !ok || v != nil {
		t.Errorf("trackedBrandRank should be null when not mentioned, got %v (present=%v)", v, ok)
	}
	if m["citations"] == nil {
		t.Error("citations should serialize as an empty array, not null")
	}
}

func TestBrandSummaryRecordFields(t *testing.T) {
	bm := &models.BrandMetrics{
		Brand:                "Acme",
		VisibilityScore:      85,
		CitationShare:        66.7,
		TotalMentions:        12,
		TotalPromptsAnalyzed: 10,
		PromptsWithMention:   8,
		PromptsMissed:        2,
		PromptsWon:           5,
		PromptsLost:          1,
		PromptsTied:          2,
		Rank:                 1,
		TopContexts:          []string{"Acme leads"},
		PlatformBreakdown: map[string]models.PlatformMetrics{
			"chatgpt": {VisibilityScore: 90, CitationShare: 70, Mentions: 6, PromptsWithMention: 4},
		},
	}

	record := NewBrandSummaryRecord("run-1", bm, 4)

	data, _ := json.Marshal(record)
	var m map[string]interface{}
	json.Unmarshal(data, &m)

	if m["type"] != "brand_summary" {
		t.Errorf("type = %v", m["type"])
	}

	overall := m["overallMetrics"].(map[string]interface{})
	for _, field := range []string{"visibilityScore", "citationShare", "totalMentions", "totalPromptsAnalyzed", "promptsWithMention", "promptsMissed"} {
		if _, ok := overall[field]; !ok {
			t.Errorf("overallMetrics missing %q", field)
		}
	}

	pos := m["competitivePosition"].(map[string]interface{})
	if pos["rank"].(float64) != 1 || pos["totalBrands"].(float64) != 4 {
		t.Errorf("competitivePosition = %v", pos)
	}

	chatgpt := m["platformBreakdown"].(map[string]interface{})["chatgpt"].(map[string]interface{})
	for _, field := range []string{"visibilityScore", "citationShare", "mentions", "promptsWithMention"} {
		if _, ok := chatgpt[field]; !ok {
			t.Errorf("platformBreakdown missing %q", field)
		}
	}
}

func TestLeaderboardRecordFields(t *testing.T) {
	agg := &metrics.Aggregate{
		Leaderboard: []models.LeaderboardEntry{
			{Rank: 1, Brand: "Acme", VisibilityScore: 90, CitationShare: 50, TotalMentions: 10, PromptsWon: 4},
		},
		PlatformLeaderboards: map[string][]models.PlatformLeaderboardEntry{
			"chatgpt": {{Rank: 1, Brand: "Acme", CitationShare: 50, Mentions: 10}},
		},
	}

	record := NewLeaderboardRecord("run-1", agg)

	data, _ := json.Marshal(record)
	var m map[string]interface{}
	json.Unmarshal(data, &m)

	if m["type"] != "leaderboard" {
		t.Errorf("type = %v", m["type"])
	}
	row := m["rankings"].([]interface{})[0].(map[string]interface{})
	for _, field := range []string{"rank", "brand", "visibilityScore", "citationShare", "totalMentions", "promptsWon"} {
		if _, ok := row[field]; !ok {
			t.Errorf("ranking row missing %q", field)
		}
	}
	prow := m["platformLeaderboards"].(map[string]interface{})["chatgpt"].([]interface{})[0].(map[string]interface{})
	for _, field := range []string{"rank", "brand", "citationShare", "mentions"} {
		if _, ok := prow[field]; !ok {
			t.Errorf("platform ranking row missing %q", field)
		}
	}
}

func TestRunSummaryRecord(t *testing.T) {
	input := &models.TrackerInput{Category: "CRM", TrackedBrand: "Acme"}
	start := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)

	record := NewRunSummaryRecord("run-1", input, start, end, 10, 28, false, 0.02)

	if record.Status != "completed" {
		t.Errorf("status = %s, want completed", record.Status)
	}
	if record.Execution.DurationMs != 90000 {
		t.Errorf("durationMs = %d, want 90000", record.Execution.DurationMs)
	}
	if record.Billing.EventType != "prompt-analyzed" {
		t.Errorf("billing eventType = %s, want prompt-analyzed", record.Billing.EventType)
	}
	if record.Billing.EventsCharged != 28 {
		t.Errorf("eventsCharged = %d, want responsesCollected", record.Billing.EventsCharged)
	}
	if record.Billing.PricePerEvent != 0.02 {
		t.Errorf("pricePerEvent = %f, want 0.02", record.Billing.PricePerEvent)
	}

	failed := NewRunSummaryRecord("run-1", input, start, end, 10, 0, true, 0.02)
	if failed.Status != "failed" {
		t.Errorf("fatal run status = %s, want failed", failed.Status)
	}
}

func TestErrorSummaryRecord(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	collector := tracking.NewCollector(log)

	collector.AddErrorKind("QueryError", "chatgpt:prompt_000", "query failed after 3 attempts: 503")
	collector.AddWarning("analysis", "extraction fallback used for chatgpt:prompt_001")
	collector.MarkRunFatal()

	record := NewErrorSummaryRecord("run-1", collector.TakeSnapshot(), collector.HasFatalErrors())

	if record.Type != "error_summary" {
		t.Errorf("type = %s", record.Type)
	}
	if !record.HasFatalErrors {
		t.Error("hasFatalErrors should be true")
	}
	if record.TotalErrors != 1 || record.TotalWarnings != 1 {
		t.Errorf("totals = %d/%d, want 1/1", record.TotalErrors, record.TotalWarnings)
	}
	if len(record.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(record.Errors))
	}
	row := record.Errors[0]
	if row.ErrorType != "QueryError" || row.Context != "chatgpt:prompt_000" || !row.Recoverable {
		t.Errorf("error row = %+v", row)
	}
	if record.Warnings[0] != "extraction fallback used for chatgpt:prompt_001" {
		t.Errorf("warnings = %v", record.Warnings)
	}
}
