// internal/output/records.go
package output

import (
	"time"

	"github.com/AI-Template-SDK/brand-tracker/internal/metrics"
	"github.com/AI-Template-SDK/brand-tracker/internal/models"
	"github.com/AI-Template-SDK/brand-tracker/internal/tracking"
)

// Record is one emitted output record. The Type discriminator doubles as the
// sink routing key.
type Record interface {
	RecordType() string
}

// MentionRow is one mention on a prompt_result record.
type MentionRow struct {
	Brand         string `json:"brand"`
	Count         int    `json:"count"`
	Rank          int    `json:"rank"`
	Context       string `json:"context"`
	IsRecommended bool   `json:"isRecommended"`
}

// PromptResultRecord is emitted once per analyzed (prompt, platform) pair.
type PromptResultRecord struct {
	Type                  string       `json:"type"`
	RunID                 string       `json:"runId"`
	PromptID              string       `json:"promptId"`
	PromptText            string       `json:"promptText"`
	Platform              string       `json:"platform"`
	PlatformModel         string       `json:"platformModel"`
	RawResponse           string       `json:"rawResponse"`
	Mentions              []MentionRow `json:"mentions"`
	Citations             []string     `json:"citations"`
	PromptWinner          *string      `json:"promptWinner"`
	PromptLoser           *string      `json:"promptLoser"`
	TrackedBrandMentioned bool         `json:"trackedBrandMentioned"`
	TrackedBrandRank      *int         `json:"trackedBrandRank"`
	CompetitorsMentioned  []string     `json:"competitorsMentioned"`
	CompetitorsMissed     []string     `json:"competitorsMissed"`
}

func (r *PromptResultRecord) RecordType() string { return r.Type }

// OverallMetrics is the run-wide block on a brand_summary record.
type OverallMetrics struct {
	VisibilityScore      float64 `json:"visibilityScore"`
	CitationShare        float64 `json:"citationShare"`
	TotalMentions        int     `json:"totalMentions"`
	TotalPromptsAnalyzed int     `json:"totalPromptsAnalyzed"`
	PromptsWithMention   int     `json:"promptsWithMention"`
	PromptsMissed        int     `json:"promptsMissed"`
}

// PlatformMetricsRow is one platform's block on a brand_summary record.
type PlatformMetricsRow struct {
	VisibilityScore    float64 `json:"visibilityScore"`
	CitationShare      float64 `json:"citationShare"`
	Mentions           int     `json:"mentions"`
	PromptsWithMention int     `json:"promptsWithMention"`
}

// CompetitivePosition is the ranking block on a brand_summary record.
type CompetitivePosition struct {
	Rank        int `json:"rank"`
	TotalBrands int `json:"totalBrands"`
	PromptsWon  int `json:"promptsWon"`
	PromptsLost int `json:"promptsLost"`
	PromptsTied int `json:"promptsTied"`
}

// BrandSummaryRecord is emitted once per tracked/competitor brand.
type BrandSummaryRecord struct {
	Type                string                        `json:"type"`
	RunID               string                        `json:"runId"`
	Brand               string                        `json:"brand"`
	OverallMetrics      OverallMetrics                `json:"overallMetrics"`
	PlatformBreakdown   map[string]PlatformMetricsRow `json:"platformBreakdown"`
	CompetitivePosition CompetitivePosition           `json:"competitivePosition"`
	TopContexts         []string                      `json:"topContexts"`
}

func (r *BrandSummaryRecord) RecordType() string { return r.Type }

// RankingRow is one row of the overall leaderboard.
type RankingRow struct {
	Rank            int     `json:"rank"`
	Brand           string  `json:"brand"`
	VisibilityScore float64 `json:"visibilityScore"`
	CitationShare   float64 `json:"citationShare"`
	TotalMentions   int     `json:"totalMentions"`
	PromptsWon      int     `json:"promptsWon"`
}

// PlatformRankingRow is one row of a per-platform leaderboard.
type PlatformRankingRow struct {
	Rank          int     `json:"rank"`
	Brand         string  `json:"brand"`
	CitationShare float64 `json:"citationShare"`
	Mentions      int     `json:"mentions"`
}

// LeaderboardRecord is emitted once per run.
type LeaderboardRecord struct {
	Type                 string                          `json:"type"`
	RunID                string                          `json:"runId"`
	Rankings             []RankingRow                    `json:"rankings"`
	PlatformLeaderboards map[string][]PlatformRankingRow `json:"platformLeaderboards"`
}

func (r *LeaderboardRecord) RecordType() string { return r.Type }

// ExecutionBlock is the timing block on a run_summary record.
type ExecutionBlock struct {
	StartedAt          time.Time `json:"startedAt"`
	CompletedAt        time.Time `json:"completedAt"`
	DurationMs         int64     `json:"durationMs"`
	PromptsProcessed   int       `json:"promptsProcessed"`
	ResponsesCollected int       `json:"responsesCollected"`
}

// BillingBlock reports computed billing on a run_summary record. No billing
// event is emitted; the block is informational.
type BillingBlock struct {
	EventType     string  `json:"eventType"`
	EventsCharged int     `json:"eventsCharged"`
	PricePerEvent float64 `json:"pricePerEvent"`
}

// RunSummaryRecord is always emitted, even on fatal runs.
type RunSummaryRecord struct {
	Type      string               `json:"type"`
	RunID     string               `json:"runId"`
	Status    string               `json:"status"`
	Input     *models.TrackerInput `json:"input"`
	Execution ExecutionBlock       `json:"execution"`
	Billing   BillingBlock         `json:"billing"`
}

func (r *RunSummaryRecord) RecordType() string { return r.Type }

// ErrorRow is one error on an error_summary record.
type ErrorRow struct {
	ErrorType   string `json:"errorType"`
	Message     string `json:"message"`
	Context     string `json:"context"`
	Recoverable bool   `json:"recoverable"`
}

// ErrorSummaryRecord is always emitted, truncated to the most recent entries.
type ErrorSummaryRecord struct {
	Type           string     `json:"type"`
	RunID          string     `json:"runId"`
	TotalErrors    int        `json:"totalErrors"`
	TotalWarnings  int        `json:"totalWarnings"`
	HasFatalErrors bool       `json:"hasFatalErrors"`
	Errors         []ErrorRow `json:"errors"`
	Warnings       []string   `json:"warnings"`
}

func (r *ErrorSummaryRecord) RecordType() string { return r.Type }

// BillingEventType is the computed billing unit: one analyzed prompt response.
const BillingEventType = "prompt-analyzed"

// NewPromptResultRecord builds the prompt_result record for one analysis.
func NewPromptResultRecord(runID string, result *models.PromptResult) *PromptResultRecord {
	mentions := make([]MentionRow, len(result.Mentions))
	for i, m := range result.Mentions {
		mentions[i] = MentionRow{
			Brand:         m.Brand,
			Count:         m.Count,
			Rank:          m.Rank,
			Context:       m.Context,
			IsRecommended: m.IsRecommended,
		}
	}

	var trackedRank *int
	if result.TrackedMentioned {
		rank := result.TrackedRank
		trackedRank = &rank
	}

	citations := result.Citations
	if citations == nil {
		citations = []string{}
	}

	return &PromptResultRecord{
		Type:                  "prompt_result",
		RunID:                 runID,
		PromptID:              result.PromptID,
		PromptText:            result.PromptText,
		Platform:              result.Platform,
		PlatformModel:         result.PlatformModel,
		RawResponse:           result.RawResponse,
		Mentions:              mentions,
		Citations:             citations,
		PromptWinner:          result.PromptWinner,
		PromptLoser:           result.PromptLoser,
		TrackedBrandMentioned: result.TrackedMentioned,
		TrackedBrandRank:      trackedRank,
		CompetitorsMentioned:  result.CompetitorsFound,
		CompetitorsMissed:     result.CompetitorsMissed,
	}
}

// NewBrandSummaryRecord builds the brand_summary record for one brand.
func NewBrandSummaryRecord(runID string, bm *models.BrandMetrics, totalBrands int) *BrandSummaryRecord {
	breakdown := make(map[string]PlatformMetricsRow, len(bm.PlatformBreakdown))
	for platform, pm := range bm.PlatformBreakdown {
		breakdown[platform] = PlatformMetricsRow{
			VisibilityScore:    pm.VisibilityScore,
			CitationShare:      pm.CitationShare,
			Mentions:           pm.Mentions,
			PromptsWithMention: pm.PromptsWithMention,
		}
	}

	return &BrandSummaryRecord{
		Type:  "brand_summary",
		RunID: runID,
		Brand: bm.Brand,
		OverallMetrics: OverallMetrics{
			VisibilityScore:      bm.VisibilityScore,
			CitationShare:        bm.CitationShare,
			TotalMentions:        bm.TotalMentions,
			TotalPromptsAnalyzed: bm.TotalPromptsAnalyzed,
			PromptsWithMention:   bm.PromptsWithMention,
			PromptsMissed:        bm.PromptsMissed,
		},
		PlatformBreakdown: breakdown,
		CompetitivePosition: CompetitivePosition{
			Rank:        bm.Rank,
			TotalBrands: totalBrands,
			PromptsWon:  bm.PromptsWon,
			PromptsLost: bm.PromptsLost,
			PromptsTied: bm.PromptsTied,
		},
		TopContexts: bm.TopContexts,
	}
}

// NewLeaderboardRecord builds the leaderboard record from the aggregate.
func NewLeaderboardRecord(runID string, agg *metrics.Aggregate) *LeaderboardRecord {
	rankings := make([]RankingRow, len(agg.Leaderboard))
	for i, entry := range agg.Leaderboard {
		rankings[i] = RankingRow{
			Rank:            entry.Rank,
			Brand:           entry.Brand,
			VisibilityScore: entry.VisibilityScore,
			CitationShare:   entry.CitationShare,
			TotalMentions:   entry.TotalMentions,
			PromptsWon:      entry.PromptsWon,
		}
	}

	platformBoards := make(map[string][]PlatformRankingRow, len(agg.PlatformLeaderboards))
	for platform, entries := range agg.PlatformLeaderboards {
		rows := make([]PlatformRankingRow, len(entries))
		for i, entry := range entries {
			rows[i] = PlatformRankingRow{
				Rank:          entry.Rank,
				Brand:         entry.Brand,
				CitationShare: entry.CitationShare,
				Mentions:      entry.Mentions,
			}
		}
		platformBoards[platform] = rows
	}

	return &LeaderboardRecord{
		Type:                 "leaderboard",
		RunID:                runID,
		Rankings:             rankings,
		PlatformLeaderboards: platformBoards,
	}
}

// NewRunSummaryRecord builds the run_summary record.
func NewRunSummaryRecord(runID string, input *models.TrackerInput, startedAt, completedAt time.Time, promptsProcessed, responsesCollected int, fatal bool, pricePerEvent float64) *RunSummaryRecord {
	status := "completed"
	if fatal {
		status = "failed"
	}
	return &RunSummaryRecord{
		Type:   "run_summary",
		RunID:  runID,
		Status: status,
		Input:  input,
		Execution: ExecutionBlock{
			StartedAt:          startedAt,
			CompletedAt:        completedAt,
			DurationMs:         completedAt.Sub(startedAt).Milliseconds(),
			PromptsProcessed:   promptsProcessed,
			ResponsesCollected: responsesCollected,
		},
		Billing: BillingBlock{
			EventType:     BillingEventType,
			EventsCharged: responsesCollected,
			PricePerEvent: pricePerEvent,
		},
	}
}

// NewErrorSummaryRecord builds the error_summary record from a collector
// snapshot.
func NewErrorSummaryRecord(runID string, snap tracking.Snapshot, fatal bool) *ErrorSummaryRecord {
	errors := make([]ErrorRow, len(snap.Errors))
	for i, entry := range snap.Errors {
		errors[i] = ErrorRow{
			ErrorType:   entry.Kind,
			Message:     entry.Message,
			Context:     entry.Context,
			Recoverable: true,
		}
	}
	warnings := make([]string, len(snap.Warnings))
	for i, entry := range snap.Warnings {
		warnings[i] = entry.Message
	}

	return &ErrorSummaryRecord{
		Type:           "error_summary",
		RunID:          runID,
		TotalErrors:    snap.TotalErrors,
		TotalWarnings:  snap.TotalWarnings,
		HasFatalErrors: fatal,
		Errors:         errors,
		Warnings:       warnings,
	}
}
