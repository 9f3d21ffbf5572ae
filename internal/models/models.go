// internal/models/models.go
package models

import (
	"strings"
	"time"
)

// PromptOrigin describes how a prompt entered the run.
type PromptOrigin string

const (
	PromptOriginGenerated PromptOrigin = "generated"
	PromptOriginTemplate  PromptOrigin = "template"
	PromptOriginCustom    PromptOrigin = "custom"
)

// Prompt is one question asked on every platform. Immutable once created.
type Prompt struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Origin  PromptOrigin `json:"origin"`
	Ordinal int          `json:"ordinal"`
}

// TaskState is the lifecycle state of a PlatformTask.
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskRunning   TaskState = "running"
	TaskSucceeded TaskState = "succeeded"
	TaskFailed    TaskState = "failed"
)

// PlatformTask is one (prompt, platform) query attempt sequence. A single
// orchestrator worker owns it until it reaches a terminal state, after which
// it is never mutated again.
type PlatformTask struct {
	PromptID     string    `json:"prompt_id"`
	PromptText   string    `json:"prompt_text"`
	Platform     string    `json:"platform"`
	State        TaskState `json:"state"`
	AttemptCount int       `json:"attempt_count"`
	RawAnswer    string    `json:"raw_answer,omitempty"`
	ModelID      string    `json:"model_id,omitempty"`
	Citations    []string  `json:"citations,omitempty"`
	FailReason   string    `json:"fail_reason,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
}

// Terminal reports whether the task reached succeeded or failed.
func (t *PlatformTask) Terminal() bool {
	return t.State == TaskSucceeded || t.State == TaskFailed
}

// BrandMention is one brand's appearance within one answer.
type BrandMention struct {
	Brand         string `json:"brand"`
	Count         int    `json:"count"`
	Rank          int    `json:"rank"`
	Context       string `json:"context"`
	IsRecommended bool   `json:"isRecommended"`
}

// ExtractionTier identifies which analyzer tier produced a result.
type ExtractionTier string

const (
	ExtractionTierLLM       ExtractionTier = "llm"
	ExtractionTierHeuristic ExtractionTier = "heuristic"
)

// PromptResult is the analysis of one succeeded PlatformTask. Derived once,
// immutable afterwards.
type PromptResult struct {
	PromptID          string         `json:"prompt_id"`
	PromptText        string         `json:"prompt_text"`
	Platform          string         `json:"platform"`
	PlatformModel     string         `json:"platform_model"`
	RawResponse       string         `json:"raw_response"`
	Mentions          []BrandMention `json:"mentions"`
	Citations         []string       `json:"citations"`
	PromptWinner      *string        `json:"prompt_winner"`
	PromptLoser       *string        `json:"prompt_loser"`
	TrackedMentioned  bool           `json:"tracked_mentioned"`
	TrackedRank       int            `json:"tracked_rank,omitempty"`
	CompetitorsFound  []string       `json:"competitors_found"`
	CompetitorsMissed []string       `json:"competitors_missed"`
	ExtractionTier    ExtractionTier `json:"extraction_tier"`
}

// MentionFor returns the mention for brand, matched case-insensitively, or
// nil when the brand is absent from this result.
func (r *PromptResult) MentionFor(brand string) *BrandMention {
	for i := range r.Mentions {
		if strings.EqualFold(r.Mentions[i].Brand, brand) {
			return &r.Mentions[i]
		}
	}
	return nil
}

// PlatformMetrics is one brand's breakdown on a single platform.
type PlatformMetrics struct {
	VisibilityScore    float64 `json:"visibilityScore"`
	CitationShare      float64 `json:"citationShare"`
	Mentions           int     `json:"mentions"`
	PromptsWithMention int     `json:"promptsWithMention"`
}

// BrandMetrics is one brand's run-wide performance, computed at finalize.
type BrandMetrics struct {
	Brand                string                     `json:"brand"`
	IsTracked            bool                       `json:"isTracked"`
	VisibilityScore      float64                    `json:"visibilityScore"`
	CitationShare        float64                    `json:"citationShare"`
	TotalMentions        int                        `json:"totalMentions"`
	TotalPromptsAnalyzed int                        `json:"totalPromptsAnalyzed"`
	PromptsWithMention   int                        `json:"promptsWithMention"`
	PromptsMissed        int                        `json:"promptsMissed"`
	PromptsWon           int                        `json:"promptsWon"`
	PromptsLost          int                        `json:"promptsLost"`
	PromptsTied          int                        `json:"promptsTied"`
	PlatformBreakdown    map[string]PlatformMetrics `json:"platformBreakdown"`
	TopContexts          []string                   `json:"topContexts"`
	Rank                 int                        `json:"rank"`
}

// LeaderboardEntry is one row of the overall competitive ranking.
type LeaderboardEntry struct {
	Rank            int     `json:"rank"`
	Brand           string  `json:"brand"`
	IsTracked       bool    `json:"isTracked"`
	VisibilityScore float64 `json:"visibilityScore"`
	CitationShare   float64 `json:"citationShare"`
	TotalMentions   int     `json:"totalMentions"`
	PromptsWon      int     `json:"promptsWon"`
}

// PlatformLeaderboardEntry is one row of a single platform's ranking.
type PlatformLeaderboardEntry struct {
	Rank          int     `json:"rank"`
	Brand         string  `json:"brand"`
	CitationShare float64 `json:"citationShare"`
	Mentions      int     `json:"mentions"`
}

// TrackerInput is the caller-supplied description of a tracking run.
type TrackerInput struct {
	Category      string              `json:"category"`
	TrackedBrand  string              `json:"tracked_brand"`
	Competitors   []string            `json:"competitors"`
	BrandAliases  map[string][]string `json:"brand_aliases,omitempty"`
	Platforms     []string            `json:"platforms"`
	PromptCount   int                 `json:"prompt_count"`
	CustomPrompts []string            `json:"custom_prompts,omitempty"`
}

// AllBrands returns the tracked brand followed by the competitors.
func (in *TrackerInput) AllBrands() []string {
	brands := make([]string, 0, len(in.Competitors)+1)
	brands = append(brands, in.TrackedBrand)
	brands = append(brands, in.Competitors...)
	return brands
}

// AliasesFor returns the configured aliases for brand, looked up
// case-insensitively.
func (in *TrackerInput) AliasesFor(brand string) []string {
	for name, aliases := range in.BrandAliases {
		if strings.EqualFold(name, brand) {
			return aliases
		}
	}
	return nil
}
