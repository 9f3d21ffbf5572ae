// internal/providers/gemini.go
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/AI-Template-SDK/brand-tracker/internal/config"
	"github.com/sirupsen/logrus"
)

// geminiProvider is the interactive-session adapter: it drives a real Gemini
// chat session through the BrightData dataset API (trigger, poll, snapshot)
// instead of a direct completion API. Answers include any anchor hrefs the
// session surfaced.
type geminiProvider struct {
	client       *BrightDataClient
	datasetID    string
	model        string
	pollInterval time.Duration
	log          *logrus.Logger
}

type geminiJobRequest struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

type geminiResult struct {
	Prompt       string `json:"prompt"`
	AnswerText   string `json:"answer_text"`
	AnswerHTML   string `json:"answer_html"`
	ModelVersion string `json:"model_version"`
	Error        string `json:"error,omitempty"`
}

var hrefPattern = regexp.MustCompile(`href="(https?://[^"]+)"`)

// NewGeminiProvider creates the gemini platform adapter.
func NewGeminiProvider(cfg *config.Config, log *logrus.Logger) Provider {
	return &geminiProvider{
		client:       NewBrightDataClient(cfg.BrightData.APIKey, cfg.BrightData.BaseURL, log),
		datasetID:    cfg.BrightData.DatasetID,
		model:        "gemini",
		pollInterval: 10 * time.Second,
		log:          log,
	}
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) Model() string {
	return p.model
}

func (p *geminiProvider) Answer(ctx context.Context, prompt string) (*Answer, error) {
	payload := []geminiJobRequest{{
		URL:    "https://gemini.google.com",
		Prompt: prompt,
	}}

	snapshotID, err := p.client.Trigger(ctx, payload, p.datasetID)
	if err != nil {
		return nil, NewTransientError(p.Name(), fmt.Errorf("trigger failed: %w", err))
	}

	p.log.Debugf("[GeminiProvider] session submitted, snapshot %s", snapshotID)

	if err := p.client.PollUntilComplete(ctx, snapshotID, "GeminiProvider", p.pollInterval); err != nil {
		return nil, NewTransientError(p.Name(), fmt.Errorf("poll failed: %w", err))
	}

	body, err := p.client.FetchResults(ctx, snapshotID, "GeminiProvider", p.pollInterval)
	if err != nil {
		return nil, NewTransientError(p.Name(), fmt.Errorf("results fetch failed: %w", err))
	}

	var results []geminiResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, NewPermanentError(p.Name(), fmt.Errorf("failed to decode results: %w", err))
	}
	if len(results) == 0 {
		return nil, NewTransientError(p.Name(), fmt.Errorf("snapshot %s returned no results", snapshotID))
	}

	result := results[0]
	if result.Error != "" {
		return nil, NewTransientError(p.Name(), fmt.Errorf("session error: %s", result.Error))
	}
	if result.AnswerText == "" {
		return nil, NewTransientError(p.Name(), fmt.Errorf("snapshot %s returned empty answer", snapshotID))
	}

	model := result.ModelVersion
	if model == "" {
		model = p.model
	}

	return &Answer{
		Text:      result.AnswerText,
		Model:     model,
		Citations: extractHrefs(result.AnswerHTML),
	}, nil
}

// extractHrefs pulls anchor targets out of the rendered answer HTML,
// deduplicating while preserving first-seen order.
func extractHrefs(html string) []string {
	matches := hrefPattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var urls []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			urls = append(urls, m[1])
		}
	}
	return urls
}
