// internal/providers/perplexity.go
package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/AI-Template-SDK/brand-tracker/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

type perplexityProvider struct {
	client *resty.Client
	model  string
	log    *logrus.Logger
}

type perplexityRequest struct {
	Model    string              `json:"model"`
	Messages []perplexityMessage `json:"messages"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityResponse struct {
	Model     string   `json:"model"`
	Citations []string `json:"citations"`
	Choices   []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewPerplexityProvider creates the perplexity platform adapter. Perplexity
// reports source citations on the API response, so answers carry them
// directly.
func NewPerplexityProvider(cfg *config.Config, log *logrus.Logger) Provider {
	client := resty.New().
		SetBaseURL(cfg.PerplexityBaseURL).
		SetAuthToken(cfg.PerplexityAPIKey).
		SetTimeout(2 * time.Minute).
		SetHeader("Content-Type", "application/json")

	return &perplexityProvider{
		client: client,
		model:  cfg.PerplexityModel,
		log:    log,
	}
}

func (p *perplexityProvider) Name() string {
	return "perplexity"
}

func (p *perplexityProvider) Model() string {
	return p.model
}

func (p *perplexityProvider) Answer(ctx context.Context, prompt string) (*Answer, error) {
	body := perplexityRequest{
		Model: p.model,
		Messages: []perplexityMessage{
			{Role: "system", Content: "Be precise and cite your sources."},
			{Role: "user", Content: prompt},
		},
	}

	var result perplexityResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return nil, NewTransientError(p.Name(), fmt.Errorf("perplexity request failed: %w", err))
	}

	if resp.IsError() {
		err := fmt.Errorf("perplexity API returned status %d", resp.StatusCode())
		if transientStatus(resp.StatusCode()) {
			return nil, NewTransientError(p.Name(), err)
		}
		return nil, NewPermanentError(p.Name(), err)
	}

	if len(result.Choices) == 0 {
		return nil, NewTransientError(p.Name(), fmt.Errorf("no response choices returned"))
	}

	model := result.Model
	if model == "" {
		model = p.model
	}

	p.log.Debugf("[PerplexityProvider] answered prompt with %d citations", len(result.Citations))

	return &Answer{
		Text:      result.Choices[0].Message.Content,
		Model:     model,
		Citations: result.Citations,
	}, nil
}
