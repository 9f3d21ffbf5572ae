// internal/providers/anthropic.go
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/AI-Template-SDK/brand-tracker/internal/config"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"
)

type anthropicProvider struct {
	client *anthropic.Client
	model  string
	log    *logrus.Logger
}

// NewAnthropicProvider creates the claude platform adapter.
func NewAnthropicProvider(cfg *config.Config, log *logrus.Logger) Provider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.AnthropicAPIKey),
	)
	return &anthropicProvider{
		client: &client,
		model:  cfg.AnthropicModel,
		log:    log,
	}
}

func (p *anthropicProvider) Name() string {
	return "claude"
}

func (p *anthropicProvider) Model() string {
	return p.model
}

func (p *anthropicProvider) Answer(ctx context.Context, prompt string) (*Answer, error) {
	messages := []anthropic.MessageParam{{
		Content: []anthropic.ContentBlockParamUnion{{
			OfText: &anthropic.TextBlockParam{Text: prompt},
		}},
		Role: anthropic.MessageParamRoleUser,
	}}

	response, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   2000,
		Messages:    messages,
		Temperature: anthropic.Float(0.7),
	})
	if err != nil {
		return nil, classifyAnthropicError(p.Name(), err)
	}

	text := extractAnthropicText(*response)
	if text == "" {
		return nil, NewTransientError(p.Name(), fmt.Errorf("empty response content"))
	}

	p.log.Debugf("[AnthropicProvider] answered prompt (%d chars)", len(text))

	return &Answer{
		Text:  text,
		Model: string(response.Model),
	}, nil
}

func extractAnthropicText(response anthropic.Message) string {
	var textParts []string
	for _, block := range response.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			textParts = append(textParts, variant.Text)
		}
	}
	return strings.Join(textParts, "")
}
