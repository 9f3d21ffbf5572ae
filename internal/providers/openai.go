// internal/providers/openai.go
package providers

import (
	"context"
	"fmt"

	"github.com/AI-Template-SDK/brand-tracker/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

type openAIProvider struct {
	client *openai.Client
	model  string
	log    *logrus.Logger
}

// NewOpenAIProvider creates the chatgpt platform adapter backed by the
// standard OpenAI chat completions API.
func NewOpenAIProvider(cfg *config.Config, log *logrus.Logger) Provider {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)
	return &openAIProvider{
		client: &client,
		model:  cfg.OpenAIModel,
		log:    log,
	}
}

func (p *openAIProvider) Name() string {
	return "chatgpt"
}

func (p *openAIProvider) Model() string {
	return p.model
}

func (p *openAIProvider) Answer(ctx context.Context, prompt string) (*Answer, error) {
	response, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a helpful assistant that provides accurate, comprehensive answers to questions."),
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(p.model),
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(2000),
	})
	if err != nil {
		return nil, classifyOpenAIError(p.Name(), err)
	}

	if len(response.Choices) == 0 {
		return nil, NewTransientError(p.Name(), fmt.Errorf("no response choices returned"))
	}

	p.log.Debugf("[OpenAIProvider] answered prompt (%d chars)", len(response.Choices[0].Message.Content))

	return &Answer{
		Text:  response.Choices[0].Message.Content,
		Model: response.Model,
	}, nil
}
