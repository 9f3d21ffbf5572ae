// internal/prompts/generator.go
package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/AI-Template-SDK/brand-tracker/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

const generationSystemPrompt = `You are an expert at generating search queries that people use when researching products and services.

Your task is to generate diverse, realistic prompts that users might ask AI assistants when researching a specific category of products/services.

Generate prompts that cover different angles:
1. Recommendation queries ("What's the best...")
2. Comparison queries ("Compare X vs Y...")
3. Feature queries ("Which has the best...")
4. Pricing queries ("Most affordable...")
5. Use case queries ("Best for small teams...")
6. Alternative queries ("Alternatives to...")
7. Review queries ("What do users say about...")

IMPORTANT:
- Generate exactly the number of prompts requested
- Make prompts specific to the category provided
- Vary the phrasing and angles
- Return ONLY a JSON array of strings, no other text

Example output for "CRM software" category:
["What is the best CRM software for startups?", "Compare the top CRM tools for sales teams", "Which CRM has the best email integration?"]`

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// LLMGenerator generates prompts with an OpenAI chat completion.
type LLMGenerator struct {
	client *openai.Client
	model  string
	log    *logrus.Logger
}

// NewLLMGenerator creates the prompt generator.
func NewLLMGenerator(cfg *config.Config, log *logrus.Logger) *LLMGenerator {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)
	return &LLMGenerator{
		client: &client,
		model:  cfg.OpenAIModel,
		log:    log,
	}
}

func (g *LLMGenerator) GeneratePrompts(ctx context.Context, category string, count int) ([]string, error) {
	userPrompt := fmt.Sprintf(`Generate exactly %d diverse search prompts for the category: %q

These prompts should represent realistic questions users ask AI assistants when researching products in this category.

Return ONLY a JSON array of %d strings. Example format:
["prompt 1", "prompt 2", "prompt 3"]`, count, category, count)

	response, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(generationSystemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       openai.ChatModel(g.model),
		Temperature: openai.Float(0.8),
	})
	if err != nil {
		return nil, fmt.Errorf("prompt generation call failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	prompts := parsePromptArray(response.Choices[0].Message.Content)
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no prompts parsed from generation response")
	}

	g.log.Debugf("[Prompts] generated %d prompts for %q", len(prompts), category)
	return prompts, nil
}

// parsePromptArray parses a JSON string array, tolerating surrounding prose
// by extracting the first bracketed block.
func parsePromptArray(content string) []string {
	var prompts []string
	if err := json.Unmarshal([]byte(content), &prompts); err == nil {
		return compactStrings(prompts)
	}

	if match := jsonArrayPattern.FindString(content); match != "" {
		if err := json.Unmarshal([]byte(match), &prompts); err == nil {
			return compactStrings(prompts)
		}
	}
	return nil
}

func compactStrings(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
