// internal/analyzer/extractor.go
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AI-Template-SDK/brand-tracker/internal/config"
	"github.com/AI-Template-SDK/brand-tracker/internal/models"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

// ExtractionError is a failed or rejected LLM extraction. It always routes
// the answer to the heuristic tier, never fails the task.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor is the primary mention-extraction tier.
type Extractor interface {
	Extract(ctx context.Context, answerText string, brands []string, aliasesFor func(string) []string) ([]models.BrandMention, error)
}

// extractedMention is the structured output row returned by the model.
type extractedMention struct {
	Brand         string `json:"brand" jsonschema_description:"The brand name exactly as provided in the brand list, or as written in the response if not in the list"`
	Count         int    `json:"count" jsonschema_description:"How many times this brand is mentioned in the response"`
	Context       string `json:"context" jsonschema_description:"A short quote (under 200 characters) showing how the brand is discussed"`
	IsRecommended bool   `json:"is_recommended" jsonschema_description:"Whether the response explicitly recommends or endorses this brand"`
}

// extractionResponse is the full structured output payload.
type extractionResponse struct {
	Mentions []extractedMention `json:"mentions" jsonschema_description:"Every brand from the provided list that appears in the response, plus any other clearly named competitor brands"`
}

// GenerateSchema builds a strict JSON schema for structured outputs.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var extractionResponseSchema = GenerateSchema[extractionResponse]()

const extractionSystemPrompt = `You are a precise brand-mention analyst. Given an AI assistant's response and a list of brands, identify every brand mention.

Rules:
- Count only genuine references to the brand, including aliases and common abbreviations.
- Report the exact mention count for each brand that appears at least once.
- Do not report brands that are absent from the response.
- Quote a short context snippet for each mentioned brand.
- Mark is_recommended true only when the response explicitly recommends, endorses, or ranks the brand favorably.`

// LLMExtractor implements Extractor with OpenAI structured outputs at
// temperature 0.
type LLMExtractor struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *logrus.Logger
}

// NewLLMExtractor creates the primary extraction tier.
func NewLLMExtractor(cfg *config.Config, log *logrus.Logger) *LLMExtractor {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)
	return &LLMExtractor{
		client:  &client,
		model:   cfg.ExtractionModel,
		timeout: cfg.Tracker.ExtractionTimeout,
		log:     log,
	}
}

func (e *LLMExtractor) Extract(ctx context.Context, answerText string, brands []string, aliasesFor func(string) []string) ([]models.BrandMention, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var brandLines []string
	for _, brand := range brands {
		line := brand
		if aliases := aliasesFor(brand); len(aliases) > 0 {
			line = fmt.Sprintf("%s (aliases: %s)", brand, strings.Join(aliases, ", "))
		}
		brandLines = append(brandLines, "- "+line)
	}

	userPrompt := fmt.Sprintf("Brands to track:\n%s\n\nResponse to analyze:\n%s",
		strings.Join(brandLines, "\n"), answerText)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "brand_mention_extraction",
		Description: openai.String("Brand mentions found in an AI response"),
		Schema:      extractionResponseSchema,
		Strict:      openai.Bool(true),
	}

	response, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractionSystemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model: openai.ChatModel(e.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, &ExtractionError{Reason: "api call failed", Err: err}
	}
	if len(response.Choices) == 0 {
		return nil, &ExtractionError{Reason: "no response choices"}
	}

	var payload extractionResponse
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &payload); err != nil {
		return nil, &ExtractionError{Reason: "unparseable payload", Err: err}
	}

	return validateAndRank(payload.Mentions, brands, aliasesFor)
}

// validateAndRank rejects invalid rows, canonicalizes brand names against the
// known brand list, and assigns ranks by count (ties by returned order).
func validateAndRank(rows []extractedMention, brands []string, aliasesFor func(string) []string) ([]models.BrandMention, error) {
	seen := make(map[string]bool, len(rows))
	var mentions []models.BrandMention
	for _, row := range rows {
		name := strings.TrimSpace(row.Brand)
		if name == "" {
			return nil, &ExtractionError{Reason: "mention with empty brand"}
		}
		if row.Count < 1 {
			return nil, &ExtractionError{Reason: fmt.Sprintf("invalid count %d for brand %s", row.Count, name)}
		}

		canonical := canonicalBrand(name, brands, aliasesFor)
		key := strings.ToLower(canonical)
		if seen[key] {
			continue
		}
		seen[key] = true

		mentions = append(mentions, models.BrandMention{
			Brand:         canonical,
			Count:         row.Count,
			Context:       truncateSnippet(row.Context),
			IsRecommended: row.IsRecommended,
		})
	}

	sort.SliceStable(mentions, func(i, j int) bool {
		return mentions[i].Count > mentions[j].Count
	})
	for i := range mentions {
		mentions[i].Rank = i + 1
	}
	return mentions, nil
}

// canonicalBrand maps a model-reported name onto the configured brand list,
// checking names and aliases case-insensitively. Unknown names pass through
// unchanged.
func canonicalBrand(name string, brands []string, aliasesFor func(string) []string) string {
	for _, brand := range brands {
		if strings.EqualFold(brand, name) {
			return brand
		}
		for _, alias := range aliasesFor(brand) {
			if strings.EqualFold(alias, name) {
				return brand
			}
		}
	}
	return name
}
