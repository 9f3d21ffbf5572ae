// internal/prompts/supplier.go
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/AI-Template-SDK/brand-tracker/internal/models"
	"github.com/AI-Template-SDK/brand-tracker/internal/tracking"
	"github.com/sirupsen/logrus"
)

// DefaultPromptCount is used when the input does not request a count.
const DefaultPromptCount = 10

// Generator produces category-specific prompts. The LLM implementation lives
// in generator.go; failures fall back to the built-in templates.
type Generator interface {
	GeneratePrompts(ctx context.Context, category string, count int) ([]string, error)
}

// Built-in template bank used when generation fails or comes up short.
var fallbackTemplates = []string{
	"What are the best %s available today?",
	"Which %s offers the most features for the price?",
	"Compare the top rated %s options",
	"What is the most affordable %s?",
	"Best %s for small businesses",
	"Best %s for startups",
	"Best %s for enterprise companies",
	"Which %s has the best customer support?",
	"What are alternatives to popular %s?",
	"What do users say about %s in 2025?",
	"Which %s is easiest to use?",
	"Best %s with free trial",
	"Top rated %s according to reviews",
	"Which %s integrates with other tools?",
	"Most recommended %s by experts",
}

// Supplier assembles the run's prompt list: custom prompts first, then
// generated ones, deduplicated and capped.
type Supplier struct {
	generator  Generator
	collector  *tracking.Collector
	maxPrompts int
	log        *logrus.Logger
}

// NewSupplier creates a prompt supplier.
func NewSupplier(generator Generator, collector *tracking.Collector, maxPrompts int, log *logrus.Logger) *Supplier {
	return &Supplier{
		generator:  generator,
		collector:  collector,
		maxPrompts: maxPrompts,
		log:        log,
	}
}

// Supply returns the final prompt list for a run. Custom prompts keep their
// verbatim text (trimmed) and always precede generated ones; duplicates after
// trim and case fold are dropped keeping the first occurrence. The list never
// exceeds the configured cap, and supply itself never fails: generation
// errors degrade to the template bank with a warning.
func (s *Supplier) Supply(ctx context.Context, input *models.TrackerInput) []models.Prompt {
	requested := input.PromptCount
	if requested <= 0 {
		requested = DefaultPromptCount
	}
	if requested > s.maxPrompts {
		s.log.Infof("[Prompts] requested %d prompts, clamping to %d", requested, s.maxPrompts)
		requested = s.maxPrompts
	}

	seen := make(map[string]bool)
	var out []models.Prompt

	add := func(text string, origin models.PromptOrigin) bool {
		text = strings.TrimSpace(text)
		if text == "" {
			return false
		}
		key := strings.ToLower(text)
		if seen[key] {
			return false
		}
		seen[key] = true
		out = append(out, models.Prompt{
			ID:      fmt.Sprintf("prompt_%03d", len(out)),
			Text:    text,
			Origin:  origin,
			Ordinal: len(out),
		})
		return true
	}

	for _, custom := range input.CustomPrompts {
		if len(out) == requested {
			break
		}
		add(custom, models.PromptOriginCustom)
	}

	remaining := requested - len(out)
	if remaining > 0 {
		generated, err := s.generator.GeneratePrompts(ctx, input.Category, remaining)
		if err != nil {
			s.collector.AddWarning("prompts",
				fmt.Sprintf("prompt generation failed, using built-in templates: %v", err))
			generated = nil
		}
		for _, text := range generated {
			if len(out) == requested {
				break
			}
			add(text, models.PromptOriginGenerated)
		}
	}

	// Pad from the template bank when generation failed or came up short.
	for i := 0; len(out) < requested && i < len(fallbackTemplates); i++ {
		add(fmt.Sprintf(fallbackTemplates[i], input.Category), models.PromptOriginTemplate)
	}

	s.log.Infof("[Prompts] supplied %d prompts (%d requested)", len(out), requested)
	return out
}
