// workflows/tracker_processor.go
package workflows

import (
	"context"
	"fmt"

	"github.com/AI-Template-SDK/brand-tracker/internal/models"
	"github.com/AI-Template-SDK/brand-tracker/internal/runner"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
)

// TrackerProcessor wires tracking runs into the event queue.
type TrackerProcessor struct {
	client inngestgo.Client
	runner *runner.Runner
}

// NewTrackerProcessor creates the processor for run.requested events.
func NewTrackerProcessor(r *runner.Runner) *TrackerProcessor {
	return &TrackerProcessor{runner: r}
}

// SetClient sets the inngest client.
func (p *TrackerProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// TrackerRunEvent is the payload of a brand.tracker/run.requested event.
type TrackerRunEvent struct {
	Category      string              `json:"category"`
	TrackedBrand  string              `json:"tracked_brand"`
	Competitors   []string            `json:"competitors"`
	BrandAliases  map[string][]string `json:"brand_aliases,omitempty"`
	Platforms     []string            `json:"platforms,omitempty"`
	PromptCount   int                 `json:"prompt_count,omitempty"`
	CustomPrompts []string            `json:"custom_prompts,omitempty"`
	TriggeredBy   string              `json:"triggered_by,omitempty"`
}

// ProcessTrackingRun executes a full tracking run per event. A fatal run
// (zero responses) fails the step so the failure is visible on the event;
// recoverable task errors stay inside the run's error_summary record.
func (p *TrackerProcessor) ProcessTrackingRun() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "brand-tracker-run",
			Name: "Brand Visibility Tracking Run",
		},
		inngestgo.EventTrigger("brand.tracker/run.requested", nil),
		func(ctx context.Context, input inngestgo.Input[TrackerRunEvent]) (any, error) {
			data := input.Event.Data

			report, err := step.Run(ctx, "execute-tracking-run", func(ctx context.Context) (*runner.Report, error) {
				trackerInput := &models.TrackerInput{
					Category:      data.Category,
					TrackedBrand:  data.TrackedBrand,
					Competitors:   data.Competitors,
					BrandAliases:  data.BrandAliases,
					Platforms:     data.Platforms,
					PromptCount:   data.PromptCount,
					CustomPrompts: data.CustomPrompts,
				}
				return p.runner.Run(ctx, trackerInput)
			})
			if err != nil {
				return nil, err
			}

			return map[string]interface{}{
				"status":              report.Status,
				"run_id":              report.RunID,
				"prompts_processed":   report.PromptsProcessed,
				"responses_collected": report.ResponsesCollected,
			}, nil
		},
	)

	if err != nil {
		fmt.Printf("Failed to create tracker processor function: %v\n", err)
	}

	return fn
}
