// internal/runner/runner.go
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AI-Template-SDK/brand-tracker/internal/analyzer"
	"github.com/AI-Template-SDK/brand-tracker/internal/config"
	"github.com/AI-Template-SDK/brand-tracker/internal/metrics"
	"github.com/AI-Template-SDK/brand-tracker/internal/models"
	"github.com/AI-Template-SDK/brand-tracker/internal/orchestrator"
	"github.com/AI-Template-SDK/brand-tracker/internal/output"
	"github.com/AI-Template-SDK/brand-tracker/internal/prompts"
	"github.com/AI-Template-SDK/brand-tracker/internal/providers"
	"github.com/AI-Template-SDK/brand-tracker/internal/sink"
	"github.com/AI-Template-SDK/brand-tracker/internal/tracking"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultPlatforms is used when the input names none.
var DefaultPlatforms = []string{"chatgpt", "claude", "perplexity", "gemini"}

// RunFatalError means the run produced no usable responses: every platform
// task failed.
type RunFatalError struct {
	RunID string
}

func (e *RunFatalError) Error() string {
	return fmt.Sprintf("run %s failed: no platform responses collected", e.RunID)
}

// Report is what a finished run hands back to its caller. The full output
// went to the sink.
type Report struct {
	RunID              string `json:"run_id"`
	Status             string `json:"status"`
	PromptsProcessed   int    `json:"prompts_processed"`
	ResponsesCollected int    `json:"responses_collected"`
	Errors             int    `json:"errors"`
	Warnings           int    `json:"warnings"`
}

// Runner executes tracking runs end to end: input normalization, prompt
// supply, query orchestration, response analysis, metrics aggregation, and
// finalization. Component constructors are injectable for tests.
type Runner struct {
	cfg  *config.Config
	sink sink.RecordSink
	log  *logrus.Logger

	newProviders func(platforms []string) (map[string]providers.Provider, error)
	newGenerator func() prompts.Generator
	newExtractor func() analyzer.Extractor
}

// New creates a runner with the real platform adapters and LLM services.
func New(cfg *config.Config, recordSink sink.RecordSink, log *logrus.Logger) *Runner {
	return &Runner{
		cfg:  cfg,
		sink: recordSink,
		log:  log,
		newProviders: func(platforms []string) (map[string]providers.Provider, error) {
			return providers.ForPlatforms(platforms, cfg, log)
		},
		newGenerator: func() prompts.Generator {
			return prompts.NewLLMGenerator(cfg, log)
		},
		newExtractor: func() analyzer.Extractor {
			return analyzer.NewLLMExtractor(cfg, log)
		},
	}
}

// Run executes one tracking run. It always emits run_summary and
// error_summary; brand_summary and leaderboard records are only emitted for
// non-fatal runs. A *RunFatalError is returned when no task succeeded.
func (r *Runner) Run(ctx context.Context, input *models.TrackerInput) (*Report, error) {
	runID := uuid.New().String()
	startedAt := time.Now().UTC()
	collector := tracking.NewCollector(r.log)

	r.log.Infof("[Runner] run %s started: brand=%s category=%s", runID, input.TrackedBrand, input.Category)

	// Stage 1: input normalization.
	input = r.normalizeInput(input, collector)

	adapters, err := r.newProviders(input.Platforms)
	if err != nil {
		return nil, fmt.Errorf("failed to build platform adapters: %w", err)
	}

	// Stage 2: prompt supply.
	supplier := prompts.NewSupplier(r.newGenerator(), collector, r.cfg.Tracker.MaxPrompts, r.log)
	promptList := supplier.Supply(ctx, input)

	// Stage 3: query orchestration.
	orch := orchestrator.New(adapters, collector, r.cfg.Tracker, r.log)
	tasks := orch.Run(ctx, promptList)
	succeeded := orchestrator.Succeeded(tasks)

	fatal := len(succeeded) == 0
	if fatal {
		collector.MarkRunFatal()
	}

	// Stage 4: response analysis, pushing prompt_result records as they are
	// produced.
	var results []*models.PromptResult
	anlz := analyzer.NewAnalyzer(r.newExtractor(), collector, r.log)
	for _, task := range succeeded {
		result := anlz.Analyze(ctx, task, input)
		results = append(results, result)
		r.push(ctx, collector, output.NewPromptResultRecord(runID, result))
	}

	// Stage 5: metrics aggregation.
	var agg *metrics.Aggregate
	if !fatal {
		agg, err = metrics.NewCalculator(r.log).Aggregate(results, input)
		if err != nil {
			collector.AddErrorKind("AggregationError", "metrics", err.Error())
			agg = nil
		}
	}

	// Stage 6: finalize.
	if agg != nil {
		totalBrands := len(agg.Brands)
		for _, bm := range agg.Brands {
			r.push(ctx, collector, output.NewBrandSummaryRecord(runID, bm, totalBrands))
		}
		r.push(ctx, collector, output.NewLeaderboardRecord(runID, agg))
	}

	completedAt := time.Now().UTC()
	r.push(ctx, collector, output.NewRunSummaryRecord(
		runID, input, startedAt, completedAt,
		len(promptList), collector.SuccessCount(),
		collector.HasFatalErrors(), r.cfg.Tracker.PricePerEvent))
	r.push(ctx, collector, output.NewErrorSummaryRecord(runID, collector.TakeSnapshot(), collector.HasFatalErrors()))

	collector.LogSummary()

	report := &Report{
		RunID:              runID,
		Status:             "completed",
		PromptsProcessed:   len(promptList),
		ResponsesCollected: collector.SuccessCount(),
		Errors:             collector.ErrorCount(),
		Warnings:           collector.WarningCount(),
	}
	if fatal {
		report.Status = "failed"
		return report, &RunFatalError{RunID: runID}
	}
	return report, nil
}

// normalizeInput applies the hard caps and defaults. Schema validation is the
// caller's concern.
func (r *Runner) normalizeInput(in *models.TrackerInput, collector *tracking.Collector) *models.TrackerInput {
	out := *in
	out.TrackedBrand = strings.TrimSpace(out.TrackedBrand)

	var competitors []string
	for _, c := range out.Competitors {
		if c = strings.TrimSpace(c); c != "" {
			competitors = append(competitors, c)
		}
	}
	if max := r.cfg.Tracker.MaxCompetitors; len(competitors) > max {
		collector.AddWarning("input",
			fmt.Sprintf("competitor list trimmed from %d to %d", len(competitors), max))
		competitors = competitors[:max]
	}
	out.Competitors = competitors

	if len(out.Platforms) == 0 {
		out.Platforms = DefaultPlatforms
	}
	return &out
}

// push delivers a record to the sink; delivery failures are recorded but
// never abort the run.
func (r *Runner) push(ctx context.Context, collector *tracking.Collector, record output.Record) {
	if err := r.sink.Push(ctx, record); err != nil {
		collector.AddError("sink", fmt.Sprintf("failed to push %s record: %v", record.RecordType(), err))
	}
}
