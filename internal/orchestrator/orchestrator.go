// internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/AI-Template-SDK/brand-tracker/internal/config"
	"github.com/AI-Template-SDK/brand-tracker/internal/models"
	"github.com/AI-Template-SDK/brand-tracker/internal/providers"
	"github.com/AI-Template-SDK/brand-tracker/internal/tracking"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// FailReasonTimeout marks tasks cut off by the global run timeout.
const FailReasonTimeout = "timeout"

// Orchestrator fans every prompt out to every platform as one PlatformTask
// each. Platforms progress independently behind their own concurrency ceiling
// and rate limiter, so one slow or failing platform never stalls the others.
type Orchestrator struct {
	providers map[string]providers.Provider
	collector *tracking.Collector
	cfg       config.TrackerConfig
	log       *logrus.Logger
}

// New creates an orchestrator over the given platform adapters.
func New(adapters map[string]providers.Provider, collector *tracking.Collector, cfg config.TrackerConfig, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		providers: adapters,
		collector: collector,
		cfg:       cfg,
		log:       log,
	}
}

// Run executes all (prompt, platform) tasks and returns every task in a
// terminal state. Task failures are recorded on the collector and never abort
// sibling tasks; the global run timeout forces any unfinished task to failed
// with reason "timeout".
func (o *Orchestrator) Run(ctx context.Context, promptList []models.Prompt) []*models.PlatformTask {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.RunTimeout)
	defer cancel()

	var all []*models.PlatformTask
	byPlatform := make(map[string][]*models.PlatformTask, len(o.providers))
	for platform := range o.providers {
		for _, p := range promptList {
			task := &models.PlatformTask{
				PromptID:   p.ID,
				PromptText: p.Text,
				Platform:   platform,
				State:      models.TaskPending,
			}
			byPlatform[platform] = append(byPlatform[platform], task)
			all = append(all, task)
		}
	}

	o.log.Infof("[Orchestrator] dispatching %d tasks across %d platforms", len(all), len(o.providers))

	var wg sync.WaitGroup
	for platform, tasks := range byPlatform {
		wg.Add(1)
		go func(platform string, tasks []*models.PlatformTask) {
			defer wg.Done()
			o.runPlatform(ctx, o.providers[platform], tasks)
		}(platform, tasks)
	}
	wg.Wait()

	return all
}

// runPlatform drives one platform's tasks behind its semaphore and limiter.
func (o *Orchestrator) runPlatform(ctx context.Context, provider providers.Provider, tasks []*models.PlatformTask) {
	sem := semaphore.NewWeighted(int64(o.cfg.PlatformConcurrency))
	limiter := rate.NewLimiter(rate.Limit(o.cfg.PlatformRateLimit), 1)

	var wg sync.WaitGroup
	for _, task := range tasks {
		if err := sem.Acquire(ctx, 1); err != nil {
			o.failTask(task, FailReasonTimeout)
			continue
		}
		wg.Add(1)
		go func(task *models.PlatformTask) {
			defer wg.Done()
			defer sem.Release(1)
			o.runTask(ctx, provider, limiter, task)
		}(task)
	}
	wg.Wait()
}

// runTask owns one task from pending to terminal.
func (o *Orchestrator) runTask(ctx context.Context, provider providers.Provider, limiter *rate.Limiter, task *models.PlatformTask) {
	task.State = models.TaskRunning
	task.StartedAt = time.Now().UTC()

	var lastErr error
	for attempt := 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		task.AttemptCount = attempt

		if err := limiter.Wait(ctx); err != nil {
			o.failTask(task, FailReasonTimeout)
			return
		}

		answer, err := provider.Answer(ctx, task.PromptText)
		if err == nil {
			task.RawAnswer = answer.Text
			task.ModelID = answer.Model
			task.Citations = answer.Citations
			task.State = models.TaskSucceeded
			task.CompletedAt = time.Now().UTC()
			o.collector.AddSuccess()
			return
		}
		lastErr = err

		if ctx.Err() != nil {
			o.failTask(task, FailReasonTimeout)
			return
		}
		if !providers.IsTransient(err) {
			break
		}
		if attempt == o.cfg.MaxAttempts {
			break
		}

		delay := o.backoff(attempt)
		o.log.Debugf("[Orchestrator] %s:%s attempt %d failed, retrying in %v: %v",
			task.Platform, task.PromptID, attempt, delay, err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			o.failTask(task, FailReasonTimeout)
			return
		}
	}

	o.failTask(task, fmt.Sprintf("%v", lastErr))
}

// backoff is base doubled per prior attempt plus random jitter of up to half
// the base.
func (o *Orchestrator) backoff(attempt int) time.Duration {
	base := o.cfg.RetryBackoffBase
	delay := base * time.Duration(1<<(attempt-1))
	if base > 1 {
		delay += time.Duration(rand.Int63n(int64(base) / 2))
	}
	return delay
}

func (o *Orchestrator) failTask(task *models.PlatformTask, reason string) {
	task.State = models.TaskFailed
	task.FailReason = reason
	task.CompletedAt = time.Now().UTC()
	o.collector.AddErrorKind(
		"QueryError",
		fmt.Sprintf("%s:%s", task.Platform, task.PromptID),
		fmt.Sprintf("query failed after %d attempts: %s", task.AttemptCount, reason),
	)
}

// Succeeded filters tasks down to those that completed successfully.
func Succeeded(tasks []*models.PlatformTask) []*models.PlatformTask {
	var out []*models.PlatformTask
	for _, t := range tasks {
		if t.State == models.TaskSucceeded {
			out = append(out, t)
		}
	}
	return out
}
