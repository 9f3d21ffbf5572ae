// internal/tracking/collector.go
package tracking

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Entry is one recorded error or warning. Kind carries the error taxonomy
// label (QueryError, ExtractionError, AggregationError) for the summary
// record.
type Entry struct {
	Kind    string    `json:"kind"`
	Context string    `json:"context"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Collector accumulates errors, warnings and successes for one run. It is
// append-only and safe for concurrent use; entries are never removed or
// reordered.
type Collector struct {
	mu        sync.Mutex
	errors    []Entry
	warnings  []Entry
	successes int
	fatal     bool
	log       *logrus.Logger
}

// NewCollector creates an empty run collector.
func NewCollector(log *logrus.Logger) *Collector {
	return &Collector{log: log}
}

// AddError records a recoverable error under the given context label
// (typically "platform:promptId" or a stage name).
func (c *Collector) AddError(context, message string) {
	c.AddErrorKind("Error", context, message)
}

// AddErrorKind records a recoverable error with an explicit taxonomy label.
func (c *Collector) AddErrorKind(kind, context, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, Entry{Kind: kind, Context: context, Message: message, At: time.Now().UTC()})
	c.log.Warnf("[Tracker] %s in %s: %s", kind, context, message)
}

// AddWarning records a non-fatal degradation.
func (c *Collector) AddWarning(context, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, Entry{Context: context, Message: message, At: time.Now().UTC()})
	c.log.Infof("[Tracker] warning in %s: %s", context, message)
}

// AddSuccess counts one successfully collected response.
func (c *Collector) AddSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.successes++
}

// MarkRunFatal flags the run as failed. Set by the runner when no platform
// task succeeds.
func (c *Collector) MarkRunFatal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fatal = true
}

// HasFatalErrors reports whether the run was marked fatal.
func (c *Collector) HasFatalErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fatal
}

// ErrorCount returns the number of recorded errors.
func (c *Collector) ErrorCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors)
}

// WarningCount returns the number of recorded warnings.
func (c *Collector) WarningCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.warnings)
}

// SuccessCount returns the number of collected responses.
func (c *Collector) SuccessCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.successes
}

// Snapshot is the truncated view used for the error summary record: the last
// 10 errors and last 5 warnings, oldest first.
type Snapshot struct {
	TotalErrors   int     `json:"totalErrors"`
	TotalWarnings int     `json:"totalWarnings"`
	Errors        []Entry `json:"errors"`
	Warnings      []Entry `json:"warnings"`
}

const (
	snapshotErrorLimit   = 10
	snapshotWarningLimit = 5
)

// TakeSnapshot returns the current truncated view of the collector.
func (c *Collector) TakeSnapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		TotalErrors:   len(c.errors),
		TotalWarnings: len(c.warnings),
		Errors:        tail(c.errors, snapshotErrorLimit),
		Warnings:      tail(c.warnings, snapshotWarningLimit),
	}
}

// LogSummary emits the run-end summary block.
func (c *Collector) LogSummary() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Infof("[Tracker] run summary: %d responses collected, %d errors, %d warnings",
		c.successes, len(c.errors), len(c.warnings))
	if c.fatal {
		c.log.Error("[Tracker] run failed: no platform responses collected")
	}
}

func tail(entries []Entry, limit int) []Entry {
	if len(entries) <= limit {
		out := make([]Entry, len(entries))
		copy(out, entries)
		return out
	}
	out := make([]Entry, limit)
	copy(out, entries[len(entries)-limit:])
	return out
}
