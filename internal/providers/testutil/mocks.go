// internal/providers/testutil/mocks.go
package testutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/AI-Template-SDK/brand-tracker/internal/config"
	"github.com/AI-Template-SDK/brand-tracker/internal/providers"
	"github.com/sirupsen/logrus"
)

// SampleConfig returns a config with test credentials for provider tests.
func SampleConfig() *config.Config {
	cfg := config.Load()
	cfg.OpenAIAPIKey = "test-openai-key"
	cfg.AnthropicAPIKey = "test-anthropic-key"
	cfg.PerplexityAPIKey = "test-perplexity-key"
	cfg.BrightData.APIKey = "test-brightdata-key"
	cfg.BrightData.DatasetID = "gd_test_dataset"
	return cfg
}

// TestLogger returns a quiet logger for tests.
func TestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// MockProvider is a scriptable Provider for orchestrator and runner tests.
// Responses are keyed by prompt text; Errs is consulted per call so tests can
// script fail-then-succeed sequences.
type MockProvider struct {
	mu        sync.Mutex
	name      string
	model     string
	Responses map[string]string
	Errs      []error
	Calls     int
}

// NewMockProvider creates a mock platform with the given name.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		name:      name,
		model:     name + "-test-model",
		Responses: make(map[string]string),
	}
}

func (m *MockProvider) Name() string  { return m.name }
func (m *MockProvider) Model() string { return m.model }

// ScriptError queues errors to return, one per subsequent call, before any
// successful response.
func (m *MockProvider) ScriptError(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errs = append(m.Errs, errs...)
}

func (m *MockProvider) Answer(ctx context.Context, prompt string) (*providers.Answer, error) {
	if err := ctx.Err(); err != nil {
		return nil, providers.NewTransientError(m.name, err)
	}

	m.mu.Lock()
	m.Calls++
	if len(m.Errs) > 0 {
		err := m.Errs[0]
		m.Errs = m.Errs[1:]
		m.mu.Unlock()
		if err != nil {
			return nil, err
		}
	} else {
		m.mu.Unlock()
	}

	m.mu.Lock()
	text, ok := m.Responses[prompt]
	m.mu.Unlock()
	if !ok {
		text = fmt.Sprintf("mock answer from %s for: %s", m.name, prompt)
	}

	return &providers.Answer{Text: text, Model: m.model}, nil
}

// CallCount returns how many times Answer was invoked.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockBrightDataServer simulates the dataset trigger/progress/snapshot API
// for interactive-adapter tests.
type MockBrightDataServer struct {
	Server       *httptest.Server
	SnapshotID   string
	ProgressSeq  []string
	ResultsBody  string
	progressIdx  int
	mu           sync.Mutex
	TriggerCalls int
}

// NewMockBrightDataServer starts a mock server. ProgressSeq is the sequence
// of statuses returned by successive progress checks; ResultsBody is the
// snapshot payload served once progress reaches ready.
func NewMockBrightDataServer(snapshotID string, progressSeq []string, resultsBody string) *MockBrightDataServer {
	m := &MockBrightDataServer{
		SnapshotID:  snapshotID,
		ProgressSeq: progressSeq,
		ResultsBody: resultsBody,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/trigger", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.TriggerCalls++
		m.mu.Unlock()
		fmt.Fprintf(w, `{"snapshot_id":%q}`, m.SnapshotID)
	})
	mux.HandleFunc("/progress/", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		status := "ready"
		if m.progressIdx < len(m.ProgressSeq) {
			status = m.ProgressSeq[m.progressIdx]
			m.progressIdx++
		}
		m.mu.Unlock()
		fmt.Fprintf(w, `{"status":%q,"snapshot_id":%q}`, status, m.SnapshotID)
	})
	mux.HandleFunc("/snapshot/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, m.ResultsBody)
	})

	m.Server = httptest.NewServer(mux)
	return m
}

// URL returns the mock server's base URL.
func (m *MockBrightDataServer) URL() string {
	return m.Server.URL
}

// Close shuts the mock server down.
func (m *MockBrightDataServer) Close() {
	m.Server.Close()
}
