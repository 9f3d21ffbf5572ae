// internal/providers/gemini_test.go
package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// brightDataFixture serves the trigger/progress/snapshot endpoints so the
// interactive adapter can be exercised end to end.
type brightDataFixture struct {
	server      *httptest.Server
	mu          sync.Mutex
	progressSeq []string
	progressIdx int
	resultsBody string
}

func newBrightDataFixture(progressSeq []string, resultsBody string) *brightDataFixture {
	f := &brightDataFixture{progressSeq: progressSeq, resultsBody: resultsBody}

	mux := http.NewServeMux()
	mux.HandleFunc("/trigger", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"snapshot_id":"snap_123"}`)
	})
	mux.HandleFunc("/progress/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status := "ready"
		if f.progressIdx < len(f.progressSeq) {
			status = f.progressSeq[f.progressIdx]
			f.progressIdx++
		}
		f.mu.Unlock()
		fmt.Fprintf(w, `{"status":%q,"snapshot_id":"snap_123"}`, status)
	})
	mux.HandleFunc("/snapshot/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, f.resultsBody)
	})

	f.server = httptest.NewServer(mux)
	return f
}

func newTestGeminiProvider(baseURL string) *geminiProvider {
	log := quietLogger()
	return &geminiProvider{
		client:       NewBrightDataClient("test-key", baseURL, log),
		datasetID:    "gd_test",
		model:        "gemini",
		pollInterval: 10 * time.Millisecond,
		log:          log,
	}
}

func TestGeminiAnswer(t *testing.T) {
	results := `[{"prompt":"best crm?","answer_text":"Acme is popular.","answer_html":"<p>Acme is <a href=\"https://acme.com/reviews\">popular</a> per <a href=\"https://g2.com/acme\">G2</a>.</p>","model_version":"gemini-2.5"}]`
	fixture := newBrightDataFixture([]string{"running", "ready"}, results)
	defer fixture.server.Close()

	p := newTestGeminiProvider(fixture.server.URL)

	answer, err := p.Answer(context.Background(), "best crm?")
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	if answer.Text != "Acme is popular." {
		t.Errorf("unexpected answer text: %q", answer.Text)
	}
	if answer.Model != "gemini-2.5" {
		t.Errorf("expected model from result, got %q", answer.Model)
	}
	if len(answer.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d: %v", len(answer.Citations), answer.Citations)
	}
	if answer.Citations[0] != "https://acme.com/reviews" {
		t.Errorf("citation order not preserved: %v", answer.Citations)
	}
}

func TestGeminiAnswerSessionError(t *testing.T) {
	results := `[{"prompt":"q","answer_text":"","answer_html":"","error":"captcha wall"}]`
	fixture := newBrightDataFixture([]string{"ready"}, results)
	defer fixture.server.Close()

	p := newTestGeminiProvider(fixture.server.URL)

	_, err := p.Answer(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error for failed session")
	}
	if !IsTransient(err) {
		t.Errorf("session errors should be transient, got %v", err)
	}
}

func TestGeminiAnswerContextCancel(t *testing.T) {
	// Progress never reaches ready, so the poll loop must exit via ctx.
	fixture := newBrightDataFixture([]string{"running", "running", "running", "running", "running", "running", "running", "running"}, "[]")
	defer fixture.server.Close()

	p := newTestGeminiProvider(fixture.server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Answer(ctx, "q")
	if err == nil {
		t.Fatal("expected error when context expires during polling")
	}
}

func TestExtractHrefs(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected []string
	}{
		{
			name:     "dedup preserves order",
			html:     `<a href="https://a.com">a</a><a href="https://b.com">b</a><a href="https://a.com">a again</a>`,
			expected: []string{"https://a.com", "https://b.com"},
		},
		{
			name:     "no anchors",
			html:     "<p>plain text</p>",
			expected: nil,
		},
		{
			name:     "ignores non-http schemes",
			html:     `<a href="mailto:x@y.com">m</a><a href="https://c.com">c</a>`,
			expected: []string{"https://c.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractHrefs(tt.html)
			if len(got) != len(tt.expected) {
				t.Fatalf("extractHrefs() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("extractHrefs()[%d] = %q, want %q", i, got[i], tt.expected[i])
				}
			}
		})
	}
}
