// internal/sink/sink_test.go
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/AI-Template-SDK/brand-tracker/internal/models"
	"github.com/AI-Template-SDK/brand-tracker/internal/output"
)

func TestJSONLSinkWritesOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONLSink(&buf)

	records := []output.Record{
		output.NewPromptResultRecord("run-1", &models.PromptResult{PromptID: "prompt_000", Platform: "chatgpt"}),
		output.NewPromptResultRecord("run-1", &models.PromptResult{PromptID: "prompt_001", Platform: "claude"}),
	}
	for _, r := range records {
		if err := s.Push(context.Background(), r); err != nil {
			t.Fatalf("Push returned error: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("wrote %d lines, want 2", len(lines))
	}
	for i, line := range lines {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
		if m["type"] != "prompt_result" {
			t.Errorf("line %d type = %v", i, m["type"])
		}
	}
}

func TestJSONLSinkConcurrentPush(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONLSink(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record := output.NewPromptResultRecord("run-1", &models.PromptResult{PromptID: "prompt_000", Platform: "chatgpt"})
			if err := s.Push(context.Background(), record); err != nil {
				t.Errorf("Push returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 10 {
		t.Fatalf("wrote %d lines, want 10", len(lines))
	}
	for i, line := range lines {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Errorf("line %d corrupted by concurrent writes: %v", i, err)
		}
	}
}
