// internal/sink/sink.go
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/AI-Template-SDK/brand-tracker/internal/output"
)

// RecordSink receives output records as the run produces them. Prompt results
// are pushed as they are analyzed; summaries follow at finalize.
type RecordSink interface {
	Push(ctx context.Context, record output.Record) error
	Close() error
}

// JSONLSink writes one JSON object per line to an io.Writer.
type JSONLSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJSONLSink creates a line-delimited JSON sink.
func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{w: w}
}

func (s *JSONLSink) Push(ctx context.Context, record output.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", record.RecordType(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write %s record: %w", record.RecordType(), err)
	}
	return nil
}

func (s *JSONLSink) Close() error {
	if closer, ok := s.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
