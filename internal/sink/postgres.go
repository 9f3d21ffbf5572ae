// internal/sink/postgres.go
package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AI-Template-SDK/brand-tracker/internal/output"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const trackerRecordsSchema = `
CREATE TABLE IF NOT EXISTS tracker_records (
	id          BIGSERIAL PRIMARY KEY,
	record_type TEXT        NOT NULL,
	payload     JSONB       NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS tracker_records_type_idx ON tracker_records (record_type);
`

// PostgresSink persists records into a single tracker_records table with a
// jsonb payload column.
type PostgresSink struct {
	db *sqlx.DB
}

// NewPostgresSink connects to Postgres and ensures the records table exists.
func NewPostgresSink(ctx context.Context, databaseURL string) (*PostgresSink, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, trackerRecordsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure tracker_records table: %w", err)
	}

	return &PostgresSink{db: db}, nil
}

func (s *PostgresSink) Push(ctx context.Context, record output.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", record.RecordType(), err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tracker_records (record_type, payload) VALUES ($1, $2)`,
		record.RecordType(), payload)
	if err != nil {
		return fmt.Errorf("failed to insert %s record: %w", record.RecordType(), err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
