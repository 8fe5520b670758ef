package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/annotator/internal/dataset"
)

// ArchivedRecord is one row of annotated_records.
type ArchivedRecord struct {
	DatasetPath string
	Row         int
	SessionID   uuid.UUID
	Input       json.RawMessage
	Labels      []dataset.Label
	SavedAt     time.Time
}

// ArchiveRecord mirrors a saved record. The latest save of a row wins, the
// same way the upsert write policy treats the output file.
func (s *Store) ArchiveRecord(ctx context.Context, sessionID uuid.UUID, datasetPath string, row int, rec dataset.Record) error {
	labels := rec.Output
	if labels == nil {
		labels = []dataset.Label{}
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("marshal labels: %w", err)
	}
	input := rec.Input
	if len(input) == 0 {
		input = json.RawMessage("null")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO annotated_records (dataset_path, row_index, session_id, input, labels, label_count, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (dataset_path, row_index) DO UPDATE
		SET session_id = EXCLUDED.session_id,
		    input = EXCLUDED.input,
		    labels = EXCLUDED.labels,
		    label_count = EXCLUDED.label_count,
		    saved_at = EXCLUDED.saved_at`,
		datasetPath, row, sessionID, string(input), string(labelsJSON), len(labels),
	)
	if err != nil {
		return fmt.Errorf("upsert annotated record: %w", err)
	}
	return nil
}

// ListRecords returns the archived rows of a dataset ordered by row.
func (s *Store) ListRecords(ctx context.Context, datasetPath string) ([]ArchivedRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT dataset_path, row_index, session_id, input, labels, saved_at
		FROM annotated_records
		WHERE dataset_path = $1
		ORDER BY row_index`,
		datasetPath,
	)
	if err != nil {
		return nil, fmt.Errorf("query annotated records: %w", err)
	}
	defer rows.Close()

	var out []ArchivedRecord
	for rows.Next() {
		var (
			r          ArchivedRecord
			input      []byte
			labelsJSON []byte
		)
		if err := rows.Scan(&r.DatasetPath, &r.Row, &r.SessionID, &input, &labelsJSON, &r.SavedAt); err != nil {
			return nil, fmt.Errorf("scan annotated record: %w", err)
		}
		r.Input = input
		if err := json.Unmarshal(labelsJSON, &r.Labels); err != nil {
			return nil, fmt.Errorf("decode labels for row %d: %w", r.Row, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
