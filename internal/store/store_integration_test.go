//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/annotator/internal/dataset"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_ArchiveUpsert(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	sessionID := uuid.New()
	datasetPath := "integration-test-" + uuid.New().String()[:8] + ".jsonl"

	t.Cleanup(func() {
		_, _ = s.pool.Exec(context.Background(), `DELETE FROM annotated_records WHERE dataset_path = $1`, datasetPath)
	})

	first := dataset.Record{
		Input:  []byte(`"A"`),
		Output: []dataset.Label{{Aspect: "food", Polarity: "positive", Emotion: "tasty"}},
	}
	if err := s.ArchiveRecord(ctx, sessionID, datasetPath, 0, first); err != nil {
		t.Fatalf("ArchiveRecord failed: %v", err)
	}

	// Re-saving the same row replaces it.
	second := dataset.Record{
		Input:  []byte(`"A"`),
		Output: []dataset.Label{{Aspect: "staff", Polarity: "negative", Emotion: "rude"}, {Aspect: "price"}},
	}
	if err := s.ArchiveRecord(ctx, sessionID, datasetPath, 0, second); err != nil {
		t.Fatalf("ArchiveRecord (second) failed: %v", err)
	}
	if err := s.ArchiveRecord(ctx, sessionID, datasetPath, 1, dataset.Record{Input: []byte(`"B"`)}); err != nil {
		t.Fatalf("ArchiveRecord (row 1) failed: %v", err)
	}

	records, err := s.ListRecords(ctx, datasetPath)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 archived rows, got %d", len(records))
	}
	if len(records[0].Labels) != 2 || records[0].Labels[0].Aspect != "staff" {
		t.Errorf("expected row 0 to hold the second save, got %+v", records[0].Labels)
	}
	if records[0].SessionID != sessionID {
		t.Errorf("expected session %s, got %s", sessionID, records[0].SessionID)
	}
	if len(records[1].Labels) != 0 {
		t.Errorf("expected empty labels for row 1, got %+v", records[1].Labels)
	}
}
