package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS annotated_records (
	dataset_path TEXT        NOT NULL,
	row_index    INT         NOT NULL,
	session_id   UUID        NOT NULL,
	input        JSONB       NOT NULL,
	labels       JSONB       NOT NULL,
	label_count  INT         NOT NULL,
	saved_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (dataset_path, row_index)
);

CREATE INDEX IF NOT EXISTS idx_annotated_records_session
	ON annotated_records (session_id, saved_at);
`

// EnsureSchema creates the archive table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
