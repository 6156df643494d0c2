package diagnostics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the diagnostics table.
const Schema = `
	CREATE TABLE IF NOT EXISTS screen_diagnostics (
		id           UUID PRIMARY KEY,
		kind         TEXT NOT NULL,
		operation    TEXT NOT NULL,
		location_key TEXT NOT NULL DEFAULT '',
		message      TEXT NOT NULL DEFAULT '',
		sequence     BIGINT NOT NULL DEFAULT 0,
		stale_kept   BOOLEAN NOT NULL DEFAULT FALSE,
		occurred_at  TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS screen_diagnostics_occurred_at_idx
		ON screen_diagnostics (occurred_at DESC);
`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL diagnostics repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the table and index if they are missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating diagnostics schema: %w", err)
	}
	return nil
}

// Save inserts a record.
func (r *PostgresRepository) Save(ctx context.Context, record *Record) error {
	query := `
		INSERT INTO screen_diagnostics (id, kind, operation, location_key, message, sequence, stale_kept, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.Kind,
		record.Operation,
		record.LocationKey,
		record.Message,
		int64(record.Sequence), //nolint:gosec // sequence numbers stay far below MaxInt64
		record.StaleKept,
		record.OccurredAt,
	)
	return err
}

// List returns the most recent records, newest first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, kind, operation, location_key, message, sequence, stale_kept, occurred_at
		FROM screen_diagnostics
		ORDER BY occurred_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, scanRecord)
}

func scanRecord(row pgx.CollectableRow) (*Record, error) {
	var (
		record   Record
		sequence int64
	)

	err := row.Scan(
		&record.ID,
		&record.Kind,
		&record.Operation,
		&record.LocationKey,
		&record.Message,
		&sequence,
		&record.StaleKept,
		&record.OccurredAt,
	)
	if err != nil {
		return nil, err
	}

	record.Sequence = uint64(sequence) //nolint:gosec // stored from a uint64
	return &record, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
