package diagnostics

import "context"

// Repository stores diagnostic records.
type Repository interface {
	// Save appends a record.
	Save(ctx context.Context, record *Record) error

	// List returns the most recent records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)
}
