// Package diagnostics keeps a record of every failure the screen observes.
package diagnostics

import (
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit is used when a caller asks for a non-positive limit.
const DefaultListLimit = 50

// Record describes one observed failure.
type Record struct {
	ID uuid.UUID

	// Kind is the classified error kind, e.g. "network_error".
	Kind string

	// Operation names what failed: "load", "select_location", "trigger".
	Operation string

	LocationKey string
	Message     string

	// Sequence is the load tag the failure belongs to, zero if none.
	Sequence uint64

	// StaleKept is set when a previous snapshot stayed on screen.
	StaleKept bool

	OccurredAt time.Time
}

// NewRecord stamps a record with a fresh ID and the current time.
func NewRecord(kind, operation, locationKey, message string) *Record {
	return &Record{
		ID:          uuid.New(),
		Kind:        kind,
		Operation:   operation,
		LocationKey: locationKey,
		Message:     message,
		OccurredAt:  time.Now().UTC(),
	}
}
