package models

// DiagnosticRecord is one observed failure.
type DiagnosticRecord struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Operation   string    `json:"operation"`
	LocationKey string    `json:"locationKey,omitempty"`
	Message     string    `json:"message"`
	Sequence    uint64    `json:"sequence,omitempty"`
	StaleKept   bool      `json:"staleKept"`
	OccurredAt  Timestamp `json:"occurredAt"`
}

// DiagnosticList is the body of GET /v1/diagnostics.
type DiagnosticList struct {
	Items []DiagnosticRecord `json:"items"`
	Limit int                `json:"limit"`
}
