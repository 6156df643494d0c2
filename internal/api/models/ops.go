package models

// Health is the body of the liveness and readiness checks.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus is the body of GET /v1/ops/status.
type SystemStatus struct {
	Status     HealthStatus      `json:"status"`
	Time       Timestamp         `json:"time"`
	Subsystems []SubsystemStatus `json:"subsystems"`
	Providers  []ProviderStatus  `json:"providers"`
	Screen     ScreenStatus      `json:"screen"`
}

// SubsystemStatus is the status of an internal subsystem.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus is the health of an external provider.
type ProviderStatus struct {
	Provider            string       `json:"provider"`
	Status              HealthStatus `json:"status"`
	CircuitState        string       `json:"circuitState"`
	ConsecutiveFailures uint32       `json:"consecutiveFailures"`
	LastSuccessAt       *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *Timestamp   `json:"lastFailureAt,omitempty"`
	Message             *string      `json:"message,omitempty"`
}

// ScreenStatus summarizes the state machine.
type ScreenStatus struct {
	Phase     string `json:"phase"`
	Revision  uint64 `json:"revision"`
	Issued    uint64 `json:"loadsIssued"`
	Applied   uint64 `json:"loadsApplied"`
	Discarded uint64 `json:"loadsDiscarded"`
	Failed    uint64 `json:"loadsFailed"`
}
