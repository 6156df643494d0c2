// Package handler provides HTTP handlers for the screen API.
package handler

import (
	"net/http"
	"time"

	"github.com/nimbusview/nimbus/internal/api/models"
	"github.com/nimbusview/nimbus/internal/api/response"
	"github.com/nimbusview/nimbus/internal/provider/resilience"
	"github.com/nimbusview/nimbus/internal/screen"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version    string
	buildTime  string
	screen     Screen
	registry   *resilience.Registry
	subsystems []string
}

// OpsConfig holds the dependencies of OpsHandler.
type OpsConfig struct {
	Version   string
	BuildTime string
	Screen    Screen

	// Registry reports provider circuit state (optional).
	Registry *resilience.Registry

	// Subsystems are listed as OK in the status report, e.g. the
	// diagnostics store in use.
	Subsystems []string
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{
		version:    cfg.Version,
		buildTime:  cfg.BuildTime,
		screen:     cfg.Screen,
		registry:   cfg.Registry,
		subsystems: cfg.Subsystems,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - ready while the screen machine
// is accepting actions.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if stopped(h.screen) {
		health.Status = models.HealthStatusFail
		health.Details = map[string]interface{}{"screen": "stopped"}
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{h.screenSubsystem()},
		Providers:  h.providers(),
		Screen:     h.screenStatus(),
	}

	for _, name := range h.subsystems {
		status.Subsystems = append(status.Subsystems, models.SubsystemStatus{Name: name, Status: models.HealthStatusOK})
	}

	for _, s := range status.Subsystems {
		status.Status = worst(status.Status, s.Status)
	}
	for _, p := range status.Providers {
		status.Status = worst(status.Status, p.Status)
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) screenSubsystem() models.SubsystemStatus {
	sub := models.SubsystemStatus{Name: "screen", Status: models.HealthStatusOK}

	switch {
	case stopped(h.screen):
		detail := "machine stopped"
		sub.Status = models.HealthStatusFail
		sub.Detail = &detail
	case h.screen.State().Lifecycle.Phase == screen.PhaseFailed:
		detail := string(h.screen.State().Lifecycle.Err)
		sub.Status = models.HealthStatusDegraded
		sub.Detail = &detail
	}

	return sub
}

func (h *OpsHandler) screenStatus() models.ScreenStatus {
	state := h.screen.State()
	stats := h.screen.Stats()
	return models.ScreenStatus{
		Phase:     string(state.Lifecycle.Phase),
		Revision:  state.Revision,
		Issued:    stats.Issued,
		Applied:   stats.Applied,
		Discarded: stats.Discarded,
		Failed:    stats.Failed,
	}
}

func (h *OpsHandler) providers() []models.ProviderStatus {
	if h.registry == nil {
		return []models.ProviderStatus{}
	}

	all := h.registry.GetAllHealth()
	providers := make([]models.ProviderStatus, 0, len(all))
	for _, ph := range all {
		ps := models.ProviderStatus{
			Provider:            ph.Name,
			Status:              providerStatus(ph),
			CircuitState:        ph.CircuitState.String(),
			ConsecutiveFailures: ph.Counts.ConsecutiveFailures,
		}
		if ph.LastSuccessAt != nil {
			ps.LastSuccessAt = models.TimestampPtr(*ph.LastSuccessAt)
		}
		if ph.LastFailureAt != nil {
			ps.LastFailureAt = models.TimestampPtr(*ph.LastFailureAt)
		}
		if ph.LastError != "" {
			msg := ph.LastError
			ps.Message = &msg
		}
		providers = append(providers, ps)
	}
	return providers
}

func providerStatus(ph *resilience.ProviderHealth) models.HealthStatus {
	switch ph.Status() {
	case resilience.StatusUnhealthy:
		return models.HealthStatusFail
	case resilience.StatusDegraded:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

// worst folds a component status into the overall one. A failed provider or
// subsystem only degrades the service as a whole: the screen keeps serving
// its last snapshot.
func worst(overall, component models.HealthStatus) models.HealthStatus {
	if component == models.HealthStatusOK {
		return overall
	}
	return models.HealthStatusDegraded
}

func stopped(s Screen) bool {
	select {
	case <-s.Done():
		return true
	default:
		return false
	}
}
