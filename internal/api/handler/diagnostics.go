package handler

import (
	"net/http"
	"strconv"

	"github.com/nimbusview/nimbus/internal/api/models"
	"github.com/nimbusview/nimbus/internal/api/response"
	"github.com/nimbusview/nimbus/internal/diagnostics"
)

// MaxDiagnosticsLimit caps the limit query parameter.
const MaxDiagnosticsLimit = 500

// DiagnosticsHandler lists recorded failures.
type DiagnosticsHandler struct {
	repo diagnostics.Repository
}

// NewDiagnosticsHandler creates a new DiagnosticsHandler.
func NewDiagnosticsHandler(repo diagnostics.Repository) *DiagnosticsHandler {
	return &DiagnosticsHandler{repo: repo}
}

// ListRecords handles GET /v1/diagnostics - newest first.
func (h *DiagnosticsHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	limit := diagnostics.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxDiagnosticsLimit {
			response.BadRequest(w, r, "validation failed", []models.FieldError{
				{Field: "limit", Message: "must be an integer between 1 and " + strconv.Itoa(MaxDiagnosticsLimit), Code: "OUT_OF_RANGE"},
			})
			return
		}
		limit = n
	}

	records, err := h.repo.List(r.Context(), limit)
	if err != nil {
		response.InternalError(w, r, "failed to list diagnostics")
		return
	}

	list := models.DiagnosticList{
		Items: make([]models.DiagnosticRecord, 0, len(records)),
		Limit: limit,
	}
	for _, rec := range records {
		list.Items = append(list.Items, models.DiagnosticRecord{
			ID:          rec.ID.String(),
			Kind:        rec.Kind,
			Operation:   rec.Operation,
			LocationKey: rec.LocationKey,
			Message:     rec.Message,
			Sequence:    rec.Sequence,
			StaleKept:   rec.StaleKept,
			OccurredAt:  models.Timestamp(rec.OccurredAt),
		})
	}

	response.JSON(w, r, http.StatusOK, list)
}
