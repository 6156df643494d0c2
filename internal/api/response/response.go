// Package response writes JSON and problem responses.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nimbusview/nimbus/internal/api/middleware"
	"github.com/nimbusview/nimbus/internal/api/models"
)

// MaxBodyBytes caps request bodies read by Decode.
const MaxBodyBytes = 1 << 16

// JSON writes data with the given status code and echoes the request ID.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set(middleware.RequestIDHeader, requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Accepted writes a 202 with data. Screen actions answer with this: the
// action is applied, but a load it issued may still be running.
func Accepted(w http.ResponseWriter, r *http.Request, data interface{}) {
	JSON(w, r, http.StatusAccepted, data)
}

// Decode reads a JSON body into dst. Unknown fields and trailing data are
// rejected.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// Error writes a problem for r.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	Error(w, r, models.NewBadRequest(middleware.GetRequestID(r.Context()), detail, errors))
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewNotFound(middleware.GetRequestID(r.Context()), detail))
}

// UnknownLocation writes a 422 for a key outside the selection list.
func UnknownLocation(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewUnknownLocation(middleware.GetRequestID(r.Context()), detail))
}

// InternalError writes a 500.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewInternalError(middleware.GetRequestID(r.Context()), detail))
}

// BadGateway writes a 502.
func BadGateway(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewBadGateway(middleware.GetRequestID(r.Context()), detail))
}

// ServiceUnavailable writes a 503.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewServiceUnavailable(middleware.GetRequestID(r.Context()), detail))
}
