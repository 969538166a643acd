// Package respond holds the JSON and CORS plumbing shared by the HTTP
// handlers.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"dealdesk/pkg/core/debt"
	"dealdesk/pkg/core/deal"
	"dealdesk/pkg/core/extract"
	"dealdesk/pkg/core/llm"
	"dealdesk/pkg/core/logging"
	"dealdesk/pkg/core/projection"
	"dealdesk/pkg/core/research"
	"dealdesk/pkg/core/sensitivity"
	"dealdesk/pkg/core/store"
	"dealdesk/pkg/core/tax"
	"dealdesk/pkg/core/waterfall"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 4 << 20

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields []deal.FieldError `json:"fields,omitempty"`
}

// Preflight sets CORS headers for local dev, answers OPTIONS, and rejects
// any method not listed. It reports whether the handler should continue.
func Preflight(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", strings.Join(methods, ", ")+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if !slices.Contains(methods, r.Method) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// Decode reads a JSON body into v and rejects unknown fields.
func Decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Named("api").Warnw("failed to encode response", "error", err)
	}
}

// BadRequest writes a 400 with msg.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, ErrorBody{Error: msg})
}

// Error maps err to a status and writes the envelope.
func Error(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	body := ErrorBody{Error: err.Error()}

	var ve *deal.ValidationError
	if errors.As(err, &ve) {
		body.Fields = ve.Fields
	}
	if status >= http.StatusInternalServerError {
		logging.Named("api").Errorw("request failed", "status", status, "error", err)
	}
	JSON(w, status, body)
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, deal.ErrInvalidDeal),
		errors.Is(err, debt.ErrInvalidLoan),
		errors.Is(err, waterfall.ErrInvalidStructure),
		errors.Is(err, sensitivity.ErrInvalidAxis),
		errors.Is(err, projection.ErrInvalidInput),
		errors.Is(err, tax.ErrInvalidRecovery),
		errors.Is(err, extract.ErrEmptyDocument),
		errors.Is(err, research.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, research.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, llm.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, research.ErrEmptyAnswer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
