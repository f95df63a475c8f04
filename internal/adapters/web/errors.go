package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fahmi-blip/data-barang-sub000/internal/app"
	"github.com/fahmi-blip/data-barang-sub000/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps a service-layer error onto its HTTP status:
// validation 400, not found 404, reconciliation 409, assistant disabled
// 503, everything else (including StorageError) 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr     *core.ValidationError
		notFoundErr       *core.NotFoundError
		reconciliationErr *core.ReconciliationError
	)
	switch {
	case errors.As(err, &validationErr):
		writeError(w, r, validationErr.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
	case errors.As(err, &notFoundErr):
		writeError(w, r, notFoundErr.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &reconciliationErr):
		writeError(w, r, reconciliationErr.Error(), "RECONCILIATION_ERROR", http.StatusConflict)
	case errors.Is(err, app.ErrAssistantDisabled):
		writeError(w, r, err.Error(), "ASSISTANT_DISABLED", http.StatusServiceUnavailable)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeCreated writes a JSON response with status 201.
func writeCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(v)
}
