package web

import (
	"net/http"

	"github.com/fahmi-blip/data-barang-sub000/internal/ai"
)

// interpretNote handles POST /api/ai/interpret. The returned draft is never
// executed; the client must submit it through the regular write endpoints
// after the user confirms it. A clarification draft comes back as 422 so
// clients can distinguish "ask the user" from an actionable draft.
func (h *Handler) interpretNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note" validate:"required"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.InterpretStockNote(r.Context(), body.Note)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if result.Draft.Kind == ai.DraftClarification {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	writeJSON(w, result.Draft)
}
