package web

import "net/http"

// stockLevels handles GET /api/stock/levels.
func (h *Handler) stockLevels(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStockLevels(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Levels)
}

// stockLedger handles GET /api/stock/ledger.
func (h *Handler) stockLedger(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetLedger(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Movements)
}

// itemLedger handles GET /api/stock/ledger/{id}.
func (h *Handler) itemLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid item id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetItemLedger(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Movements)
}
