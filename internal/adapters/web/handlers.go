package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/fahmi-blip/data-barang-sub000/internal/app"
)

// validate checks the struct tags on request DTOs before any service call.
var validate = validator.New()

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log *logrus.Logger) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	// ── Catalog ───────────────────────────────────────────────────────────
	r.Get("/api/items", h.listItems)
	r.Post("/api/items", h.createItem)
	r.Get("/api/items/{id}", h.getItem)
	r.Put("/api/items/{id}", h.updateItem)
	r.Get("/api/units", h.listUnits)
	r.Post("/api/units", h.createUnit)
	r.Get("/api/vendors", h.listVendors)
	r.Post("/api/vendors", h.createVendor)
	r.Get("/api/vendors/{id}", h.getVendor)

	// ── Pricing ───────────────────────────────────────────────────────────
	r.Get("/api/margin-policies", h.listMarginPolicies)
	r.Post("/api/margin-policies", h.createMarginPolicy)
	r.Get("/api/margin-policies/{id}", h.getMarginPolicy)

	// ── Procurement ───────────────────────────────────────────────────────
	r.Get("/api/procurements", h.listProcurements)
	r.Post("/api/procurements", h.createProcurement)
	r.Get("/api/procurements/{id}", h.getProcurement)
	r.Get("/api/procurements/{id}/lines", h.getProcurementLines)

	// ── Receiving ─────────────────────────────────────────────────────────
	r.Get("/api/receivings", h.listReceivings)
	r.Post("/api/receivings", h.createReceiving)
	r.Get("/api/receivings/{id}", h.getReceiving)
	r.Get("/api/receivings/{id}/lines", h.getReceivingLines)

	// ── Sales ─────────────────────────────────────────────────────────────
	r.Get("/api/sales", h.listSales)
	r.Post("/api/sales", h.createSale)
	r.Post("/api/sales/preview", h.previewSale)
	r.Get("/api/sales/{id}", h.getSale)
	r.Get("/api/sales/{id}/lines", h.getSaleLines)

	// ── Stock ─────────────────────────────────────────────────────────────
	r.Get("/api/stock/levels", h.stockLevels)
	r.Get("/api/stock/ledger", h.stockLedger)
	r.Get("/api/stock/ledger/{id}", h.itemLedger)

	// ── AI assistant ──────────────────────────────────────────────────────
	r.Post("/api/ai/interpret", h.interpretNote)

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// idParam extracts the {id} URL parameter as an int64.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// decodeJSON decodes the request body into v, runs validator tags, and
// writes an appropriate error response on failure. Returns HTTP 413 when
// the body exceeds the size limit set by RequestBodyLimit; HTTP 400 for
// all other decode or validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, r, "invalid request: "+err.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
		return false
	}
	return true
}
