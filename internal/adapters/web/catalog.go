package web

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fahmi-blip/data-barang-sub000/internal/app"
	"github.com/fahmi-blip/data-barang-sub000/internal/core"
)

// itemBody is the JSON body for POST /api/items and PUT /api/items/{id}.
// Prices travel as decimal strings, never floats.
type itemBody struct {
	Name          string `json:"name" validate:"required"`
	Kind          string `json:"kind" validate:"required,oneof=good service"`
	UnitID        int64  `json:"unit_id" validate:"required,gt=0"`
	PurchasePrice string `json:"purchase_price" validate:"required"`
}

func (b *itemBody) toRequest(w http.ResponseWriter, r *http.Request) (app.CreateItemRequest, bool) {
	price, err := decimal.NewFromString(b.PurchasePrice)
	if err != nil {
		writeError(w, r, "invalid purchase_price", "BAD_REQUEST", http.StatusBadRequest)
		return app.CreateItemRequest{}, false
	}
	return app.CreateItemRequest{
		Name:          b.Name,
		Kind:          core.ItemKind(b.Kind),
		UnitID:        b.UnitID,
		PurchasePrice: price,
	}, true
}

// createItem handles POST /api/items.
func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var body itemBody
	if !decodeJSON(w, r, &body) {
		return
	}
	req, ok := body.toRequest(w, r)
	if !ok {
		return
	}
	item, err := h.svc.CreateItem(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, item)
}

// updateItem handles PUT /api/items/{id}.
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid item id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var body itemBody
	if !decodeJSON(w, r, &body) {
		return
	}
	req, ok := body.toRequest(w, r)
	if !ok {
		return
	}
	item, err := h.svc.UpdateItem(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, item)
}

// getItem handles GET /api/items/{id}.
func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid item id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	item, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, item)
}

// listItems handles GET /api/items.
func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, items)
}

// createUnit handles POST /api/units.
func (h *Handler) createUnit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name" validate:"required"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	unit, err := h.svc.CreateUnit(r.Context(), body.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, unit)
}

// listUnits handles GET /api/units.
func (h *Handler) listUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.svc.ListUnits(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, units)
}

// createVendor handles POST /api/vendors.
func (h *Handler) createVendor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         string `json:"name" validate:"required"`
		IsRegistered bool   `json:"is_registered"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	vendor, err := h.svc.CreateVendor(r.Context(), app.CreateVendorRequest{
		Name:         body.Name,
		IsRegistered: body.IsRegistered,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, vendor)
}

// getVendor handles GET /api/vendors/{id}.
func (h *Handler) getVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid vendor id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	vendor, err := h.svc.GetVendor(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, vendor)
}

// listVendors handles GET /api/vendors.
func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.svc.ListVendors(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, vendors)
}

// createMarginPolicy handles POST /api/margin-policies.
func (h *Handler) createMarginPolicy(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Percentage string `json:"percentage" validate:"required"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	pct, err := decimal.NewFromString(body.Percentage)
	if err != nil {
		writeError(w, r, fmt.Sprintf("invalid percentage %q", body.Percentage), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	policy, err := h.svc.CreateMarginPolicy(r.Context(), pct)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, policy)
}

// getMarginPolicy handles GET /api/margin-policies/{id}.
func (h *Handler) getMarginPolicy(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid margin policy id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	policy, err := h.svc.GetMarginPolicy(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, policy)
}

// listMarginPolicies handles GET /api/margin-policies.
func (h *Handler) listMarginPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.svc.ListMarginPolicies(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, policies)
}
