package web

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fahmi-blip/data-barang-sub000/internal/app"
)

// createProcurement handles POST /api/procurements.
func (h *Handler) createProcurement(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VendorID  int64  `json:"vendor_id" validate:"required,gt=0"`
		CreatorID int64  `json:"creator_id" validate:"required,gt=0"`
		Tax       string `json:"tax"`
		Lines     []struct {
			ItemID    int64  `json:"item_id" validate:"required,gt=0"`
			Quantity  string `json:"quantity" validate:"required"`
			UnitPrice string `json:"unit_price" validate:"required"`
		} `json:"lines" validate:"required,min=1,dive"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	tax := decimal.Zero
	if body.Tax != "" {
		var err error
		tax, err = decimal.NewFromString(body.Tax)
		if err != nil {
			writeError(w, r, fmt.Sprintf("invalid tax %q", body.Tax), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	req := app.CreateProcurementRequest{
		VendorID:  body.VendorID,
		CreatorID: body.CreatorID,
		Tax:       tax,
	}
	for i, l := range body.Lines {
		qty, err := decimal.NewFromString(l.Quantity)
		if err != nil {
			writeError(w, r, fmt.Sprintf("line %d: invalid quantity", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		price, err := decimal.NewFromString(l.UnitPrice)
		if err != nil {
			writeError(w, r, fmt.Sprintf("line %d: invalid unit price", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		req.Lines = append(req.Lines, app.ProcurementLineInput{
			ItemID:    l.ItemID,
			Quantity:  qty,
			UnitPrice: price,
		})
	}

	result, err := h.svc.CreateProcurement(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, result.Order)
}

// getProcurement handles GET /api/procurements/{id}.
func (h *Handler) getProcurement(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid procurement order id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetProcurement(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// listProcurements handles GET /api/procurements.
func (h *Handler) listProcurements(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProcurements(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Orders)
}

// getProcurementLines handles GET /api/procurements/{id}/lines.
func (h *Handler) getProcurementLines(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid procurement order id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetProcurement(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order.Lines)
}
