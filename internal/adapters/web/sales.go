package web

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fahmi-blip/data-barang-sub000/internal/app"
)

// saleBody is the JSON body for POST /api/sales and /api/sales/preview.
// Lines carry no prices; every price is derived server-side from the
// margin policy.
type saleBody struct {
	CashierID      int64 `json:"cashier_id"`
	MarginPolicyID int64 `json:"margin_policy_id" validate:"required,gt=0"`
	Lines          []struct {
		ItemID   int64  `json:"item_id" validate:"required,gt=0"`
		Quantity string `json:"quantity" validate:"required"`
	} `json:"lines" validate:"required,min=1,dive"`
}

func (b *saleBody) toRequest(w http.ResponseWriter, r *http.Request) (app.CreateSaleRequest, bool) {
	req := app.CreateSaleRequest{
		CashierID:      b.CashierID,
		MarginPolicyID: b.MarginPolicyID,
	}
	for i, l := range b.Lines {
		qty, err := decimal.NewFromString(l.Quantity)
		if err != nil {
			writeError(w, r, fmt.Sprintf("line %d: invalid quantity", i+1), "BAD_REQUEST", http.StatusBadRequest)
			return app.CreateSaleRequest{}, false
		}
		req.Lines = append(req.Lines, app.SaleLineInput{ItemID: l.ItemID, Quantity: qty})
	}
	return req, true
}

// createSale handles POST /api/sales.
func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var body saleBody
	if !decodeJSON(w, r, &body) {
		return
	}
	req, ok := body.toRequest(w, r)
	if !ok {
		return
	}
	result, err := h.svc.CreateSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, result.Sale)
}

// previewSale handles POST /api/sales/preview.
func (h *Handler) previewSale(w http.ResponseWriter, r *http.Request) {
	var body saleBody
	if !decodeJSON(w, r, &body) {
		return
	}
	req, ok := body.toRequest(w, r)
	if !ok {
		return
	}
	preview, err := h.svc.PreviewSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, preview)
}

// getSale handles GET /api/sales/{id}.
func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid sale id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetSale(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Sale)
}

// listSales handles GET /api/sales.
func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListSales(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Sales)
}

// getSaleLines handles GET /api/sales/{id}/lines.
func (h *Handler) getSaleLines(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid sale id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetSale(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Sale.Lines)
}
