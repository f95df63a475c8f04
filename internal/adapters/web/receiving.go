package web

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fahmi-blip/data-barang-sub000/internal/app"
)

// createReceiving handles POST /api/receivings.
func (h *Handler) createReceiving(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID    int64 `json:"order_id" validate:"required,gt=0"`
		ReceiverID int64 `json:"receiver_id" validate:"required,gt=0"`
		Lines      []struct {
			ItemID    int64  `json:"item_id" validate:"required,gt=0"`
			Quantity  string `json:"quantity" validate:"required"`
			UnitPrice string `json:"unit_price" validate:"required"`
		} `json:"lines" validate:"required,min=1,dive"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	req := app.CreateReceivingRequest{
		OrderID:    body.OrderID,
		ReceiverID: body.ReceiverID,
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
		req.Lines = append(req.Lines, app.ReceivingLineInput{
			ItemID:    l.ItemID,
			Quantity:  qty,
			UnitPrice: price,
		})
	}

	result, err := h.svc.CreateReceiving(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, result.Receiving)
}

// getReceiving handles GET /api/receivings/{id}.
func (h *Handler) getReceiving(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid receiving id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetReceiving(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Receiving)
}

// listReceivings handles GET /api/receivings.
func (h *Handler) listReceivings(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListReceivings(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Receivings)
}

// getReceivingLines handles GET /api/receivings/{id}/lines.
func (h *Handler) getReceivingLines(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, "invalid receiving id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.GetReceiving(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Receiving.Lines)
}
