package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProcurementOrder is a purchase commitment to a vendor. Subtotal is always
// recomputed server-side from the lines; total = subtotal + tax.
type ProcurementOrder struct {
	ID         int64             `json:"id"`
	VendorID   int64             `json:"vendor_id"`
	VendorName string            `json:"vendor_name,omitempty"`
	CreatedBy  int64             `json:"created_by"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	Tax        decimal.Decimal   `json:"tax"`
	Total      decimal.Decimal   `json:"total"`
	Status     string            `json:"status"`
	Received   bool              `json:"received"`
	CreatedAt  time.Time         `json:"created_at"`
	Lines      []ProcurementLine `json:"lines,omitempty"`
}

// ProcurementLine is a single item position on a procurement order.
type ProcurementLine struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     decimal.Decimal `json:"quantity"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
}

// ProcurementLineInput holds the fields required to create a procurement line.
type ProcurementLineInput struct {
	ItemID    int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// ProcurementService creates and reads procurement orders.
type ProcurementService interface {
	// CreateProcurement creates an order with its lines in one atomic unit.
	// The subtotal is recomputed from the lines; any caller-supplied amount
	// is ignored. Returns the freshly committed aggregate.
	CreateProcurement(ctx context.Context, vendorID, creatorID int64,
		tax decimal.Decimal, lines []ProcurementLineInput) (*ProcurementOrder, error)

	// GetProcurement returns an order by id, including all lines.
	GetProcurement(ctx context.Context, orderID int64) (*ProcurementOrder, error)

	// GetProcurementLines returns just the lines of an order.
	GetProcurementLines(ctx context.Context, orderID int64) ([]ProcurementLine, error)

	// GetProcurements returns all orders, newest first, without lines.
	GetProcurements(ctx context.Context) ([]ProcurementOrder, error)
}
