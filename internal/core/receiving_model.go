package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReceivingRecord confirms physical arrival of goods against a procurement
// order. An order is received at most once, in full.
type ReceivingRecord struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"order_id"`
	ReceivedBy int64           `json:"received_by"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	Lines      []ReceivingLine `json:"lines,omitempty"`
}

// ReceivingLine is a single received item position.
type ReceivingLine struct {
	ID           int64           `json:"id"`
	ReceivingID  int64           `json:"receiving_id"`
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
}

// ReceivingLineInput holds the fields submitted for one received item.
type ReceivingLineInput struct {
	ItemID    int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// ReceivingService reconciles received goods against procurement orders and
// books the inbound stock movements.
type ReceivingService interface {
	// CreateReceiving validates the submitted lines against the order's
	// procurement lines (keyed strictly by item id) and, on success, creates
	// the receiving record, its lines, and one inbound stock movement per
	// line, all in one atomic unit. Any quantity mismatch, un-ordered item,
	// or missing order line fails the whole operation with a
	// ReconciliationError naming the offending item and both quantities.
	CreateReceiving(ctx context.Context, orderID, receiverID int64,
		lines []ReceivingLineInput) (*ReceivingRecord, error)

	// GetReceiving returns a receiving record by id, including all lines.
	GetReceiving(ctx context.Context, receivingID int64) (*ReceivingRecord, error)

	// GetReceivingLines returns just the lines of a receiving record.
	GetReceivingLines(ctx context.Context, receivingID int64) ([]ReceivingLine, error)

	// GetReceivings returns all receiving records, newest first, without lines.
	GetReceivings(ctx context.Context) ([]ReceivingRecord, error)
}
