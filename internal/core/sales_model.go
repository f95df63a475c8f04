package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrder is a committed sale. Subtotal and Total carry the full
// precision of the margin-derived unit prices; only Tax is rounded.
type SalesOrder struct {
	ID             int64           `json:"id"`
	CashierID      int64           `json:"cashier_id"`
	MarginPolicyID int64           `json:"margin_policy_id"`
	Percentage     decimal.Decimal `json:"percentage"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	CreatedAt      time.Time       `json:"created_at"`
	Lines          []SalesLine     `json:"lines,omitempty"`
}

// SalesLine is one sold item position. UnitPrice is derived at sale time
// from the item's purchase price and the sale's margin policy.
type SalesLine struct {
	ID           int64           `json:"id"`
	SaleID       int64           `json:"sale_id"`
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     decimal.Decimal `json:"quantity"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
}

// SalesLineInput holds the fields submitted for one sold item. The caller
// never supplies a price; pricing is entirely server-side.
type SalesLineInput struct {
	ItemID   int64
	Quantity decimal.Decimal
}

// SalesService creates sales and books the outbound stock movements.
type SalesService interface {
	// CreateSale prices the lines against the margin policy, then creates
	// the sale, its lines, and one outbound stock movement per line in one
	// atomic unit. Stock may go negative; availability is not checked.
	CreateSale(ctx context.Context, cashierID, policyID int64,
		lines []SalesLineInput) (*SalesOrder, error)

	// GetSale returns a sale by id, including all lines.
	GetSale(ctx context.Context, saleID int64) (*SalesOrder, error)

	// GetSaleLines returns just the lines of a sale.
	GetSaleLines(ctx context.Context, saleID int64) ([]SalesLine, error)

	// GetSales returns all sales, newest first, without lines.
	GetSales(ctx context.Context) ([]SalesOrder, error)
}
