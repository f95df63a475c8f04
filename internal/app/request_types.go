package app

import (
	"github.com/shopspring/decimal"

	"github.com/fahmi-blip/data-barang-sub000/internal/core"
)

// CreateItemRequest is the input for creating or updating a catalog item.
type CreateItemRequest struct {
	Name          string
	Kind          core.ItemKind
	UnitID        int64
	PurchasePrice decimal.Decimal
}

// CreateVendorRequest is the input for creating a vendor.
type CreateVendorRequest struct {
	Name         string
	IsRegistered bool
}

// CreateProcurementRequest is the input for creating a procurement order.
type CreateProcurementRequest struct {
	VendorID  int64
	CreatorID int64
	Tax       decimal.Decimal
	Lines     []ProcurementLineInput
}

// ProcurementLineInput is a single line within a CreateProcurementRequest.
type ProcurementLineInput struct {
	ItemID    int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// CreateReceivingRequest is the input for receiving a procurement order.
type CreateReceivingRequest struct {
	OrderID    int64
	ReceiverID int64
	Lines      []ReceivingLineInput
}

// ReceivingLineInput is a single line within a CreateReceivingRequest.
type ReceivingLineInput struct {
	ItemID    int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// CreateSaleRequest is the input for creating a sale. Lines carry no
// prices; every price is derived from the margin policy server-side.
type CreateSaleRequest struct {
	CashierID      int64
	MarginPolicyID int64
	Lines          []SaleLineInput
}

// SaleLineInput is a single line within a CreateSaleRequest.
type SaleLineInput struct {
	ItemID   int64
	Quantity decimal.Decimal
}
