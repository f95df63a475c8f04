package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemKind string

const (
	ItemGood    ItemKind = "good"
	ItemService ItemKind = "service"
)

// Item is a catalog entry. PurchasePrice is the vendor-side price; the
// sale price is always derived from it through a margin policy.
type Item struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Kind          ItemKind        `json:"kind"`
	UnitID        int64           `json:"unit_id"`
	UnitName      string          `json:"unit_name,omitempty"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ItemInput holds the fields required to create or update an item.
type ItemInput struct {
	Name          string
	Kind          ItemKind
	UnitID        int64
	PurchasePrice decimal.Decimal
}

type Unit struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Vendor struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	IsRegistered bool      `json:"is_registered"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// VendorInput holds the fields required to create a vendor.
type VendorInput struct {
	Name         string
	IsRegistered bool
}

// MarginPolicy is a percentage markup over an item's purchase price.
// A sale binds to exactly one policy id at creation time; the bound
// percentage is never re-evaluated afterwards.
type MarginPolicy struct {
	ID         int64           `json:"id"`
	Percentage decimal.Decimal `json:"percentage"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type MovementKind string

const (
	MovementReceipt MovementKind = "receipt"
	MovementSale    MovementKind = "sale"
)

// StockMovement is one append-only ledger row. Balance is the per-item
// running balance immediately after this movement, written inside the same
// transaction as the movement itself.
type StockMovement struct {
	ID        int64           `json:"id"`
	ItemID    int64           `json:"item_id"`
	ItemName  string          `json:"item_name,omitempty"`
	Kind      MovementKind    `json:"kind"`
	SourceID  int64           `json:"source_id"`
	QtyIn     decimal.Decimal `json:"qty_in"`
	QtyOut    decimal.Decimal `json:"qty_out"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// StockLevel is a read view of an item's current on-hand quantity.
type StockLevel struct {
	ItemID    int64           `json:"item_id"`
	ItemName  string          `json:"item_name"`
	QtyOnHand decimal.Decimal `json:"qty_on_hand"`
}
