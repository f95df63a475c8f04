package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fahmi-blip/data-barang-sub000/internal/core"
)

// ApplicationService is the single interface the web adapter calls. It
// decouples transport from business logic; implementations contain no
// HTTP types and no display logic of any kind.
type ApplicationService interface {
	// ── Catalog ──────────────────────────────────────────────────────────

	// CreateItem adds a new catalog item.
	CreateItem(ctx context.Context, req CreateItemRequest) (*core.Item, error)

	// UpdateItem replaces an existing item's editable fields.
	UpdateItem(ctx context.Context, itemID int64, req CreateItemRequest) (*core.Item, error)

	// GetItem returns an item by id.
	GetItem(ctx context.Context, itemID int64) (*core.Item, error)

	// ListItems returns all active items. Served from cache when warm.
	ListItems(ctx context.Context) ([]core.Item, error)

	// CreateUnit adds a new measurement unit.
	CreateUnit(ctx context.Context, name string) (*core.Unit, error)

	// ListUnits returns all active units. Served from cache when warm.
	ListUnits(ctx context.Context) ([]core.Unit, error)

	// CreateVendor adds a new vendor.
	CreateVendor(ctx context.Context, req CreateVendorRequest) (*core.Vendor, error)

	// GetVendor returns a vendor by id.
	GetVendor(ctx context.Context, vendorID int64) (*core.Vendor, error)

	// ListVendors returns all active vendors. Served from cache when warm.
	ListVendors(ctx context.Context) ([]core.Vendor, error)

	// ── Pricing ──────────────────────────────────────────────────────────

	// CreateMarginPolicy adds a margin policy with the given percentage.
	CreateMarginPolicy(ctx context.Context, percentage decimal.Decimal) (*core.MarginPolicy, error)

	// GetMarginPolicy returns a margin policy by id.
	GetMarginPolicy(ctx context.Context, policyID int64) (*core.MarginPolicy, error)

	// ListMarginPolicies returns all active margin policies.
	ListMarginPolicies(ctx context.Context) ([]core.MarginPolicy, error)

	// PreviewSale prices a prospective sale without writing anything.
	PreviewSale(ctx context.Context, req CreateSaleRequest) (*core.SalePreview, error)

	// ── Procurement ──────────────────────────────────────────────────────

	// CreateProcurement creates a procurement order with its lines.
	CreateProcurement(ctx context.Context, req CreateProcurementRequest) (*ProcurementResult, error)

	// GetProcurement returns a procurement order by id, with lines.
	GetProcurement(ctx context.Context, orderID int64) (*ProcurementResult, error)

	// ListProcurements returns all procurement orders, newest first.
	ListProcurements(ctx context.Context) (*ProcurementListResult, error)

	// ── Receiving ────────────────────────────────────────────────────────

	// CreateReceiving reconciles received goods against an order and, on
	// success, books the inbound stock movements.
	CreateReceiving(ctx context.Context, req CreateReceivingRequest) (*ReceivingResult, error)

	// GetReceiving returns a receiving record by id, with lines.
	GetReceiving(ctx context.Context, receivingID int64) (*ReceivingResult, error)

	// ListReceivings returns all receiving records, newest first.
	ListReceivings(ctx context.Context) (*ReceivingListResult, error)

	// ── Sales ────────────────────────────────────────────────────────────

	// CreateSale prices and creates a sale, booking the outbound movements.
	CreateSale(ctx context.Context, req CreateSaleRequest) (*SaleResult, error)

	// GetSale returns a sale by id, with lines.
	GetSale(ctx context.Context, saleID int64) (*SaleResult, error)

	// ListSales returns all sales, newest first.
	ListSales(ctx context.Context) (*SaleListResult, error)

	// ── Stock ledger ─────────────────────────────────────────────────────

	// GetItemLedger returns one item's movement history in commit order.
	GetItemLedger(ctx context.Context, itemID int64) (*LedgerResult, error)

	// GetLedger returns the movement history across all items.
	GetLedger(ctx context.Context) (*LedgerResult, error)

	// GetStockLevels returns current on-hand quantities per item.
	GetStockLevels(ctx context.Context) (*StockResult, error)

	// ── AI assistant ─────────────────────────────────────────────────────

	// InterpretStockNote sends a free-text stock note to the AI agent and
	// returns a drafted action for human confirmation. The agent never
	// writes. Returns ErrAssistantDisabled when no API key is configured.
	InterpretStockNote(ctx context.Context, note string) (*AIResult, error)
}
