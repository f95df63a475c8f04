package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fahmi-blip/data-barang-sub000/internal/ai"
	"github.com/fahmi-blip/data-barang-sub000/internal/cache"
	"github.com/fahmi-blip/data-barang-sub000/internal/core"
)

// ErrAssistantDisabled is returned by InterpretStockNote when no OpenAI
// API key is configured.
var ErrAssistantDisabled = errors.New("ai assistant is not configured")

// Catalog listings change rarely; stock levels change on every receiving
// and sale, so they get a much shorter TTL.
const (
	catalogCacheTTL = 5 * time.Minute
	stockCacheTTL   = 15 * time.Second

	keyItems   = "catalog:items"
	keyUnits   = "catalog:units"
	keyVendors = "catalog:vendors"
	keyStock   = "stock:levels"
)

type appService struct {
	catalog     core.CatalogService
	pricing     core.PricingService
	procurement core.ProcurementService
	receiving   core.ReceivingService
	sales       core.SalesService
	ledger      core.StockLedger
	cache       cache.Cache
	agent       ai.AgentService
	log         *logrus.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent may be nil when no API key is configured.
func NewAppService(
	catalog core.CatalogService,
	pricing core.PricingService,
	procurement core.ProcurementService,
	receiving core.ReceivingService,
	sales core.SalesService,
	ledger core.StockLedger,
	c cache.Cache,
	agent ai.AgentService,
	log *logrus.Logger,
) ApplicationService {
	return &appService{
		catalog:     catalog,
		pricing:     pricing,
		procurement: procurement,
		receiving:   receiving,
		sales:       sales,
		ledger:      ledger,
		cache:       c,
		agent:       agent,
		log:         log,
	}
}

// ── Catalog ───────────────────────────────────────────────────────────────

func (s *appService) CreateItem(ctx context.Context, req CreateItemRequest) (*core.Item, error) {
	item, err := s.catalog.CreateItem(ctx, core.ItemInput{
		Name:          req.Name,
		Kind:          req.Kind,
		UnitID:        req.UnitID,
		PurchasePrice: req.PurchasePrice,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, keyItems)
	return item, nil
}

func (s *appService) UpdateItem(ctx context.Context, itemID int64, req CreateItemRequest) (*core.Item, error) {
	item, err := s.catalog.UpdateItem(ctx, itemID, core.ItemInput{
		Name:          req.Name,
		Kind:          req.Kind,
		UnitID:        req.UnitID,
		PurchasePrice: req.PurchasePrice,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, keyItems)
	return item, nil
}

func (s *appService) GetItem(ctx context.Context, itemID int64) (*core.Item, error) {
	return s.catalog.GetItem(ctx, itemID)
}

func (s *appService) ListItems(ctx context.Context) ([]core.Item, error) {
	var items []core.Item
	if s.fromCache(ctx, keyItems, &items) {
		return items, nil
	}
	items, err := s.catalog.GetItems(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, keyItems, items, catalogCacheTTL)
	return items, nil
}

func (s *appService) CreateUnit(ctx context.Context, name string) (*core.Unit, error) {
	unit, err := s.catalog.CreateUnit(ctx, name)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, keyUnits)
	return unit, nil
}

func (s *appService) ListUnits(ctx context.Context) ([]core.Unit, error) {
	var units []core.Unit
	if s.fromCache(ctx, keyUnits, &units) {
		return units, nil
	}
	units, err := s.catalog.GetUnits(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, keyUnits, units, catalogCacheTTL)
	return units, nil
}

func (s *appService) CreateVendor(ctx context.Context, req CreateVendorRequest) (*core.Vendor, error) {
	vendor, err := s.catalog.CreateVendor(ctx, core.VendorInput{
		Name:         req.Name,
		IsRegistered: req.IsRegistered,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, keyVendors)
	return vendor, nil
}

func (s *appService) GetVendor(ctx context.Context, vendorID int64) (*core.Vendor, error) {
	return s.catalog.GetVendor(ctx, vendorID)
}

func (s *appService) ListVendors(ctx context.Context) ([]core.Vendor, error) {
	var vendors []core.Vendor
	if s.fromCache(ctx, keyVendors, &vendors) {
		return vendors, nil
	}
	vendors, err := s.catalog.GetVendors(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, keyVendors, vendors, catalogCacheTTL)
	return vendors, nil
}

// ── Pricing ───────────────────────────────────────────────────────────────

func (s *appService) CreateMarginPolicy(ctx context.Context, percentage decimal.Decimal) (*core.MarginPolicy, error) {
	return s.pricing.CreateMarginPolicy(ctx, percentage)
}

func (s *appService) GetMarginPolicy(ctx context.Context, policyID int64) (*core.MarginPolicy, error) {
	return s.pricing.GetMarginPolicy(ctx, policyID)
}

func (s *appService) ListMarginPolicies(ctx context.Context) ([]core.MarginPolicy, error) {
	return s.pricing.GetMarginPolicies(ctx)
}

func (s *appService) PreviewSale(ctx context.Context, req CreateSaleRequest) (*core.SalePreview, error) {
	return s.pricing.PreviewSale(ctx, req.MarginPolicyID, saleLines(req.Lines))
}

// ── Procurement ───────────────────────────────────────────────────────────

func (s *appService) CreateProcurement(ctx context.Context, req CreateProcurementRequest) (*ProcurementResult, error) {
	lines := make([]core.ProcurementLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.ProcurementLineInput{
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	order, err := s.procurement.CreateProcurement(ctx, req.VendorID, req.CreatorID, req.Tax, lines)
	if err != nil {
		return nil, err
	}
	return &ProcurementResult{Order: order}, nil
}

func (s *appService) GetProcurement(ctx context.Context, orderID int64) (*ProcurementResult, error) {
	order, err := s.procurement.GetProcurement(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &ProcurementResult{Order: order}, nil
}

func (s *appService) ListProcurements(ctx context.Context) (*ProcurementListResult, error) {
	orders, err := s.procurement.GetProcurements(ctx)
	if err != nil {
		return nil, err
	}
	return &ProcurementListResult{Orders: orders}, nil
}

// ── Receiving ─────────────────────────────────────────────────────────────

func (s *appService) CreateReceiving(ctx context.Context, req CreateReceivingRequest) (*ReceivingResult, error) {
	lines := make([]core.ReceivingLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.ReceivingLineInput{
			ItemID:    l.ItemID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	rec, err := s.receiving.CreateReceiving(ctx, req.OrderID, req.ReceiverID, lines)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, keyStock)
	return &ReceivingResult{Receiving: rec}, nil
}

func (s *appService) GetReceiving(ctx context.Context, receivingID int64) (*ReceivingResult, error) {
	rec, err := s.receiving.GetReceiving(ctx, receivingID)
	if err != nil {
		return nil, err
	}
	return &ReceivingResult{Receiving: rec}, nil
}

func (s *appService) ListReceivings(ctx context.Context) (*ReceivingListResult, error) {
	recs, err := s.receiving.GetReceivings(ctx)
	if err != nil {
		return nil, err
	}
	return &ReceivingListResult{Receivings: recs}, nil
}

// ── Sales ─────────────────────────────────────────────────────────────────

func (s *appService) CreateSale(ctx context.Context, req CreateSaleRequest) (*SaleResult, error) {
	sale, err := s.sales.CreateSale(ctx, req.CashierID, req.MarginPolicyID, saleLines(req.Lines))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, keyStock)
	return &SaleResult{Sale: sale}, nil
}

func (s *appService) GetSale(ctx context.Context, saleID int64) (*SaleResult, error) {
	sale, err := s.sales.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

func (s *appService) ListSales(ctx context.Context) (*SaleListResult, error) {
	sales, err := s.sales.GetSales(ctx)
	if err != nil {
		return nil, err
	}
	return &SaleListResult{Sales: sales}, nil
}

// ── Stock ledger ──────────────────────────────────────────────────────────

func (s *appService) GetItemLedger(ctx context.Context, itemID int64) (*LedgerResult, error) {
	movements, err := s.ledger.GetLedger(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return &LedgerResult{Movements: movements}, nil
}

func (s *appService) GetLedger(ctx context.Context) (*LedgerResult, error) {
	movements, err := s.ledger.GetLedgerAll(ctx)
	if err != nil {
		return nil, err
	}
	return &LedgerResult{Movements: movements}, nil
}

func (s *appService) GetStockLevels(ctx context.Context) (*StockResult, error) {
	var levels []core.StockLevel
	if s.fromCache(ctx, keyStock, &levels) {
		return &StockResult{Levels: levels}, nil
	}
	levels, err := s.ledger.GetStockLevels(ctx)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, keyStock, levels, stockCacheTTL)
	return &StockResult{Levels: levels}, nil
}

// ── AI assistant ──────────────────────────────────────────────────────────

func (s *appService) InterpretStockNote(ctx context.Context, note string) (*AIResult, error) {
	if s.agent == nil {
		return nil, ErrAssistantDisabled
	}

	registry := ai.NewToolRegistry()
	registry.Register(ai.ToolDefinition{
		Name:        "list_items",
		Description: "All active catalog items with purchase prices",
		Handler: func(ctx context.Context) (string, error) {
			items, err := s.ListItems(ctx)
			if err != nil {
				return "", err
			}
			return jsonString(items)
		},
	})
	registry.Register(ai.ToolDefinition{
		Name:        "list_vendors",
		Description: "All active vendors",
		Handler: func(ctx context.Context) (string, error) {
			vendors, err := s.ListVendors(ctx)
			if err != nil {
				return "", err
			}
			return jsonString(vendors)
		},
	})
	registry.Register(ai.ToolDefinition{
		Name:        "stock_levels",
		Description: "Current on-hand quantity per item",
		Handler: func(ctx context.Context) (string, error) {
			res, err := s.GetStockLevels(ctx)
			if err != nil {
				return "", err
			}
			return jsonString(res.Levels)
		},
	})
	registry.Register(ai.ToolDefinition{
		Name:        "open_orders",
		Description: "Procurement orders not yet received",
		Handler: func(ctx context.Context) (string, error) {
			res, err := s.ListProcurements(ctx)
			if err != nil {
				return "", err
			}
			var open []core.ProcurementOrder
			for _, o := range res.Orders {
				if !o.Received {
					open = append(open, o)
				}
			}
			return jsonString(open)
		},
	})

	draft, err := s.agent.InterpretStockNote(ctx, note, registry)
	if err != nil {
		return nil, err
	}
	return &AIResult{Draft: draft}, nil
}

// ── private helpers ───────────────────────────────────────────────────────

func saleLines(in []SaleLineInput) []core.SalesLineInput {
	out := make([]core.SalesLineInput, len(in))
	for i, l := range in {
		out[i] = core.SalesLineInput{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	return out
}

func jsonString(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// fromCache fills v from the cache and reports whether it was a hit.
// Cache failures are logged and treated as misses.
func (s *appService) fromCache(ctx context.Context, key string, v any) bool {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache get failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, v); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache payload corrupt")
		return false
	}
	return true
}

func (s *appService) toCache(ctx context.Context, key string, v any, ttl time.Duration) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache set failed")
	}
}

func (s *appService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.WithError(err).Warn("cache invalidation failed")
	}
}
