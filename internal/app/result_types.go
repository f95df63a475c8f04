package app

import (
	"github.com/fahmi-blip/data-barang-sub000/internal/ai"
	"github.com/fahmi-blip/data-barang-sub000/internal/core"
)

// ProcurementResult is returned by procurement operations.
type ProcurementResult struct {
	Order *core.ProcurementOrder
}

// ProcurementListResult is returned by ListProcurements.
type ProcurementListResult struct {
	Orders []core.ProcurementOrder
}

// ReceivingResult is returned by receiving operations.
type ReceivingResult struct {
	Receiving *core.ReceivingRecord
}

// ReceivingListResult is returned by ListReceivings.
type ReceivingListResult struct {
	Receivings []core.ReceivingRecord
}

// SaleResult is returned by sale operations.
type SaleResult struct {
	Sale *core.SalesOrder
}

// SaleListResult is returned by ListSales.
type SaleListResult struct {
	Sales []core.SalesOrder
}

// LedgerResult is returned by ledger queries.
type LedgerResult struct {
	Movements []core.StockMovement
}

// StockResult is returned by GetStockLevels.
type StockResult struct {
	Levels []core.StockLevel
}

// AIResult is returned by InterpretStockNote.
type AIResult struct {
	Draft *ai.DraftAction
}
