package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fahmi-blip/data-barang-sub000/internal/core"
)

// seedOrder creates a procurement order of 10 x item 1 @ 1000 + tax 1000.
func seedOrder(t *testing.T, svc core.ProcurementService) *core.ProcurementOrder {
	t.Helper()
	order, err := svc.CreateProcurement(context.Background(), 1, 1, decimal.NewFromInt(1000),
		[]core.ProcurementLineInput{
			{ItemID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(1000)},
		})
	if err != nil {
		t.Fatalf("seed procurement: %v", err)
	}
	return order
}

func TestReceiving_FullMatch(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger := core.NewStockLedger(pool)
	procurement := core.NewProcurementService(pool)
	svc := core.NewReceivingService(pool, ledger)

	order := seedOrder(t, procurement)

	rec, err := svc.CreateReceiving(ctx, order.ID, 1, []core.ReceivingLineInput{
		{ItemID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(1000)},
	})
	if err != nil {
		t.Fatalf("CreateReceiving: %v", err)
	}
	if rec.OrderID != order.ID {
		t.Errorf("expected order id %d, got %d", order.ID, rec.OrderID)
	}
	if len(rec.Lines) != 1 {
		t.Fatalf("expected 1 receiving line, got %d", len(rec.Lines))
	}

	// The receipt books one inbound movement and the balance lands on 10.
	history, err := ledger.GetLedger(ctx, 1)
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(history))
	}
	if history[0].Kind != core.MovementReceipt {
		t.Errorf("expected receipt movement, got %s", history[0].Kind)
	}
	if !history[0].Balance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected balance 10 after receipt, got %s", history[0].Balance)
	}
	if history[0].SourceID != rec.ID {
		t.Errorf("movement must reference the receiving, got source %d", history[0].SourceID)
	}

	updated, err := procurement.GetProcurement(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetProcurement: %v", err)
	}
	if !updated.Received {
		t.Error("order must be reported received")
	}
	// Received is derived from the receiving record; the order header row
	// itself is never edited in place.
	if updated.Status != "created" {
		t.Errorf("order header must not be mutated, status went to %s", updated.Status)
	}
}

func TestReceiving_QuantityMismatch(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger := core.NewStockLedger(pool)
	procurement := core.NewProcurementService(pool)
	svc := core.NewReceivingService(pool, ledger)

	order := seedOrder(t, procurement)

	_, err := svc.CreateReceiving(ctx, order.ID, 1, []core.ReceivingLineInput{
		{ItemID: 1, Quantity: decimal.NewFromInt(8), UnitPrice: decimal.NewFromInt(1000)},
	})
	var reconciliationErr *core.ReconciliationError
	if !errors.As(err, &reconciliationErr) {
		t.Fatalf("expected ReconciliationError, got %v", err)
	}
	if !reconciliationErr.Expected.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected quantity 10 in error, got %s", reconciliationErr.Expected)
	}
	if !reconciliationErr.Received.Equal(decimal.NewFromInt(8)) {
		t.Errorf("received quantity 8 in error, got %s", reconciliationErr.Received)
	}
	if reconciliationErr.ItemID != 1 {
		t.Errorf("expected item 1 in error, got %d", reconciliationErr.ItemID)
	}

	// A failed reconciliation persists nothing at all.
	if n := countRows(t, pool, "receivings"); n != 0 {
		t.Errorf("expected 0 receivings after mismatch, got %d", n)
	}
	if n := countRows(t, pool, "receiving_lines"); n != 0 {
		t.Errorf("expected 0 receiving lines after mismatch, got %d", n)
	}
	if n := countRows(t, pool, "stock_movements"); n != 0 {
		t.Errorf("expected 0 stock movements after mismatch, got %d", n)
	}
}

func TestReceiving_UnorderedItem(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger := core.NewStockLedger(pool)
	procurement := core.NewProcurementService(pool)
	svc := core.NewReceivingService(pool, ledger)

	order := seedOrder(t, procurement)

	_, err := svc.CreateReceiving(ctx, order.ID, 1, []core.ReceivingLineInput{
		{ItemID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(1000)},
		{ItemID: 2, Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(15000)},
	})
	var reconciliationErr *core.ReconciliationError
	if !errors.As(err, &reconciliationErr) {
		t.Fatalf("expected ReconciliationError for un-ordered item, got %v", err)
	}
	if reconciliationErr.ItemID != 2 {
		t.Errorf("expected item 2 in error, got %d", reconciliationErr.ItemID)
	}
	if !reconciliationErr.Expected.IsZero() {
		t.Errorf("expected 0 for un-ordered item, got %s", reconciliationErr.Expected)
	}
}

func TestReceiving_MissingOrderedItem(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger := core.NewStockLedger(pool)
	procurement := core.NewProcurementService(pool)
	svc := core.NewReceivingService(pool, ledger)

	order, err := procurement.CreateProcurement(ctx, 1, 1, decimal.Zero,
		[]core.ProcurementLineInput{
			{ItemID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(1000)},
			{ItemID: 2, Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(15000)},
		})
	if err != nil {
		t.Fatalf("CreateProcurement: %v", err)
	}

	_, err = svc.CreateReceiving(ctx, order.ID, 1, []core.ReceivingLineInput{
		{ItemID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(1000)},
	})
	var reconciliationErr *core.ReconciliationError
	if !errors.As(err, &reconciliationErr) {
		t.Fatalf("expected ReconciliationError for missing ordered item, got %v", err)
	}
	if reconciliationErr.ItemID != 2 {
		t.Errorf("expected item 2 in error, got %d", reconciliationErr.ItemID)
	}
	if !reconciliationErr.Received.IsZero() {
		t.Errorf("expected received 0 for missing item, got %s", reconciliationErr.Received)
	}
}

func TestReceiving_SecondReceiptRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger := core.NewStockLedger(pool)
	procurement := core.NewProcurementService(pool)
	svc := core.NewReceivingService(pool, ledger)

	order := seedOrder(t, procurement)

	lines := []core.ReceivingLineInput{
		{ItemID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(1000)},
	}
	if _, err := svc.CreateReceiving(ctx, order.ID, 1, lines); err != nil {
		t.Fatalf("first CreateReceiving: %v", err)
	}

	_, err := svc.CreateReceiving(ctx, order.ID, 1, lines)
	var validationErr *core.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError on second receipt, got %v", err)
	}

	// The first receipt's movement must be the only one.
	if n := countRows(t, pool, "stock_movements"); n != 1 {
		t.Errorf("expected 1 stock movement, got %d", n)
	}
}

func TestReceiving_ConcurrentReceipts(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewStockLedger(pool)
	procurement := core.NewProcurementService(pool)
	svc := core.NewReceivingService(pool, ledger)

	order := seedOrder(t, procurement)
	lines := []core.ReceivingLineInput{
		{ItemID: 1, Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(1000)},
	}

	// Both calls pass order validation; the row lock serializes them, so
	// exactly one commits and the other sees the order as already received.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateReceiving(context.Background(), order.ID, 1, lines)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var failures []error
	for err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	if len(failures) != 1 {
		t.Fatalf("expected exactly one of two concurrent receipts to fail, got %d: %v", len(failures), failures)
	}
	var validationErr *core.ValidationError
	if !errors.As(failures[0], &validationErr) {
		t.Errorf("expected ValidationError for the losing receipt, got %v", failures[0])
	}

	if n := countRows(t, pool, "receivings"); n != 1 {
		t.Errorf("expected 1 receiving, got %d", n)
	}
	if n := countRows(t, pool, "stock_movements"); n != 1 {
		t.Errorf("expected 1 stock movement, got %d", n)
	}
}

func TestReceiving_UnknownOrder(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewStockLedger(pool)
	svc := core.NewReceivingService(pool, ledger)

	_, err := svc.CreateReceiving(context.Background(), 999, 1, []core.ReceivingLineInput{
		{ItemID: 1, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
	})
	var notFound *core.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestReceiving_DuplicateSubmittedItem(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewStockLedger(pool)
	procurement := core.NewProcurementService(pool)
	svc := core.NewReceivingService(pool, ledger)

	order := seedOrder(t, procurement)

	_, err := svc.CreateReceiving(context.Background(), order.ID, 1, []core.ReceivingLineInput{
		{ItemID: 1, Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(1000)},
		{ItemID: 1, Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(1000)},
	})
	var validationErr *core.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError for duplicate item lines, got %v", err)
	}
}
