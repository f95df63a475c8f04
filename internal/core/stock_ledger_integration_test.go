package core_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/fahmi-blip/data-barang-sub000/internal/core"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed: unit 1 pcs, unit 2 kg, vendor 1, item 1 (price 1000),
	// item 2 (price 15000), margin policy 1 (20%), user 1.
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE stock_movements, stock_balances, sales_lines, sales,
			receiving_lines, receivings, procurement_lines, procurement_orders,
			margin_policies, items, vendors, units, users
			RESTART IDENTITY CASCADE;

		INSERT INTO units (name) VALUES ('pcs'), ('kg');
		INSERT INTO vendors (name, is_registered) VALUES ('CV Sumber Rejeki', true);
		INSERT INTO items (name, kind, unit_id, purchase_price) VALUES
			('Beras Premium', 'good', 2, 1000),
			('Minyak Goreng', 'good', 1, 15000);
		INSERT INTO margin_policies (percentage) VALUES (20);
		INSERT INTO users (name, role) VALUES ('Test Staff', 'staff');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

// appendMovement runs AppendMovementTx inside its own committed transaction.
func appendMovement(t *testing.T, pool *pgxpool.Pool, ledger core.StockLedger,
	itemID int64, kind core.MovementKind, sourceID int64, qtyIn, qtyOut decimal.Decimal) *core.StockMovement {
	t.Helper()

	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback(ctx)

	m, err := ledger.AppendMovementTx(ctx, tx, itemID, kind, sourceID, qtyIn, qtyOut)
	if err != nil {
		t.Fatalf("AppendMovementTx: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return m
}

func TestStockLedger_RunningBalance(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger := core.NewStockLedger(pool)

	m1 := appendMovement(t, pool, ledger, 1, core.MovementReceipt, 1,
		decimal.NewFromInt(10), decimal.Zero)
	if !m1.Balance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("after first receipt expected balance 10, got %s", m1.Balance)
	}

	m2 := appendMovement(t, pool, ledger, 1, core.MovementSale, 1,
		decimal.Zero, decimal.NewFromInt(4))
	if !m2.Balance.Equal(decimal.NewFromInt(6)) {
		t.Errorf("after sale of 4 expected balance 6, got %s", m2.Balance)
	}

	m3 := appendMovement(t, pool, ledger, 1, core.MovementSale, 2,
		decimal.Zero, decimal.NewFromInt(10))
	if !m3.Balance.Equal(decimal.NewFromInt(-4)) {
		t.Errorf("oversell must be allowed, expected balance -4, got %s", m3.Balance)
	}

	history, err := ledger.GetLedger(ctx, 1)
	if err != nil {
		t.Fatalf("GetLedger: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 movements, got %d", len(history))
	}
	for i, want := range []int64{10, 6, -4} {
		if !history[i].Balance.Equal(decimal.NewFromInt(want)) {
			t.Errorf("movement %d: expected balance %d, got %s", i, want, history[i].Balance)
		}
	}
	if history[0].Kind != core.MovementReceipt || history[1].Kind != core.MovementSale {
		t.Error("movement kinds not preserved in commit order")
	}

	levels, err := ledger.GetStockLevels(ctx)
	if err != nil {
		t.Fatalf("GetStockLevels: %v", err)
	}
	if len(levels) != 1 {
		t.Fatalf("expected 1 stock level row, got %d", len(levels))
	}
	if !levels[0].QtyOnHand.Equal(decimal.NewFromInt(-4)) {
		t.Errorf("expected on-hand -4, got %s", levels[0].QtyOnHand)
	}
}

func TestStockLedger_PerItemIsolation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger := core.NewStockLedger(pool)

	appendMovement(t, pool, ledger, 1, core.MovementReceipt, 1, decimal.NewFromInt(5), decimal.Zero)
	appendMovement(t, pool, ledger, 2, core.MovementReceipt, 1, decimal.NewFromInt(7), decimal.Zero)

	h1, err := ledger.GetLedger(ctx, 1)
	if err != nil {
		t.Fatalf("GetLedger item 1: %v", err)
	}
	if len(h1) != 1 || !h1[0].Balance.Equal(decimal.NewFromInt(5)) {
		t.Errorf("item 1 ledger wrong: %+v", h1)
	}

	all, err := ledger.GetLedgerAll(ctx)
	if err != nil {
		t.Fatalf("GetLedgerAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 movements across items, got %d", len(all))
	}
}

func TestStockLedger_RejectsNegativeQuantities(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	ledger := core.NewStockLedger(pool)

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback(ctx)

	_, err = ledger.AppendMovementTx(ctx, tx, 1, core.MovementReceipt, 1,
		decimal.NewFromInt(-1), decimal.Zero)
	var validationErr *core.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}
