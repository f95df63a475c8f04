package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StockLedger maintains the append-only movement log and per-item running
// balances. Movements are only ever created from the receiving and sales
// commit paths, inside the transaction that creates their source record.
type StockLedger interface {
	// AppendMovementTx appends one movement within the caller's transaction.
	// It locks the item's balance row FOR UPDATE, so concurrent movements on
	// the same item serialize and the stored running balance stays exact.
	AppendMovementTx(ctx context.Context, tx pgx.Tx, itemID int64, kind MovementKind,
		sourceID int64, qtyIn, qtyOut decimal.Decimal) (*StockMovement, error)

	// GetLedger returns an item's full movement history in commit order.
	GetLedger(ctx context.Context, itemID int64) ([]StockMovement, error)

	// GetLedgerAll returns the movement history across all items, joined
	// with item names, in commit order.
	GetLedgerAll(ctx context.Context) ([]StockMovement, error)

	// GetStockLevels returns the current on-hand quantity per item.
	GetStockLevels(ctx context.Context) ([]StockLevel, error)
}

type stockLedger struct {
	pool *pgxpool.Pool
}

// NewStockLedger constructs a StockLedger backed by PostgreSQL.
func NewStockLedger(pool *pgxpool.Pool) StockLedger {
	return &stockLedger{pool: pool}
}

func (s *stockLedger) AppendMovementTx(ctx context.Context, tx pgx.Tx, itemID int64, kind MovementKind,
	sourceID int64, qtyIn, qtyOut decimal.Decimal) (*StockMovement, error) {

	if qtyIn.IsNegative() || qtyOut.IsNegative() {
		return nil, validationErrf("quantity", "movement quantities cannot be negative")
	}

	// Ensure the balance row exists, then lock it. The upsert cannot carry
	// FOR UPDATE, so the lock is a second statement (both in the caller's tx).
	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_balances (item_id, qty_on_hand)
		VALUES ($1, 0)
		ON CONFLICT (item_id) DO NOTHING`,
		itemID,
	); err != nil {
		return nil, storageErr("upsert stock balance", err)
	}

	var oldBalance decimal.Decimal
	if err := tx.QueryRow(ctx,
		"SELECT qty_on_hand FROM stock_balances WHERE item_id = $1 FOR UPDATE",
		itemID,
	).Scan(&oldBalance); err != nil {
		return nil, storageErr("lock stock balance", err)
	}

	newBalance := oldBalance.Add(qtyIn).Sub(qtyOut)

	if _, err := tx.Exec(ctx, `
		UPDATE stock_balances
		SET qty_on_hand = $1, updated_at = NOW()
		WHERE item_id = $2`,
		newBalance, itemID,
	); err != nil {
		return nil, storageErr("update stock balance", err)
	}

	m := &StockMovement{
		ItemID:   itemID,
		Kind:     kind,
		SourceID: sourceID,
		QtyIn:    qtyIn,
		QtyOut:   qtyOut,
		Balance:  newBalance,
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO stock_movements (item_id, kind, source_id, qty_in, qty_out, balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		itemID, kind, sourceID, qtyIn, qtyOut, newBalance,
	).Scan(&m.ID, &m.CreatedAt); err != nil {
		return nil, storageErr("insert stock movement", err)
	}

	return m, nil
}

func (s *stockLedger) GetLedger(ctx context.Context, itemID int64) ([]StockMovement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT sm.id, sm.item_id, i.name, sm.kind, sm.source_id,
		       sm.qty_in, sm.qty_out, sm.balance, sm.created_at
		FROM stock_movements sm
		JOIN items i ON i.id = sm.item_id
		WHERE sm.item_id = $1
		ORDER BY sm.id`,
		itemID,
	)
	if err != nil {
		return nil, storageErr("query ledger", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func (s *stockLedger) GetLedgerAll(ctx context.Context) ([]StockMovement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT sm.id, sm.item_id, i.name, sm.kind, sm.source_id,
		       sm.qty_in, sm.qty_out, sm.balance, sm.created_at
		FROM stock_movements sm
		JOIN items i ON i.id = sm.item_id
		ORDER BY sm.id`,
	)
	if err != nil {
		return nil, storageErr("query full ledger", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func (s *stockLedger) GetStockLevels(ctx context.Context) ([]StockLevel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT sb.item_id, i.name, sb.qty_on_hand
		FROM stock_balances sb
		JOIN items i ON i.id = sb.item_id
		ORDER BY i.name`,
	)
	if err != nil {
		return nil, storageErr("query stock levels", err)
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(&sl.ItemID, &sl.ItemName, &sl.QtyOnHand); err != nil {
			return nil, storageErr("scan stock level", err)
		}
		levels = append(levels, sl)
	}
	return levels, rows.Err()
}

func scanMovements(rows pgx.Rows) ([]StockMovement, error) {
	var movements []StockMovement
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.ItemName, &m.Kind, &m.SourceID,
			&m.QtyIn, &m.QtyOut, &m.Balance, &m.CreatedAt); err != nil {
			return nil, storageErr("scan stock movement", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
