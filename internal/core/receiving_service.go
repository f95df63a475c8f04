package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type receivingService struct {
	pool   *pgxpool.Pool
	ledger StockLedger
}

// NewReceivingService constructs a ReceivingService backed by PostgreSQL.
func NewReceivingService(pool *pgxpool.Pool, ledger StockLedger) ReceivingService {
	return &receivingService{pool: pool, ledger: ledger}
}

func (s *receivingService) CreateReceiving(ctx context.Context, orderID, receiverID int64,
	lines []ReceivingLineInput) (*ReceivingRecord, error) {

	if len(lines) == 0 {
		return nil, validationErrf("lines", "at least one line is required")
	}
	if receiverID <= 0 {
		return nil, validationErrf("receiver_id", "must be a positive id")
	}
	seen := make(map[int64]bool, len(lines))
	for i, input := range lines {
		if !input.Quantity.IsPositive() {
			return nil, validationErrf("lines", "line %d: quantity must be positive, got %s", i+1, input.Quantity)
		}
		if input.UnitPrice.IsNegative() {
			return nil, validationErrf("lines", "line %d: unit price cannot be negative, got %s", i+1, input.UnitPrice)
		}
		if seen[input.ItemID] {
			return nil, validationErrf("lines", "line %d: item %d appears more than once", i+1, input.ItemID)
		}
		seen[input.ItemID] = true
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// Lock the order row so concurrent receipts of the same order serialize;
	// the loser then fails the already-received check below instead of
	// tripping the unique constraint on receivings.order_id.
	var lockedID int64
	if err := tx.QueryRow(ctx,
		"SELECT id FROM procurement_orders WHERE id = $1 FOR UPDATE",
		orderID,
	).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "procurement order", ID: orderID}
		}
		return nil, storageErr("lock procurement order", err)
	}

	var alreadyReceived bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM receivings WHERE order_id = $1)",
		orderID,
	).Scan(&alreadyReceived); err != nil {
		return nil, storageErr("check prior receiving", err)
	}
	if alreadyReceived {
		return nil, validationErrf("order_id", "order %d has already been received", orderID)
	}

	// Load the order's lines as the reconciliation target, keyed by item id.
	type target struct {
		itemID   int64
		itemName string
		quantity decimal.Decimal
	}
	rows, err := tx.Query(ctx, `
		SELECT pl.item_id, i.name, pl.quantity
		FROM procurement_lines pl
		JOIN items i ON i.id = pl.item_id
		WHERE pl.order_id = $1
		ORDER BY pl.id`,
		orderID,
	)
	if err != nil {
		return nil, storageErr("fetch order lines", err)
	}
	targets := make(map[int64]target)
	for rows.Next() {
		var t target
		if err := rows.Scan(&t.itemID, &t.itemName, &t.quantity); err != nil {
			rows.Close()
			return nil, storageErr("scan order line", err)
		}
		targets[t.itemID] = t
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storageErr("fetch order lines", err)
	}

	// Every submitted line must match an ordered item with the exact quantity.
	for _, input := range lines {
		t, ok := targets[input.ItemID]
		if !ok {
			return nil, &ReconciliationError{
				OrderID:  orderID,
				ItemID:   input.ItemID,
				Expected: decimal.Zero,
				Received: input.Quantity,
			}
		}
		if !input.Quantity.Equal(t.quantity) {
			return nil, &ReconciliationError{
				OrderID:  orderID,
				ItemID:   input.ItemID,
				ItemName: t.itemName,
				Expected: t.quantity,
				Received: input.Quantity,
			}
		}
	}

	// And every ordered item must have been submitted.
	for _, t := range targets {
		if !seen[t.itemID] {
			return nil, &ReconciliationError{
				OrderID:  orderID,
				ItemID:   t.itemID,
				ItemName: t.itemName,
				Expected: t.quantity,
				Received: decimal.Zero,
			}
		}
	}

	var receivingID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO receivings (order_id, received_by)
		VALUES ($1, $2)
		RETURNING id`,
		orderID, receiverID,
	).Scan(&receivingID); err != nil {
		return nil, storageErr("insert receiving", err)
	}

	for _, input := range lines {
		lineSubtotal := input.UnitPrice.Mul(input.Quantity)
		if _, err := tx.Exec(ctx, `
			INSERT INTO receiving_lines (receiving_id, item_id, quantity, unit_price, line_subtotal)
			VALUES ($1, $2, $3, $4, $5)`,
			receivingID, input.ItemID, input.Quantity, input.UnitPrice, lineSubtotal,
		); err != nil {
			return nil, storageErr("insert receiving line", err)
		}

		if _, err := s.ledger.AppendMovementTx(ctx, tx,
			input.ItemID, MovementReceipt, receivingID, input.Quantity, decimal.Zero); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("commit receiving", err)
	}

	return s.GetReceiving(ctx, receivingID)
}

func (s *receivingService) GetReceiving(ctx context.Context, receivingID int64) (*ReceivingRecord, error) {
	rec := &ReceivingRecord{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, order_id, received_by, status, created_at
		FROM receivings
		WHERE id = $1`,
		receivingID,
	).Scan(&rec.ID, &rec.OrderID, &rec.ReceivedBy, &rec.Status, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "receiving", ID: receivingID}
		}
		return nil, storageErr("get receiving", err)
	}

	lines, err := s.GetReceivingLines(ctx, receivingID)
	if err != nil {
		return nil, err
	}
	rec.Lines = lines
	return rec, nil
}

func (s *receivingService) GetReceivingLines(ctx context.Context, receivingID int64) ([]ReceivingLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT rl.id, rl.receiving_id, rl.item_id, i.name,
		       rl.quantity, rl.unit_price, rl.line_subtotal
		FROM receiving_lines rl
		JOIN items i ON i.id = rl.item_id
		WHERE rl.receiving_id = $1
		ORDER BY rl.id`,
		receivingID,
	)
	if err != nil {
		return nil, storageErr("fetch receiving lines", err)
	}
	defer rows.Close()

	var lines []ReceivingLine
	for rows.Next() {
		var l ReceivingLine
		if err := rows.Scan(&l.ID, &l.ReceivingID, &l.ItemID, &l.ItemName,
			&l.Quantity, &l.UnitPrice, &l.LineSubtotal); err != nil {
			return nil, storageErr("scan receiving line", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *receivingService) GetReceivings(ctx context.Context) ([]ReceivingRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, received_by, status, created_at
		FROM receivings
		ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, storageErr("list receivings", err)
	}
	defer rows.Close()

	var recs []ReceivingRecord
	for rows.Next() {
		var rec ReceivingRecord
		if err := rows.Scan(&rec.ID, &rec.OrderID, &rec.ReceivedBy, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, storageErr("scan receiving", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
