package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type procurementService struct {
	pool *pgxpool.Pool
}

// NewProcurementService constructs a ProcurementService backed by PostgreSQL.
func NewProcurementService(pool *pgxpool.Pool) ProcurementService {
	return &procurementService{pool: pool}
}

func (s *procurementService) CreateProcurement(ctx context.Context, vendorID, creatorID int64,
	tax decimal.Decimal, lines []ProcurementLineInput) (*ProcurementOrder, error) {

	if len(lines) == 0 {
		return nil, validationErrf("lines", "at least one line is required")
	}
	if tax.IsNegative() {
		return nil, validationErrf("tax", "cannot be negative, got %s", tax)
	}
	if creatorID <= 0 {
		return nil, validationErrf("creator_id", "must be a positive id")
	}
	for i, input := range lines {
		if !input.Quantity.IsPositive() {
			return nil, validationErrf("lines", "line %d: quantity must be positive, got %s", i+1, input.Quantity)
		}
		if input.UnitPrice.IsNegative() {
			return nil, validationErrf("lines", "line %d: unit price cannot be negative, got %s", i+1, input.UnitPrice)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var vendorExists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM vendors WHERE id = $1 AND is_active = true)",
		vendorID,
	).Scan(&vendorExists); err != nil {
		return nil, storageErr("validate vendor", err)
	}
	if !vendorExists {
		return nil, &NotFoundError{Entity: "vendor", ID: vendorID}
	}

	// Resolve items and recompute totals server-side.
	type resolvedLine struct {
		itemID       int64
		quantity     decimal.Decimal
		unitPrice    decimal.Decimal
		lineSubtotal decimal.Decimal
	}
	var resolved []resolvedLine
	var subtotal decimal.Decimal

	for _, input := range lines {
		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM items WHERE id = $1 AND is_active = true)",
			input.ItemID,
		).Scan(&exists); err != nil {
			return nil, storageErr("resolve item", err)
		}
		if !exists {
			return nil, &NotFoundError{Entity: "item", ID: input.ItemID}
		}

		lineSubtotal := input.UnitPrice.Mul(input.Quantity)
		subtotal = subtotal.Add(lineSubtotal)
		resolved = append(resolved, resolvedLine{
			itemID:       input.ItemID,
			quantity:     input.Quantity,
			unitPrice:    input.UnitPrice,
			lineSubtotal: lineSubtotal,
		})
	}

	total := subtotal.Add(tax)

	var orderID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO procurement_orders (vendor_id, created_by, subtotal, tax, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		vendorID, creatorID, subtotal, tax, total,
	).Scan(&orderID); err != nil {
		return nil, storageErr("insert procurement order", err)
	}

	for _, rl := range resolved {
		if _, err := tx.Exec(ctx, `
			INSERT INTO procurement_lines (order_id, item_id, unit_price, quantity, line_subtotal)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, rl.itemID, rl.unitPrice, rl.quantity, rl.lineSubtotal,
		); err != nil {
			return nil, storageErr("insert procurement line", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("commit procurement order", err)
	}

	return s.GetProcurement(ctx, orderID)
}

func (s *procurementService) GetProcurement(ctx context.Context, orderID int64) (*ProcurementOrder, error) {
	po := &ProcurementOrder{}
	err := s.pool.QueryRow(ctx, `
		SELECT po.id, po.vendor_id, v.name, po.created_by,
		       po.subtotal, po.tax, po.total, po.status,
		       EXISTS(SELECT 1 FROM receivings r WHERE r.order_id = po.id),
		       po.created_at
		FROM procurement_orders po
		JOIN vendors v ON v.id = po.vendor_id
		WHERE po.id = $1`,
		orderID,
	).Scan(&po.ID, &po.VendorID, &po.VendorName, &po.CreatedBy,
		&po.Subtotal, &po.Tax, &po.Total, &po.Status, &po.Received, &po.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "procurement order", ID: orderID}
		}
		return nil, storageErr("get procurement order", err)
	}

	lines, err := s.GetProcurementLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	po.Lines = lines
	return po, nil
}

func (s *procurementService) GetProcurementLines(ctx context.Context, orderID int64) ([]ProcurementLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pl.id, pl.order_id, pl.item_id, i.name,
		       pl.unit_price, pl.quantity, pl.line_subtotal
		FROM procurement_lines pl
		JOIN items i ON i.id = pl.item_id
		WHERE pl.order_id = $1
		ORDER BY pl.id`,
		orderID,
	)
	if err != nil {
		return nil, storageErr("fetch procurement lines", err)
	}
	defer rows.Close()

	var lines []ProcurementLine
	for rows.Next() {
		var l ProcurementLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.ItemName,
			&l.UnitPrice, &l.Quantity, &l.LineSubtotal); err != nil {
			return nil, storageErr("scan procurement line", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *procurementService) GetProcurements(ctx context.Context) ([]ProcurementOrder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT po.id, po.vendor_id, v.name, po.created_by,
		       po.subtotal, po.tax, po.total, po.status,
		       EXISTS(SELECT 1 FROM receivings r WHERE r.order_id = po.id),
		       po.created_at
		FROM procurement_orders po
		JOIN vendors v ON v.id = po.vendor_id
		ORDER BY po.created_at DESC, po.id DESC`,
	)
	if err != nil {
		return nil, storageErr("list procurement orders", err)
	}
	defer rows.Close()

	var orders []ProcurementOrder
	for rows.Next() {
		var po ProcurementOrder
		if err := rows.Scan(&po.ID, &po.VendorID, &po.VendorName, &po.CreatedBy,
			&po.Subtotal, &po.Tax, &po.Total, &po.Status, &po.Received, &po.CreatedAt); err != nil {
			return nil, storageErr("scan procurement order", err)
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}
