package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type salesService struct {
	pool   *pgxpool.Pool
	ledger StockLedger
}

// NewSalesService constructs a SalesService backed by PostgreSQL.
func NewSalesService(pool *pgxpool.Pool, ledger StockLedger) SalesService {
	return &salesService{pool: pool, ledger: ledger}
}

func (s *salesService) CreateSale(ctx context.Context, cashierID, policyID int64,
	lines []SalesLineInput) (*SalesOrder, error) {

	if len(lines) == 0 {
		return nil, validationErrf("lines", "at least one line is required")
	}
	if cashierID <= 0 {
		return nil, validationErrf("cashier_id", "must be a positive id")
	}
	for i, input := range lines {
		if !input.Quantity.IsPositive() {
			return nil, validationErrf("lines", "line %d: quantity must be positive, got %s", i+1, input.Quantity)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// Bind the policy percentage inside the transaction, so every line of
	// this sale prices against the same snapshot.
	var percentage decimal.Decimal
	err = tx.QueryRow(ctx,
		"SELECT percentage FROM margin_policies WHERE id = $1 AND is_active = true",
		policyID,
	).Scan(&percentage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "margin policy", ID: policyID}
		}
		return nil, storageErr("resolve margin policy", err)
	}

	type pricedLine struct {
		itemID       int64
		quantity     decimal.Decimal
		unitPrice    decimal.Decimal
		lineSubtotal decimal.Decimal
	}
	var priced []pricedLine
	var subtotal decimal.Decimal

	for _, input := range lines {
		var purchasePrice decimal.Decimal
		err := tx.QueryRow(ctx,
			"SELECT purchase_price FROM items WHERE id = $1 AND is_active = true",
			input.ItemID,
		).Scan(&purchasePrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &NotFoundError{Entity: "item", ID: input.ItemID}
			}
			return nil, storageErr("resolve item", err)
		}

		unitPrice := SalePrice(purchasePrice, percentage)
		lineSubtotal := unitPrice.Mul(input.Quantity)
		subtotal = subtotal.Add(lineSubtotal)
		priced = append(priced, pricedLine{
			itemID:       input.ItemID,
			quantity:     input.Quantity,
			unitPrice:    unitPrice,
			lineSubtotal: lineSubtotal,
		})
	}

	tax := SaleTax(subtotal)
	total := subtotal.Add(tax)

	var saleID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO sales (cashier_id, margin_policy_id, subtotal, tax, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		cashierID, policyID, subtotal, tax, total,
	).Scan(&saleID); err != nil {
		return nil, storageErr("insert sale", err)
	}

	for _, pl := range priced {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sales_lines (sale_id, item_id, unit_price, quantity, line_subtotal)
			VALUES ($1, $2, $3, $4, $5)`,
			saleID, pl.itemID, pl.unitPrice, pl.quantity, pl.lineSubtotal,
		); err != nil {
			return nil, storageErr("insert sales line", err)
		}

		if _, err := s.ledger.AppendMovementTx(ctx, tx,
			pl.itemID, MovementSale, saleID, decimal.Zero, pl.quantity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("commit sale", err)
	}

	return s.GetSale(ctx, saleID)
}

func (s *salesService) GetSale(ctx context.Context, saleID int64) (*SalesOrder, error) {
	so := &SalesOrder{}
	err := s.pool.QueryRow(ctx, `
		SELECT s.id, s.cashier_id, s.margin_policy_id, mp.percentage,
		       s.subtotal, s.tax, s.total, s.created_at
		FROM sales s
		JOIN margin_policies mp ON mp.id = s.margin_policy_id
		WHERE s.id = $1`,
		saleID,
	).Scan(&so.ID, &so.CashierID, &so.MarginPolicyID, &so.Percentage,
		&so.Subtotal, &so.Tax, &so.Total, &so.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "sale", ID: saleID}
		}
		return nil, storageErr("get sale", err)
	}

	lines, err := s.GetSaleLines(ctx, saleID)
	if err != nil {
		return nil, err
	}
	so.Lines = lines
	return so, nil
}

func (s *salesService) GetSaleLines(ctx context.Context, saleID int64) ([]SalesLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT sl.id, sl.sale_id, sl.item_id, i.name,
		       sl.unit_price, sl.quantity, sl.line_subtotal
		FROM sales_lines sl
		JOIN items i ON i.id = sl.item_id
		WHERE sl.sale_id = $1
		ORDER BY sl.id`,
		saleID,
	)
	if err != nil {
		return nil, storageErr("fetch sales lines", err)
	}
	defer rows.Close()

	var lines []SalesLine
	for rows.Next() {
		var l SalesLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ItemID, &l.ItemName,
			&l.UnitPrice, &l.Quantity, &l.LineSubtotal); err != nil {
			return nil, storageErr("scan sales line", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *salesService) GetSales(ctx context.Context) ([]SalesOrder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.cashier_id, s.margin_policy_id, mp.percentage,
		       s.subtotal, s.tax, s.total, s.created_at
		FROM sales s
		JOIN margin_policies mp ON mp.id = s.margin_policy_id
		ORDER BY s.created_at DESC, s.id DESC`,
	)
	if err != nil {
		return nil, storageErr("list sales", err)
	}
	defer rows.Close()

	var sales []SalesOrder
	for rows.Next() {
		var so SalesOrder
		if err := rows.Scan(&so.ID, &so.CashierID, &so.MarginPolicyID, &so.Percentage,
			&so.Subtotal, &so.Tax, &so.Total, &so.CreatedAt); err != nil {
			return nil, storageErr("scan sale", err)
		}
		sales = append(sales, so)
	}
	return sales, rows.Err()
}
