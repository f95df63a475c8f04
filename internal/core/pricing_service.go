package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// taxRate is the fixed VAT rate applied to every sale subtotal.
var taxRate = decimal.RequireFromString("0.11")

// SalePrice derives the customer-facing unit price from an item's purchase
// price and a margin percentage: price + price × pct/100. The result keeps
// full precision; rounding happens only on the tax amount, never on unit
// prices or line subtotals.
func SalePrice(purchasePrice, marginPct decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return purchasePrice.Add(purchasePrice.Mul(marginPct).Div(hundred))
}

// SaleTax computes the tax on a sale subtotal, rounded to the nearest whole
// currency amount.
func SaleTax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate).Round(0)
}

// PricedLine is one preview line with its derived unit price.
type PricedLine struct {
	ItemID       int64           `json:"item_id"`
	ItemName     string          `json:"item_name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     decimal.Decimal `json:"quantity"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
}

// SalePreview is the result of pricing a prospective sale without writing
// anything. Commit-path pricing goes through the same SalePrice/SaleTax
// functions, so a preview can never drift from the committed amounts.
type SalePreview struct {
	MarginPolicyID int64           `json:"margin_policy_id"`
	Percentage     decimal.Decimal `json:"percentage"`
	Lines          []PricedLine    `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
}

// PricingService resolves margin policies and derives sale prices.
type PricingService interface {
	CreateMarginPolicy(ctx context.Context, percentage decimal.Decimal) (*MarginPolicy, error)
	GetMarginPolicy(ctx context.Context, policyID int64) (*MarginPolicy, error)
	GetMarginPolicies(ctx context.Context) ([]MarginPolicy, error)

	// PreviewSale prices the given lines against a margin policy and the
	// current item purchase prices, without creating anything.
	PreviewSale(ctx context.Context, policyID int64, lines []SalesLineInput) (*SalePreview, error)
}

type pricingService struct {
	pool *pgxpool.Pool
}

// NewPricingService constructs a PricingService backed by PostgreSQL.
func NewPricingService(pool *pgxpool.Pool) PricingService {
	return &pricingService{pool: pool}
}

func (s *pricingService) CreateMarginPolicy(ctx context.Context, percentage decimal.Decimal) (*MarginPolicy, error) {
	if percentage.IsNegative() {
		return nil, validationErrf("percentage", "cannot be negative, got %s", percentage)
	}

	var p MarginPolicy
	err := s.pool.QueryRow(ctx, `
		INSERT INTO margin_policies (percentage) VALUES ($1)
		RETURNING id, percentage, is_active, created_at, updated_at`,
		percentage,
	).Scan(&p.ID, &p.Percentage, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, storageErr("insert margin policy", err)
	}
	return &p, nil
}

func (s *pricingService) GetMarginPolicy(ctx context.Context, policyID int64) (*MarginPolicy, error) {
	var p MarginPolicy
	err := s.pool.QueryRow(ctx, `
		SELECT id, percentage, is_active, created_at, updated_at
		FROM margin_policies
		WHERE id = $1`,
		policyID,
	).Scan(&p.ID, &p.Percentage, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "margin policy", ID: policyID}
		}
		return nil, storageErr("get margin policy", err)
	}
	return &p, nil
}

func (s *pricingService) GetMarginPolicies(ctx context.Context) ([]MarginPolicy, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, percentage, is_active, created_at, updated_at
		FROM margin_policies
		WHERE is_active = true
		ORDER BY id`)
	if err != nil {
		return nil, storageErr("list margin policies", err)
	}
	defer rows.Close()

	var policies []MarginPolicy
	for rows.Next() {
		var p MarginPolicy
		if err := rows.Scan(&p.ID, &p.Percentage, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, storageErr("scan margin policy", err)
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (s *pricingService) PreviewSale(ctx context.Context, policyID int64, lines []SalesLineInput) (*SalePreview, error) {
	if len(lines) == 0 {
		return nil, validationErrf("lines", "at least one line is required")
	}

	policy, err := s.GetMarginPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}

	preview := &SalePreview{
		MarginPolicyID: policy.ID,
		Percentage:     policy.Percentage,
	}

	for i, input := range lines {
		if !input.Quantity.IsPositive() {
			return nil, validationErrf("lines", "line %d: quantity must be positive, got %s", i+1, input.Quantity)
		}

		var name string
		var purchasePrice decimal.Decimal
		err := s.pool.QueryRow(ctx,
			"SELECT name, purchase_price FROM items WHERE id = $1 AND is_active = true",
			input.ItemID,
		).Scan(&name, &purchasePrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &NotFoundError{Entity: "item", ID: input.ItemID}
			}
			return nil, storageErr("resolve item", err)
		}

		unitPrice := SalePrice(purchasePrice, policy.Percentage)
		lineSubtotal := unitPrice.Mul(input.Quantity)
		preview.Lines = append(preview.Lines, PricedLine{
			ItemID:       input.ItemID,
			ItemName:     name,
			UnitPrice:    unitPrice,
			Quantity:     input.Quantity,
			LineSubtotal: lineSubtotal,
		})
		preview.Subtotal = preview.Subtotal.Add(lineSubtotal)
	}

	preview.Tax = SaleTax(preview.Subtotal)
	preview.Total = preview.Subtotal.Add(preview.Tax)
	return preview, nil
}
