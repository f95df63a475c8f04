package core

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogService provides reference-data operations for items, units, and
// vendors. These are single-row reads and writes with no cross-entity
// invariants; the transactional engines resolve catalog rows themselves,
// inside their own transactions.
type CatalogService interface {
	CreateItem(ctx context.Context, input ItemInput) (*Item, error)
	UpdateItem(ctx context.Context, itemID int64, input ItemInput) (*Item, error)
	GetItem(ctx context.Context, itemID int64) (*Item, error)
	GetItems(ctx context.Context) ([]Item, error)

	CreateUnit(ctx context.Context, name string) (*Unit, error)
	GetUnits(ctx context.Context) ([]Unit, error)

	CreateVendor(ctx context.Context, input VendorInput) (*Vendor, error)
	GetVendor(ctx context.Context, vendorID int64) (*Vendor, error)
	GetVendors(ctx context.Context) ([]Vendor, error)
}

type catalogService struct {
	pool *pgxpool.Pool
}

// NewCatalogService constructs a CatalogService backed by PostgreSQL.
func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

func (s *catalogService) CreateItem(ctx context.Context, input ItemInput) (*Item, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	var unitExists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM units WHERE id = $1 AND is_active = true)",
		input.UnitID,
	).Scan(&unitExists); err != nil {
		return nil, storageErr("validate unit", err)
	}
	if !unitExists {
		return nil, &NotFoundError{Entity: "unit", ID: input.UnitID}
	}

	var itemID int64
	if err := s.pool.QueryRow(ctx, `
		INSERT INTO items (name, kind, unit_id, purchase_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		input.Name, input.Kind, input.UnitID, input.PurchasePrice,
	).Scan(&itemID); err != nil {
		return nil, storageErr("insert item", err)
	}

	return s.GetItem(ctx, itemID)
}

func (s *catalogService) UpdateItem(ctx context.Context, itemID int64, input ItemInput) (*Item, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE items
		SET name = $1, kind = $2, unit_id = $3, purchase_price = $4
		WHERE id = $5`,
		input.Name, input.Kind, input.UnitID, input.PurchasePrice, itemID,
	)
	if err != nil {
		return nil, storageErr("update item", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &NotFoundError{Entity: "item", ID: itemID}
	}

	return s.GetItem(ctx, itemID)
}

func (s *catalogService) GetItem(ctx context.Context, itemID int64) (*Item, error) {
	var it Item
	err := s.pool.QueryRow(ctx, `
		SELECT i.id, i.name, i.kind, i.unit_id, u.name, i.purchase_price, i.is_active, i.created_at
		FROM items i
		JOIN units u ON u.id = i.unit_id
		WHERE i.id = $1`,
		itemID,
	).Scan(&it.ID, &it.Name, &it.Kind, &it.UnitID, &it.UnitName, &it.PurchasePrice, &it.IsActive, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "item", ID: itemID}
		}
		return nil, storageErr("get item", err)
	}
	return &it, nil
}

func (s *catalogService) GetItems(ctx context.Context) ([]Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.name, i.kind, i.unit_id, u.name, i.purchase_price, i.is_active, i.created_at
		FROM items i
		JOIN units u ON u.id = i.unit_id
		WHERE i.is_active = true
		ORDER BY i.name`,
	)
	if err != nil {
		return nil, storageErr("list items", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Kind, &it.UnitID, &it.UnitName,
			&it.PurchasePrice, &it.IsActive, &it.CreatedAt); err != nil {
			return nil, storageErr("scan item", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *catalogService) CreateUnit(ctx context.Context, name string) (*Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErrf("name", "unit name is required")
	}

	var u Unit
	err := s.pool.QueryRow(ctx, `
		INSERT INTO units (name) VALUES ($1)
		RETURNING id, name, is_active, created_at`,
		name,
	).Scan(&u.ID, &u.Name, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, storageErr("insert unit", err)
	}
	return &u, nil
}

func (s *catalogService) GetUnits(ctx context.Context) ([]Unit, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, is_active, created_at FROM units WHERE is_active = true ORDER BY name")
	if err != nil {
		return nil, storageErr("list units", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, storageErr("scan unit", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (s *catalogService) CreateVendor(ctx context.Context, input VendorInput) (*Vendor, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, validationErrf("name", "vendor name is required")
	}

	var v Vendor
	err := s.pool.QueryRow(ctx, `
		INSERT INTO vendors (name, is_registered) VALUES ($1, $2)
		RETURNING id, name, is_registered, is_active, created_at`,
		strings.TrimSpace(input.Name), input.IsRegistered,
	).Scan(&v.ID, &v.Name, &v.IsRegistered, &v.IsActive, &v.CreatedAt)
	if err != nil {
		return nil, storageErr("insert vendor", err)
	}
	return &v, nil
}

func (s *catalogService) GetVendor(ctx context.Context, vendorID int64) (*Vendor, error) {
	var v Vendor
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, is_registered, is_active, created_at FROM vendors WHERE id = $1",
		vendorID,
	).Scan(&v.ID, &v.Name, &v.IsRegistered, &v.IsActive, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "vendor", ID: vendorID}
		}
		return nil, storageErr("get vendor", err)
	}
	return &v, nil
}

func (s *catalogService) GetVendors(ctx context.Context) ([]Vendor, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, is_registered, is_active, created_at FROM vendors WHERE is_active = true ORDER BY name")
	if err != nil {
		return nil, storageErr("list vendors", err)
	}
	defer rows.Close()

	var vendors []Vendor
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.IsRegistered, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, storageErr("scan vendor", err)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func validateItemInput(input ItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return validationErrf("name", "item name is required")
	}
	if input.Kind != ItemGood && input.Kind != ItemService {
		return validationErrf("kind", "must be %q or %q", ItemGood, ItemService)
	}
	if input.UnitID <= 0 {
		return validationErrf("unit_id", "must be a positive id")
	}
	if input.PurchasePrice.IsNegative() {
		return validationErrf("purchase_price", "cannot be negative, got %s", input.PurchasePrice)
	}
	return nil
}
