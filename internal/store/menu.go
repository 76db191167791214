package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/cart"
)

type MenuStore struct {
	db *sql.DB
}

func NewMenuStore(db *sql.DB) *MenuStore {
	return &MenuStore{db: db}
}

// MenuItem loads an orderable menu entry with its bulk price tiers, plus the
// name of its vendor. Items of vendors that are not approved are not found.
func (s *MenuStore) MenuItem(ctx context.Context, id string) (cart.MenuItem, string, error) {
	// 1. --- Load the item ---
	var (
		m          cart.MenuItem
		vendorID   int64
		vendorName string
		maxQty     sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT m.id, m.vendor_id, v.name, m.name, m.description, m.price, m.min_order_quantity, m.max_order_quantity
		FROM menu_items m
		JOIN vendors v ON v.id = m.vendor_id
		WHERE m.id = ? AND m.is_available = 1 AND v.status = 'approved'`, id).
		Scan(&m.ID, &vendorID, &vendorName, &m.Name, &m.Description, &m.Price, &m.MinOrderQuantity, &maxQty)
	if errors.Is(err, sql.ErrNoRows) {
		return cart.MenuItem{}, "", apperr.NotFound("Menu item not found")
	}
	if err != nil {
		return cart.MenuItem{}, "", backendErr("Failed to load menu item", err)
	}
	m.VendorID = strconv.FormatInt(vendorID, 10)
	if maxQty.Valid {
		m.MaxOrderQuantity = int(maxQty.Int64)
	}

	// 2. --- Load its price tiers ---
	rows, err := s.db.QueryContext(ctx,
		"SELECT min_quantity, price FROM menu_item_price_tiers WHERE menu_item_id = ? ORDER BY min_quantity",
		id)
	if err != nil {
		return cart.MenuItem{}, "", backendErr("Failed to load menu item", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t cart.BulkTier
		if err := rows.Scan(&t.MinQuantity, &t.Price); err != nil {
			return cart.MenuItem{}, "", backendErr("Failed to load menu item", err)
		}
		m.BulkTiers = append(m.BulkTiers, t)
	}
	if err := rows.Err(); err != nil {
		return cart.MenuItem{}, "", backendErr("Failed to load menu item", err)
	}
	return m, vendorName, nil
}
