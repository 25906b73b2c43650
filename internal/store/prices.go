package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/TheWindows/bazaar/internal/catalog"
)

// ErrNotFound is returned when an item has no price row so callers can
// distinguish an unknown item from a storage failure.
var ErrNotFound = errors.New("item price not found")

// PriceEntry is the current price state for one item.
type PriceEntry struct {
	ItemID    string  `db:"item_id" json:"item_id"`
	Category  string  `db:"category" json:"category"`
	BuyPrice  float64 `db:"buy_price" json:"buy_price"`
	SellPrice float64 `db:"sell_price" json:"sell_price"`
	MinPrice  float64 `db:"min_price" json:"min_price"`
	MaxPrice  float64 `db:"max_price" json:"max_price"`
}

// Reconcile upserts every catalog item into the price table
// (insert-or-replace keyed by item id). Rows for items absent from the
// catalog are left untouched. All items go in one transaction, so a
// reader sees either the old or the new row for any item, never a
// half-written one. Safe to call repeatedly; identical input leaves the
// table unchanged.
func (db *DB) Reconcile(items []catalog.Item) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO item_prices
		(item_id, category, buy_price, sell_price, min_price, max_price)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.Exec(it.ID, it.Category, it.Buy, it.Sell, it.MinPrice, it.MaxPrice); err != nil {
			return fmt.Errorf("upsert item %s: %w", it.ID, err)
		}
	}

	return tx.Commit()
}

// Prices returns a point-in-time snapshot of the whole price table,
// keyed by item id.
func (db *DB) Prices() (map[string]PriceEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var rows []PriceEntry
	err := db.conn.Select(&rows,
		"SELECT item_id, category, buy_price, sell_price, min_price, max_price FROM item_prices")
	if err != nil {
		return nil, err
	}

	prices := make(map[string]PriceEntry, len(rows))
	for _, r := range rows {
		prices[r.ItemID] = r
	}
	return prices, nil
}

// Price looks up the price row for a single item.
func (db *DB) Price(itemID string) (PriceEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var entry PriceEntry
	err := db.conn.Get(&entry,
		"SELECT item_id, category, buy_price, sell_price, min_price, max_price FROM item_prices WHERE item_id = ?",
		itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return PriceEntry{}, ErrNotFound
	}
	if err != nil {
		return PriceEntry{}, err
	}
	return entry, nil
}

// UpdatePrices writes a new buy/sell pair for one item. Used by the
// fluctuation engine; bounds are the caller's responsibility.
func (db *DB) UpdatePrices(buyPrice, sellPrice float64, itemID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(
		"UPDATE item_prices SET buy_price = ?, sell_price = ? WHERE item_id = ?",
		buyPrice, sellPrice, itemID,
	)
	return err
}
