package store

import (
	"fmt"
	"strings"
)

// TxKind is the direction of a shop transaction.
type TxKind string

const (
	TxBuy  TxKind = "buy"
	TxSell TxKind = "sell"
)

// TransactionRecord is one immutable row of the ledger.
//
// Timestamp is the raw SQLite datetime string as stored
// ("2006-01-02 15:04:05", UTC); it is assigned by the database at
// insert time.
type TransactionRecord struct {
	ID         int64   `db:"id" json:"id"`
	ItemID     string  `db:"item_id" json:"item_id"`
	PlayerName string  `db:"player_name" json:"player_name"`
	Kind       TxKind  `db:"type" json:"type"`
	Amount     int64   `db:"amount" json:"amount"`
	TotalPrice float64 `db:"total_price" json:"total_price"`
	Timestamp  string  `db:"timestamp" json:"timestamp"`
}

// RecordTransaction appends one row to the ledger. It never validates
// against the price table: affordability and inventory checks happen
// before funds move, upstream of this call. TotalPrice is the amount
// actually charged or credited at transaction time, which may not match
// the current unit price.
func (db *DB) RecordTransaction(itemID, playerName string, kind TxKind, amount int64, totalPrice float64) error {
	if amount <= 0 {
		return fmt.Errorf("record transaction %s: amount must be positive, got %d", itemID, amount)
	}
	if kind != TxBuy && kind != TxSell {
		return fmt.Errorf("record transaction %s: unknown kind %q", itemID, kind)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(
		"INSERT INTO transactions (item_id, player_name, type, amount, total_price) VALUES (?, ?, ?, ?, ?)",
		itemID, playerName, string(kind), amount, totalPrice,
	)
	if err != nil {
		return fmt.Errorf("record transaction %s: %w", itemID, err)
	}
	return nil
}

// TransactionFilter narrows a ledger report. Zero values mean "any".
// Since/Until are SQLite datetime strings compared against the stored
// timestamp.
type TransactionFilter struct {
	ItemID     string
	PlayerName string
	Since      string
	Until      string
	Limit      int
}

// Transactions returns ledger rows matching the filter, newest first.
// The core never needs this; it exists for ad-hoc reporting.
func (db *DB) Transactions(f TransactionFilter) ([]TransactionRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var (
		where []string
		args  []any
	)
	if f.ItemID != "" {
		where = append(where, "item_id = ?")
		args = append(args, f.ItemID)
	}
	if f.PlayerName != "" {
		where = append(where, "player_name = ?")
		args = append(args, f.PlayerName)
	}
	if f.Since != "" {
		where = append(where, "timestamp >= ?")
		args = append(args, f.Since)
	}
	if f.Until != "" {
		where = append(where, "timestamp <= ?")
		args = append(args, f.Until)
	}

	query := "SELECT id, item_id, player_name, type, amount, total_price, timestamp FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var records []TransactionRecord
	if err := db.conn.Select(&records, query, args...); err != nil {
		return nil, err
	}
	return records, nil
}
