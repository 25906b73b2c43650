// Package store provides SQLite-based persistence for the bazaar:
// the item price table and the append-only transaction ledger.
package store

import (
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for price and ledger storage.
//
// The underlying store has no multi-writer guarantees beyond basic file
// locking, so a single mutex serializes all access through this handle.
type DB struct {
	mu   sync.Mutex
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
// A failure here is fatal to the bazaar: callers must not continue
// with a partially initialized store.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS item_prices (
		item_id TEXT PRIMARY KEY,
		category TEXT,
		buy_price REAL,
		sell_price REAL,
		min_price REAL,
		max_price REAL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id TEXT,
		player_name TEXT,
		type TEXT CHECK(type IN ('buy', 'sell')),
		amount INTEGER,
		total_price REAL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_item ON transactions(item_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_player ON transactions(player_name);
	CREATE INDEX IF NOT EXISTS idx_transactions_time ON transactions(timestamp);
	`
	_, err := db.conn.Exec(schema)
	return err
}
