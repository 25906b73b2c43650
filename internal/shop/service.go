// Package shop orchestrates buy/sell transactions between the price
// store, the economy wallet, and the ledger.
package shop

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/TheWindows/bazaar/internal/store"
)

var (
	// ErrUnknownItem is returned when no price row exists for an item.
	ErrUnknownItem = errors.New("unknown shop item")
	// ErrInvalidQuantity is returned for a zero or negative quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Service executes shop transactions.
type Service struct {
	store  *store.DB
	wallet Wallet
}

// NewService creates a shop service over the given store and wallet.
func NewService(db *store.DB, wallet Wallet) *Service {
	return &Service{store: db, wallet: wallet}
}

// Receipt describes one completed transaction.
type Receipt struct {
	ItemID    string       `json:"item_id"`
	Player    string       `json:"player"`
	Kind      store.TxKind `json:"type"`
	Quantity  int64        `json:"quantity"`
	UnitPrice float64      `json:"unit_price"`
	Total     float64      `json:"total"`
}

// Buy charges the player for quantity × current buy price and records
// the transaction. The ledger write happens after the debit and is
// best-effort: if it fails the funds are not returned, only logged —
// the economy and the ledger are not atomically linked.
func (s *Service) Buy(player, itemID string, quantity int64) (*Receipt, error) {
	return s.transact(player, itemID, store.TxBuy, quantity)
}

// Sell credits the player for quantity × current sell price and records
// the transaction, with the same best-effort ledger semantics as Buy.
func (s *Service) Sell(player, itemID string, quantity int64) (*Receipt, error) {
	return s.transact(player, itemID, store.TxSell, quantity)
}

func (s *Service) transact(player, itemID string, kind store.TxKind, quantity int64) (*Receipt, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	entry, err := s.store.Price(itemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnknownItem
	}
	if err != nil {
		return nil, fmt.Errorf("look up price for %s: %w", itemID, err)
	}

	unit := entry.BuyPrice
	if kind == store.TxSell {
		unit = entry.SellPrice
	}
	total := Total(unit, quantity)

	if kind == store.TxBuy {
		err = s.wallet.Debit(player, total)
	} else {
		err = s.wallet.Credit(player, total)
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.RecordTransaction(itemID, player, kind, quantity, total); err != nil {
		slog.Error("ledger write failed after funds moved",
			"item", itemID, "player", player, "type", kind, "error", err)
	}

	slog.Info("shop transaction",
		"item", itemID, "player", player, "type", kind, "quantity", quantity, "total", total)

	return &Receipt{
		ItemID:    itemID,
		Player:    player,
		Kind:      kind,
		Quantity:  quantity,
		UnitPrice: unit,
		Total:     total,
	}, nil
}

// Total computes quantity × unit price in decimal and rounds to cents,
// so repeated float multiplication never leaks sub-cent noise into what
// players are charged.
func Total(unitPrice float64, quantity int64) float64 {
	total := decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(quantity)).
		Round(2)
	f, _ := total.Float64()
	return f
}
