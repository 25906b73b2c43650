// Package market implements the bounded random-walk price updater.
package market

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/TheWindows/bazaar/internal/store"
)

// Sell price is a fixed fraction of buy price (~5/6): selling recovers
// about 83.33% of what buying costs.
const sellRatio = 0.8333

// Policy configures automatic price updates.
type Policy struct {
	Enabled        bool    // default false: Tick is a no-op
	MaxFluctuation float64 // max relative change per tick, default 0.1
}

// PriceStore is the slice of the store the engine drives.
type PriceStore interface {
	Prices() (map[string]store.PriceEntry, error)
	UpdatePrices(buyPrice, sellPrice float64, itemID string) error
}

// Engine nudges every item's buy price by a bounded random percentage
// each tick, clamped to the item's [min, max] bounds.
type Engine struct {
	store  PriceStore
	policy Policy
	rng    *rand.Rand
}

// New creates a fluctuation engine. A nil rng gets a time-seeded one;
// tests inject their own for determinism.
func New(st PriceStore, policy Policy, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{store: st, policy: policy, rng: rng}
}

// Tick applies one round of price fluctuation to every item.
//
// Each item is drifted and persisted independently: a write failure on
// one item is logged and counted, and the remaining items still get
// their updates. The returned error summarizes any such failures.
func (e *Engine) Tick() error {
	if !e.policy.Enabled {
		return nil
	}

	prices, err := e.store.Prices()
	if err != nil {
		return fmt.Errorf("snapshot prices: %w", err)
	}

	failed := 0
	for itemID, entry := range prices {
		// Uniform draw at hundredths resolution: [-100, 100] / 1000
		// gives a relative change in [-0.1, 0.1] before scaling.
		fluctuation := float64(e.rng.Intn(201)-100) / 1000 * e.policy.MaxFluctuation

		newBuy := entry.BuyPrice * (1 + fluctuation)
		if newBuy > entry.MaxPrice {
			newBuy = entry.MaxPrice
		}
		if newBuy < entry.MinPrice {
			newBuy = entry.MinPrice
		}
		newSell := newBuy * sellRatio

		if err := e.store.UpdatePrices(newBuy, newSell, itemID); err != nil {
			slog.Warn("price update failed", "item", itemID, "error", err)
			failed++
		}
	}

	slog.Debug("price tick applied", "items", len(prices), "failed", failed)

	if failed > 0 {
		return fmt.Errorf("price tick: %d of %d item updates failed", failed, len(prices))
	}
	return nil
}
