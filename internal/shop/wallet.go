package shop

import (
	"errors"
	"sync"
)

// ErrInsufficientFunds is returned when a debit exceeds the balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Wallet is the external economy system the shop debits and credits.
// The real implementation lives outside this process; the shop only
// moves money through this interface and never sees account internals.
type Wallet interface {
	Balance(player string) (float64, error)
	Debit(player string, amount float64) error
	Credit(player string, amount float64) error
}

// MemoryWallet is an in-process Wallet for tests and standalone runs.
type MemoryWallet struct {
	mu       sync.Mutex
	balances map[string]float64
}

// NewMemoryWallet creates an empty in-memory wallet.
func NewMemoryWallet() *MemoryWallet {
	return &MemoryWallet{balances: make(map[string]float64)}
}

// Balance returns the player's balance; unknown players hold zero.
func (w *MemoryWallet) Balance(player string) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[player], nil
}

// Debit removes funds, failing with ErrInsufficientFunds if the player
// cannot cover the amount.
func (w *MemoryWallet) Debit(player string, amount float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[player] < amount {
		return ErrInsufficientFunds
	}
	w.balances[player] -= amount
	return nil
}

// Credit adds funds to the player's balance.
func (w *MemoryWallet) Credit(player string, amount float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[player] += amount
	return nil
}
