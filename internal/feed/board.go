package feed

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Board holds the last observed price per symbol. The feed client writes it,
// everything else only reads. A symbol is absent until its first tick.
type Board struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewBoard creates an empty price board.
func NewBoard() *Board {
	return &Board{prices: make(map[string]decimal.Decimal)}
}

// LastPrice returns the most recent price for symbol and whether a tick has
// been observed for it at all.
func (b *Board) LastPrice(symbol string) (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	price, ok := b.prices[symbol]
	return price, ok
}

// Snapshot returns a copy of the whole board.
func (b *Board) Snapshot() map[string]decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]decimal.Decimal, len(b.prices))
	for symbol, price := range b.prices {
		out[symbol] = price
	}
	return out
}

func (b *Board) set(symbol string, price decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prices[symbol] = price
}
