// Package ledger implements the paper-trading portfolio engine: cash balance,
// per-symbol positions with weighted average cost, realized P&L and the
// two-phase propose/confirm protocol that gates every mutation.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"papertrade/internal/domain"
)

// PriceSource provides the most recent observed price per symbol.
type PriceSource interface {
	LastPrice(symbol string) (decimal.Decimal, bool)
}

// Book is the single account of the session. All operations are serialized
// under one mutex, so propose, confirm and reads are atomic with respect to
// each other.
type Book struct {
	mu sync.Mutex

	logger *zap.Logger
	prices PriceSource

	initialBalance decimal.Decimal
	cash           decimal.Decimal
	positions      map[string]*domain.Position
	pending        *domain.PendingOrder
	journal        journal

	now func() time.Time
}

// NewBook creates a ledger book backed by the given price source.
func NewBook(initialBalance decimal.Decimal, prices PriceSource, logger *zap.Logger) (*Book, error) {
	if prices == nil {
		return nil, errors.New("price source is required")
	}
	if initialBalance.IsNegative() {
		return nil, errors.Errorf("initial balance must not be negative, got %s", initialBalance)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Book{
		logger:         logger,
		prices:         prices,
		initialBalance: initialBalance,
		cash:           initialBalance,
		positions:      make(map[string]*domain.Position),
		now:            time.Now,
	}, nil
}

// Propose stages a trade of symbol at its current live price. It fails with
// domain.ErrPriceUnavailable before the first tick for the symbol, and with
// domain.ErrInsufficientPosition when staging a sell of nothing. Any prior
// pending order is discarded: last propose wins.
func (b *Book) Propose(side domain.Side, symbol string) (*domain.PendingOrder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if side != domain.SideBuy && side != domain.SideSell {
		return nil, errors.Errorf("unknown side: %s", side)
	}

	price, ok := b.prices.LastPrice(symbol)
	if !ok || !price.IsPositive() {
		return nil, errors.Wrap(domain.ErrPriceUnavailable, symbol)
	}

	if side == domain.SideSell && !b.positions[symbol].IsPositive() {
		return nil, errors.Wrapf(domain.ErrInsufficientPosition, "no %s held", symbol)
	}

	if b.pending != nil {
		b.logger.Debug("superseding pending order", zap.String("old", b.pending.String()))
	}

	b.pending = &domain.PendingOrder{
		Side:           side,
		Symbol:         symbol,
		ReferencePrice: price,
		ProposedAt:     b.now(),
	}
	b.logger.Info("order staged",
		zap.String("side", side.String()),
		zap.String("symbol", symbol),
		zap.String("price", price.String()))

	out := *b.pending
	return &out, nil
}

// Confirm commits the pending order with the given quantity, settles cash and
// position, clears the staged order and appends the trade to the journal.
// Failed confirmations leave the staged order and the account untouched.
func (b *Book) Confirm(quantity decimal.Decimal) (*domain.TradeRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending == nil {
		return nil, domain.ErrNoPendingOrder
	}
	if !quantity.IsPositive() {
		return nil, errors.Wrapf(domain.ErrInvalidQuantity, "got %s", quantity)
	}

	order := b.pending
	total := quantity.Mul(order.ReferencePrice)

	record := domain.TradeRecord{
		ID:         uuid.NewString(),
		Side:       order.Side,
		Symbol:     order.Symbol,
		Quantity:   quantity,
		Price:      order.ReferencePrice,
		Total:      total,
		ExecutedAt: b.now(),
	}

	switch order.Side {
	case domain.SideBuy:
		if total.GreaterThan(b.cash) {
			return nil, errors.Wrapf(domain.ErrInsufficientFunds,
				"need %s, have %s", total.StringFixed(2), b.cash.StringFixed(2))
		}
		b.cash = b.cash.Sub(total)
		pos := b.positions[order.Symbol]
		if pos == nil {
			pos = &domain.Position{}
			b.positions[order.Symbol] = pos
		}
		pos.ApplyBuy(quantity, order.ReferencePrice)

	case domain.SideSell:
		pos := b.positions[order.Symbol]
		if pos == nil || quantity.GreaterThan(pos.Quantity) {
			return nil, errors.Wrapf(domain.ErrInsufficientPosition,
				"selling %s %s", quantity, order.Symbol)
		}
		b.cash = b.cash.Add(total)
		record.RealizedPnL = pos.ApplySell(quantity, order.ReferencePrice)

	default:
		return nil, errors.Errorf("unknown side: %s", order.Side)
	}

	b.pending = nil
	b.journal.append(record)

	b.logger.Info("trade executed",
		zap.String("id", record.ID),
		zap.String("side", record.Side.String()),
		zap.String("symbol", record.Symbol),
		zap.String("quantity", record.Quantity.String()),
		zap.String("price", record.Price.String()),
		zap.String("cash", b.cash.StringFixed(2)))

	out := record
	return &out, nil
}

// Cancel discards the pending order, if any. Idempotent, never errors.
func (b *Book) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending != nil {
		b.logger.Info("order cancelled", zap.String("order", b.pending.String()))
	}
	b.pending = nil
}

// Reset returns the account to its pristine initial state: initial cash
// balance, no positions, empty journal, nothing pending.
func (b *Book) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cash = b.initialBalance
	b.positions = make(map[string]*domain.Position)
	b.pending = nil
	b.journal.clear()
	b.logger.Info("account reset", zap.String("balance", b.cash.StringFixed(2)))
}

// Cash returns the current cash balance.
func (b *Book) Cash() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cash
}

// Position returns the holding for symbol; a never-bought symbol reads as a
// zero position.
func (b *Book) Position(symbol string) domain.Position {
	b.mu.Lock()
	defer b.mu.Unlock()

	if pos := b.positions[symbol]; pos != nil {
		return *pos
	}
	return domain.Position{Quantity: decimal.Zero, AvgCost: decimal.Zero}
}

// Positions returns a copy of every position ever opened, including those
// sold back down to zero.
func (b *Book) Positions() map[string]domain.Position {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]domain.Position, len(b.positions))
	for symbol, pos := range b.positions {
		out[symbol] = *pos
	}
	return out
}

// Pending returns a copy of the staged order, or nil when nothing is staged.
func (b *Book) Pending() *domain.PendingOrder {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pending == nil {
		return nil
	}
	out := *b.pending
	return &out
}

// Trades returns the journal in execution order.
func (b *Book) Trades() []domain.TradeRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.journal.snapshot()
}
