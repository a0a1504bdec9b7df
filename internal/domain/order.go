package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PendingOrder is a proposed but not yet confirmed trade. At most one exists
// at a time; a newer proposal silently supersedes an older one.
type PendingOrder struct {
	Side           Side
	Symbol         string
	ReferencePrice decimal.Decimal
	ProposedAt     time.Time
}

// String returns a human-readable representation.
func (o *PendingOrder) String() string {
	return fmt.Sprintf("%s %s @ %s", o.Side, o.Symbol, o.ReferencePrice.StringFixed(2))
}

// TradeRecord is one committed trade. Records are immutable and appended to
// the journal in execution order.
type TradeRecord struct {
	ID       string
	Side     Side
	Symbol   string
	Quantity decimal.Decimal
	// Price is the reference price the trade executed at.
	Price decimal.Decimal
	// Total is Quantity*Price in the quote currency.
	Total decimal.Decimal
	// RealizedPnL is set only for sells.
	RealizedPnL decimal.Decimal
	ExecutedAt  time.Time
}

// String returns a human-readable representation.
func (r *TradeRecord) String() string {
	s := fmt.Sprintf("%s %s of %s at %s", r.Side, r.Quantity, r.Symbol, r.Price.StringFixed(2))
	if r.Side == SideSell {
		s += fmt.Sprintf(" pnl %s", r.RealizedPnL.StringFixed(2))
	}
	return s
}
