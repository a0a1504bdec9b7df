package domain

import "github.com/shopspring/decimal"

// Position is the current holding of one symbol.
//
// AvgCost is the volume-weighted average price paid per unit, updated only by
// buys. When Quantity drops to zero the average is deliberately left as it
// was: the next buy recomputes the weighted average with a zero old quantity,
// so the stale value never leaks into new cost basis.
type Position struct {
	Quantity decimal.Decimal
	AvgCost  decimal.Decimal
}

// ApplyBuy folds a fill of qty units at price into the weighted average.
func (p *Position) ApplyBuy(qty, price decimal.Decimal) {
	total := p.AvgCost.Mul(p.Quantity).Add(qty.Mul(price))
	p.Quantity = p.Quantity.Add(qty)
	p.AvgCost = total.Div(p.Quantity)
}

// ApplySell reduces the holding and returns the realized profit or loss
// against the average cost. The average itself is untouched.
func (p *Position) ApplySell(qty, price decimal.Decimal) decimal.Decimal {
	p.Quantity = p.Quantity.Sub(qty)
	return price.Sub(p.AvgCost).Mul(qty)
}

// IsPositive reports whether the position holds any quantity.
func (p *Position) IsPositive() bool {
	return p != nil && p.Quantity.IsPositive()
}
