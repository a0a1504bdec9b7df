package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrade/internal/domain"
)

type stubPrices map[string]decimal.Decimal

func (s stubPrices) LastPrice(symbol string) (decimal.Decimal, bool) {
	price, ok := s[symbol]
	return price, ok
}

func newTestBook(t *testing.T, prices stubPrices) *Book {
	t.Helper()
	book, err := NewBook(decimal.RequireFromString("10000.00"), prices, nil)
	require.NoError(t, err)
	return book
}

func TestBuyThenSell(t *testing.T) {
	prices := stubPrices{"XBT/USD": decimal.NewFromInt(50000)}
	book := newTestBook(t, prices)

	pending, err := book.Propose(domain.SideBuy, "XBT/USD")
	require.NoError(t, err)
	assert.Equal(t, domain.SideBuy, pending.Side)
	assert.True(t, pending.ReferencePrice.Equal(decimal.NewFromInt(50000)))

	record, err := book.Confirm(decimal.RequireFromString("0.1"))
	require.NoError(t, err)
	assert.Equal(t, "XBT/USD", record.Symbol)
	assert.True(t, record.Total.Equal(decimal.NewFromInt(5000)))
	assert.NotEmpty(t, record.ID)

	assert.Equal(t, "5000.00", book.Cash().StringFixed(2))
	pos := book.Position("XBT/USD")
	assert.True(t, pos.Quantity.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, pos.AvgCost.Equal(decimal.NewFromInt(50000)))
	require.Len(t, book.Trades(), 1)
	assert.Nil(t, book.Pending())

	// price moves up, sell everything
	prices["XBT/USD"] = decimal.NewFromInt(60000)

	_, err = book.Propose(domain.SideSell, "XBT/USD")
	require.NoError(t, err)
	record, err = book.Confirm(decimal.RequireFromString("0.1"))
	require.NoError(t, err)

	assert.Equal(t, "11000.00", book.Cash().StringFixed(2))
	assert.Equal(t, "1000.00", record.RealizedPnL.StringFixed(2))

	pos = book.Position("XBT/USD")
	assert.True(t, pos.Quantity.IsZero())
	// average cost stays as it was, only buys move it
	assert.True(t, pos.AvgCost.Equal(decimal.NewFromInt(50000)))
	assert.Len(t, book.Trades(), 2)
}

func TestProposeUnknownSide(t *testing.T) {
	book := newTestBook(t, stubPrices{"XBT/USD": decimal.NewFromInt(50000)})

	_, err := book.Propose(domain.Side(7), "XBT/USD")
	require.Error(t, err)
	assert.Nil(t, book.Pending())

	// nothing staged, so nothing can settle and nothing is journaled
	_, err = book.Confirm(decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNoPendingOrder)
	assert.Equal(t, "10000.00", book.Cash().StringFixed(2))
	assert.Empty(t, book.Trades())
}

func TestProposeSellNeverBought(t *testing.T) {
	book := newTestBook(t, stubPrices{"ETH/USD": decimal.NewFromInt(3000)})

	_, err := book.Propose(domain.SideSell, "ETH/USD")
	assert.ErrorIs(t, err, domain.ErrInsufficientPosition)
	assert.Nil(t, book.Pending())
}

func TestProposeBeforeFirstTick(t *testing.T) {
	book := newTestBook(t, stubPrices{})

	_, err := book.Propose(domain.SideBuy, "XBT/USD")
	assert.ErrorIs(t, err, domain.ErrPriceUnavailable)
}

func TestConfirmInvalidQuantity(t *testing.T) {
	book := newTestBook(t, stubPrices{"XBT/USD": decimal.NewFromInt(50000)})

	_, err := book.Propose(domain.SideBuy, "XBT/USD")
	require.NoError(t, err)

	for _, quantity := range []string{"-5", "0"} {
		_, err = book.Confirm(decimal.RequireFromString(quantity))
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}

	// nothing mutated, order still staged
	assert.Equal(t, "10000.00", book.Cash().StringFixed(2))
	assert.Empty(t, book.Trades())
	assert.NotNil(t, book.Pending())
}

func TestConfirmWithoutPending(t *testing.T) {
	book := newTestBook(t, stubPrices{})

	_, err := book.Confirm(decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNoPendingOrder)
}

func TestInsufficientFunds(t *testing.T) {
	book := newTestBook(t, stubPrices{"XBT/USD": decimal.NewFromInt(50000)})

	_, err := book.Propose(domain.SideBuy, "XBT/USD")
	require.NoError(t, err)

	_, err = book.Confirm(decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, "10000.00", book.Cash().StringFixed(2))
	assert.NotNil(t, book.Pending(), "failed confirm keeps the order staged")
}

func TestBuySpendingExactBalance(t *testing.T) {
	book := newTestBook(t, stubPrices{"XBT/USD": decimal.NewFromInt(50000)})

	_, err := book.Propose(domain.SideBuy, "XBT/USD")
	require.NoError(t, err)

	// cost == balance is allowed, balance never goes negative
	_, err = book.Confirm(decimal.RequireFromString("0.2"))
	require.NoError(t, err)
	assert.True(t, book.Cash().IsZero())
}

func TestSellMoreThanHeld(t *testing.T) {
	prices := stubPrices{"XBT/USD": decimal.NewFromInt(50000)}
	book := newTestBook(t, prices)

	_, err := book.Propose(domain.SideBuy, "XBT/USD")
	require.NoError(t, err)
	_, err = book.Confirm(decimal.RequireFromString("0.1"))
	require.NoError(t, err)

	_, err = book.Propose(domain.SideSell, "XBT/USD")
	require.NoError(t, err)
	_, err = book.Confirm(decimal.RequireFromString("0.2"))
	assert.ErrorIs(t, err, domain.ErrInsufficientPosition)

	pos := book.Position("XBT/USD")
	assert.True(t, pos.Quantity.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, "5000.00", book.Cash().StringFixed(2))
}

func TestWeightedAverageCost(t *testing.T) {
	prices := stubPrices{"ETH/USD": decimal.NewFromInt(100)}
	book := newTestBook(t, prices)

	_, err := book.Propose(domain.SideBuy, "ETH/USD")
	require.NoError(t, err)
	_, err = book.Confirm(decimal.NewFromInt(1))
	require.NoError(t, err)

	prices["ETH/USD"] = decimal.NewFromInt(200)
	_, err = book.Propose(domain.SideBuy, "ETH/USD")
	require.NoError(t, err)
	_, err = book.Confirm(decimal.NewFromInt(3))
	require.NoError(t, err)

	pos := book.Position("ETH/USD")
	assert.True(t, pos.Quantity.Equal(decimal.NewFromInt(4)))
	// (1*100 + 3*200) / 4 = 175
	assert.True(t, pos.AvgCost.Equal(decimal.NewFromInt(175)), "got %s", pos.AvgCost)
}

func TestRealizedPnLSign(t *testing.T) {
	tests := []struct {
		name      string
		sellPrice int64
		wantSign  int
	}{
		{"sell above average is a profit", 150, 1},
		{"sell below average is a loss", 50, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prices := stubPrices{"ETH/USD": decimal.NewFromInt(100)}
			book := newTestBook(t, prices)

			_, err := book.Propose(domain.SideBuy, "ETH/USD")
			require.NoError(t, err)
			_, err = book.Confirm(decimal.NewFromInt(2))
			require.NoError(t, err)

			prices["ETH/USD"] = decimal.NewFromInt(tc.sellPrice)
			_, err = book.Propose(domain.SideSell, "ETH/USD")
			require.NoError(t, err)
			record, err := book.Confirm(decimal.NewFromInt(1))
			require.NoError(t, err)

			assert.Equal(t, tc.wantSign, record.RealizedPnL.Sign())
		})
	}
}

func TestStaleAverageDropsOutOnRebuy(t *testing.T) {
	prices := stubPrices{"SOL/USD": decimal.NewFromInt(100)}
	book := newTestBook(t, prices)

	_, err := book.Propose(domain.SideBuy, "SOL/USD")
	require.NoError(t, err)
	_, err = book.Confirm(decimal.NewFromInt(1))
	require.NoError(t, err)

	prices["SOL/USD"] = decimal.NewFromInt(150)
	_, err = book.Propose(domain.SideSell, "SOL/USD")
	require.NoError(t, err)
	_, err = book.Confirm(decimal.NewFromInt(1))
	require.NoError(t, err)

	// fully sold: the stale average remains readable
	assert.True(t, book.Position("SOL/USD").AvgCost.Equal(decimal.NewFromInt(100)))

	// the next buy computes a fresh weighted average from zero quantity
	prices["SOL/USD"] = decimal.NewFromInt(300)
	_, err = book.Propose(domain.SideBuy, "SOL/USD")
	require.NoError(t, err)
	_, err = book.Confirm(decimal.NewFromInt(2))
	require.NoError(t, err)

	assert.True(t, book.Position("SOL/USD").AvgCost.Equal(decimal.NewFromInt(300)))
}

func TestLastProposeWins(t *testing.T) {
	prices := stubPrices{
		"ETH/USD": decimal.NewFromInt(3000),
		"XBT/USD": decimal.NewFromInt(50000),
	}
	book := newTestBook(t, prices)

	_, err := book.Propose(domain.SideBuy, "ETH/USD")
	require.NoError(t, err)
	_, err = book.Propose(domain.SideBuy, "XBT/USD")
	require.NoError(t, err)

	record, err := book.Confirm(decimal.RequireFromString("0.1"))
	require.NoError(t, err)
	assert.Equal(t, "XBT/USD", record.Symbol)
	require.Len(t, book.Trades(), 1)
}

func TestCancelIsIdempotent(t *testing.T) {
	book := newTestBook(t, stubPrices{"XBT/USD": decimal.NewFromInt(50000)})

	book.Cancel()
	book.Cancel()

	_, err := book.Propose(domain.SideBuy, "XBT/USD")
	require.NoError(t, err)
	book.Cancel()
	assert.Nil(t, book.Pending())

	_, err = book.Confirm(decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNoPendingOrder)
}

func TestReset(t *testing.T) {
	prices := stubPrices{"XBT/USD": decimal.NewFromInt(50000)}
	book := newTestBook(t, prices)

	_, err := book.Propose(domain.SideBuy, "XBT/USD")
	require.NoError(t, err)
	_, err = book.Confirm(decimal.RequireFromString("0.1"))
	require.NoError(t, err)
	_, err = book.Propose(domain.SideBuy, "XBT/USD")
	require.NoError(t, err)

	book.Reset()

	assert.Equal(t, "10000.00", book.Cash().StringFixed(2))
	assert.Empty(t, book.Positions())
	assert.Empty(t, book.Trades())
	assert.Nil(t, book.Pending())
}

// Display rounding is 2 fractional digits with ties going away from zero.
func TestRoundingTieBreak(t *testing.T) {
	assert.Equal(t, "2.35", decimal.RequireFromString("2.345").StringFixed(2))
	assert.Equal(t, "-2.35", decimal.RequireFromString("-2.345").StringFixed(2))
}
