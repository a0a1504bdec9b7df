package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePair(t *testing.T) {
	pair, err := ParsePair("XBT/USD")
	require.NoError(t, err)
	assert.Equal(t, Pair{Base: "XBT", Quote: "USD"}, pair)
	assert.Equal(t, "XBT/USD", pair.Symbol())

	for _, bad := range []string{"", "XBT", "XBT/", "/USD", "XBT/USD/EUR"} {
		_, err := ParsePair(bad)
		assert.Error(t, err, "expected error for %q", bad)
	}
}

func TestParseSide(t *testing.T) {
	side, ok := ParseSide("buy")
	assert.True(t, ok)
	assert.Equal(t, SideBuy, side)

	side, ok = ParseSide("sell")
	assert.True(t, ok)
	assert.Equal(t, SideSell, side)

	_, ok = ParseSide("hold")
	assert.False(t, ok)

	assert.Equal(t, "buy", SideBuy.String())
	assert.Equal(t, "sell", SideSell.String())
}
