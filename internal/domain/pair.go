// Package domain defines the core data structures of the paper-trading ledger.
package domain

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Pair is a tradable instrument pair, e.g. XBT/USD.
type Pair struct {
	// Base currency symbol.
	Base string
	// Quote currency symbol.
	Quote string
}

// ParsePair parses the feed form of a pair symbol ("XBT/USD").
func ParsePair(symbol string) (Pair, error) {
	parts := strings.Split(symbol, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, errors.Errorf("invalid pair symbol: %q", symbol)
	}
	return Pair{Base: parts[0], Quote: parts[1]}, nil
}

// Symbol returns the feed representation of the pair.
func (p Pair) Symbol() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

func (p Pair) String() string {
	return p.Symbol()
}
