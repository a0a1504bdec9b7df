package domain

import "github.com/pkg/errors"

// Ledger operation failures. All of them are recoverable and user-facing;
// callers match with errors.Is and translate to whatever surface they serve.
var (
	// ErrPriceUnavailable means no tick has arrived yet for the symbol.
	ErrPriceUnavailable = errors.New("live price unavailable for symbol")
	// ErrInsufficientPosition means selling more than held, or a never-bought symbol.
	ErrInsufficientPosition = errors.New("insufficient position")
	// ErrInsufficientFunds means the buy cost exceeds the cash balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidQuantity means a zero, negative or non-numeric quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrNoPendingOrder means confirming with nothing staged.
	ErrNoPendingOrder = errors.New("no pending order")
)

// ErrorCode returns a stable machine code for a ledger error, or empty string
// for errors outside the taxonomy.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrPriceUnavailable):
		return "price_unavailable"
	case errors.Is(err, ErrInsufficientPosition):
		return "insufficient_position"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrNoPendingOrder):
		return "no_pending_order"
	default:
		return ""
	}
}
