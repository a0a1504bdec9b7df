package feed

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// subscribeMessage is the outbound subscription request, sent once per
// established connection.
type subscribeMessage struct {
	Event        string           `json:"event"`
	Pair         []string         `json:"pair"`
	Subscription tickSubscription `json:"subscription"`
}

type tickSubscription struct {
	Name string `json:"name"`
}

func newSubscribeMessage(pairs []string) subscribeMessage {
	return subscribeMessage{
		Event:        "subscribe",
		Pair:         pairs,
		Subscription: tickSubscription{Name: "ticker"},
	}
}

// tickerPayload is the second element of a ticker frame. Only c (last trade
// closed) matters here: c[0] is the current price.
type tickerPayload struct {
	Close []string `json:"c"`
}

// parseTick extracts (symbol, price) from an inbound frame. Ticker frames are
// 4-element positional arrays: [channelID, payload, "ticker", "XBT/USD"].
// Anything else — heartbeats, subscription status events, malformed input —
// is not an error, just not a tick.
func parseTick(msg []byte) (string, decimal.Decimal, bool) {
	var parts []json.RawMessage
	if err := json.Unmarshal(msg, &parts); err != nil || len(parts) != 4 {
		return "", decimal.Decimal{}, false
	}

	var channel string
	if err := json.Unmarshal(parts[2], &channel); err != nil || channel != "ticker" {
		return "", decimal.Decimal{}, false
	}

	var symbol string
	if err := json.Unmarshal(parts[3], &symbol); err != nil || symbol == "" {
		return "", decimal.Decimal{}, false
	}

	var payload tickerPayload
	if err := json.Unmarshal(parts[1], &payload); err != nil || len(payload.Close) == 0 {
		return "", decimal.Decimal{}, false
	}

	price, err := decimal.NewFromString(payload.Close[0])
	if err != nil || !price.IsPositive() {
		return "", decimal.Decimal{}, false
	}

	return symbol, price, true
}
