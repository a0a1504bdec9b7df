// Package feed connects to the Kraken public ticker websocket and keeps a
// board of last observed prices per trading pair.
package feed

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultURL is the Kraken public websocket endpoint.
const DefaultURL = "wss://ws.kraken.com/"

// DefaultRedialWait is the fixed delay before re-establishing a dropped
// connection. Retries are unbounded and the delay is constant.
const DefaultRedialWait = 5 * time.Second

// Client maintains the websocket subscription for a fixed basket of pairs and
// publishes every tick onto the board. Transport failures never escape Run:
// the client redials and resubscribes on its own.
type Client struct {
	url        string
	pairs      []string
	redialWait time.Duration
	board      *Board
	logger     *zap.Logger
}

// NewClient creates a feed client for the given basket of pair symbols.
func NewClient(url string, pairs []string, redialWait time.Duration, board *Board, logger *zap.Logger) (*Client, error) {
	if board == nil {
		return nil, errors.New("board is required")
	}
	if len(pairs) == 0 {
		return nil, errors.New("at least one pair is required")
	}
	if url == "" {
		url = DefaultURL
	}
	if redialWait <= 0 {
		redialWait = DefaultRedialWait
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		url:        url,
		pairs:      pairs,
		redialWait: redialWait,
		board:      board,
		logger:     logger,
	}, nil
}

// Run dials, subscribes and consumes ticks until ctx is cancelled. Every
// dropped or failed connection is retried after the fixed redial delay.
func (c *Client) Run(ctx context.Context) error {
	for {
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("feed connect failed", zap.String("url", c.url), zap.Error(err))
			if err := c.wait(ctx); err != nil {
				return err
			}
			continue
		}

		c.logger.Info("feed connected", zap.String("url", c.url), zap.Int("pairs", len(c.pairs)))
		c.readLoop(ctx, conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("feed disconnected, redialing", zap.Duration("wait", c.redialWait))
		if err := c.wait(ctx); err != nil {
			return err
		}
	}
}

// dial establishes the connection and sends the subscription request for the
// whole basket.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "dial feed")
	}

	if err := conn.WriteJSON(newSubscribeMessage(c.pairs)); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "subscribe")
	}

	return conn, nil
}

// readLoop consumes frames until the connection breaks or ctx is cancelled.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("feed read error", zap.Error(err))
			}
			return
		}

		symbol, price, ok := parseTick(msg)
		if !ok {
			continue
		}
		c.board.set(symbol, price)
	}
}

func (c *Client) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.redialWait):
		return nil
	}
}
