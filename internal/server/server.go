// Package server exposes the ledger and the price board over a small JSON
// API consumed by the UI layer.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"papertrade/internal/domain"
)

// priceReader is the read side of the price board.
type priceReader interface {
	Snapshot() map[string]decimal.Decimal
}

// book is the ledger surface the API needs.
type book interface {
	Propose(side domain.Side, symbol string) (*domain.PendingOrder, error)
	Confirm(quantity decimal.Decimal) (*domain.TradeRecord, error)
	Cancel()
	Reset()
	Cash() decimal.Decimal
	Positions() map[string]domain.Position
	Pending() *domain.PendingOrder
	Trades() []domain.TradeRecord
}

// Server serves the HTTP API.
type Server struct {
	addr   string
	prices priceReader
	book   book
	logger *zap.Logger
}

// New creates the API server.
func New(addr string, prices priceReader, b book, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{addr: addr, prices: prices, book: b, logger: logger}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http api listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/prices", s.handlePrices)
	mux.HandleFunc("GET /api/account", s.handleAccount)
	mux.HandleFunc("GET /api/transactions", s.handleTransactions)
	mux.HandleFunc("POST /api/orders", s.handlePropose)
	mux.HandleFunc("POST /api/orders/confirm", s.handleConfirm)
	mux.HandleFunc("POST /api/orders/cancel", s.handleCancel)
	mux.HandleFunc("POST /api/account/reset", s.handleReset)
	return mux
}

func (s *Server) handlePrices(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.prices.Snapshot()
	out := make(map[string]string, len(snapshot))
	for symbol, price := range snapshot {
		out[symbol] = price.StringFixed(2)
	}
	writeJSON(w, http.StatusOK, out)
}

type positionDTO struct {
	Quantity string `json:"quantity"`
	AvgCost  string `json:"avg_cost"`
}

type pendingDTO struct {
	Side           string    `json:"side"`
	Symbol         string    `json:"symbol"`
	ReferencePrice string    `json:"reference_price"`
	ProposedAt     time.Time `json:"proposed_at"`
}

type accountDTO struct {
	Balance   string                 `json:"balance"`
	Positions map[string]positionDTO `json:"positions"`
	Pending   *pendingDTO            `json:"pending,omitempty"`
}

func (s *Server) handleAccount(w http.ResponseWriter, _ *http.Request) {
	positions := s.book.Positions()
	out := accountDTO{
		Balance:   s.book.Cash().StringFixed(2),
		Positions: make(map[string]positionDTO, len(positions)),
	}
	for symbol, pos := range positions {
		out.Positions[symbol] = positionDTO{
			Quantity: pos.Quantity.String(),
			AvgCost:  pos.AvgCost.StringFixed(2),
		}
	}
	if pending := s.book.Pending(); pending != nil {
		out.Pending = newPendingDTO(pending)
	}
	writeJSON(w, http.StatusOK, out)
}

type tradeDTO struct {
	ID          string    `json:"id"`
	Side        string    `json:"side"`
	Symbol      string    `json:"symbol"`
	Quantity    string    `json:"quantity"`
	Price       string    `json:"price"`
	Total       string    `json:"total"`
	RealizedPnL string    `json:"realized_pnl,omitempty"`
	ExecutedAt  time.Time `json:"executed_at"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, _ *http.Request) {
	trades := s.book.Trades()
	out := make([]tradeDTO, 0, len(trades))
	for i := range trades {
		out = append(out, newTradeDTO(&trades[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type proposeRequest struct {
	Side   string `json:"side"`
	Symbol string `json:"symbol"`
}

func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	var req proposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	side, ok := domain.ParseSide(req.Side)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "side must be buy or sell")
		return
	}
	if _, err := domain.ParsePair(req.Symbol); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "symbol must be of the form BASE/QUOTE")
		return
	}

	pending, err := s.book.Propose(side, req.Symbol)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPendingDTO(pending))
}

type confirmRequest struct {
	Quantity string `json:"quantity"`
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return
	}

	// Non-numeric input is the same user mistake as a non-positive quantity.
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		s.writeLedgerError(w, domain.ErrInvalidQuantity)
		return
	}

	record, err := s.book.Confirm(quantity)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTradeDTO(record))
}

func (s *Server) handleCancel(w http.ResponseWriter, _ *http.Request) {
	s.book.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.book.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func newPendingDTO(o *domain.PendingOrder) *pendingDTO {
	return &pendingDTO{
		Side:           o.Side.String(),
		Symbol:         o.Symbol,
		ReferencePrice: o.ReferencePrice.StringFixed(2),
		ProposedAt:     o.ProposedAt,
	}
}

func newTradeDTO(r *domain.TradeRecord) tradeDTO {
	dto := tradeDTO{
		ID:         r.ID,
		Side:       r.Side.String(),
		Symbol:     r.Symbol,
		Quantity:   r.Quantity.String(),
		Price:      r.Price.StringFixed(2),
		Total:      r.Total.StringFixed(2),
		ExecutedAt: r.ExecutedAt,
	}
	if r.Side == domain.SideSell {
		dto.RealizedPnL = r.RealizedPnL.StringFixed(2)
	}
	return dto
}

type errorDTO struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeLedgerError maps the ledger error taxonomy onto HTTP statuses.
func (s *Server) writeLedgerError(w http.ResponseWriter, err error) {
	code := domain.ErrorCode(err)
	status := http.StatusBadRequest
	switch code {
	case "no_pending_order", "price_unavailable":
		status = http.StatusConflict
	case "insufficient_funds", "insufficient_position":
		status = http.StatusUnprocessableEntity
	case "":
		s.logger.Error("unexpected ledger error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	writeError(w, status, code, err.Error())
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorDTO{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
