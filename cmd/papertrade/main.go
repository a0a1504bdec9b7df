// Command papertrade runs the paper-trading service: a Kraken ticker feed,
// an in-memory portfolio ledger and a JSON API for the UI.
//
// Usage:
//
//	papertrade --config config.yaml
//	papertrade (uses built-in defaults)
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"papertrade/config"
	"papertrade/internal/feed"
	"papertrade/internal/ledger"
	"papertrade/internal/server"
	"papertrade/logger"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	board := feed.NewBoard()

	client, err := feed.NewClient(cfg.Feed.URL, cfg.Pairs, cfg.Feed.RedialWait, board, zlog.Named("feed"))
	if err != nil {
		zlog.Fatal("failed to create feed client", zap.Error(err))
	}

	book, err := ledger.NewBook(cfg.Account.InitialBalance, board, zlog.Named("ledger"))
	if err != nil {
		zlog.Fatal("failed to create ledger", zap.Error(err))
	}

	api := server.New(cfg.Server.Addr, board, book, zlog.Named("http"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return client.Run(ctx) })
	g.Go(func() error { return api.Start(ctx) })

	zlog.Info("started",
		zap.String("addr", cfg.Server.Addr),
		zap.String("feed", cfg.Feed.URL),
		zap.Int("pairs", len(cfg.Pairs)),
		zap.String("balance", cfg.Account.InitialBalance.StringFixed(2)))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Fatal("service stopped", zap.Error(err))
	}
	zlog.Info("shutdown complete")
}
