// Package config loads service configuration from an optional YAML file,
// falling back to defaults that make the binary runnable out of the box.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"papertrade/internal/domain"
)

// DefaultPairs is the fixed basket of 20 trading pairs the feed subscribes
// to. The basket is static configuration, not user-editable at runtime.
var DefaultPairs = []string{
	"XBT/USD", "ETH/USD", "USDT/USD", "DOT/USD", "USDC/USD",
	"SOL/USD", "XDG/USD", "TRX/USD", "ADA/USD", "WBTC/USD",
	"LINK/USD", "USDS/USD", "AVAX/USD", "TON/USD", "XMR/USD",
	"APT/USD", "SUI/USD", "OM/USD", "BCH/USD", "LTC/USD",
}

const (
	defaultFeedURL        = "wss://ws.kraken.com/"
	defaultRedialWait     = 5 * time.Second
	defaultInitialBalance = "10000.00"
	defaultServerAddr     = ":8080"
)

// Config is the resolved service configuration.
type Config struct {
	Feed    FeedConfig
	Account AccountConfig
	Server  ServerConfig
	Log     LogConfig
	Pairs   []string
}

// FeedConfig configures the websocket price feed.
type FeedConfig struct {
	URL        string
	RedialWait time.Duration
}

// AccountConfig configures the paper account.
type AccountConfig struct {
	InitialBalance decimal.Decimal
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	OutputFile string `yaml:"output_file"`
}

type configTmp struct {
	Feed struct {
		URL        string        `yaml:"url"`
		RedialWait time.Duration `yaml:"redial_wait"`
	} `yaml:"feed"`
	Account struct {
		InitialBalance string `yaml:"initial_balance"`
	} `yaml:"account"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log   LogConfig `yaml:"log"`
	Pairs []string  `yaml:"pairs"`
}

// Get resolves configuration from the -config flag, or defaults when the
// flag is absent.
func Get() (Config, error) {
	path := flag.String("config", "", "path to yaml config")
	flag.Parse()

	if *path == "" {
		return defaults(), nil
	}
	return Load(*path)
}

// Load reads and validates a YAML config file. Absent fields keep their
// defaults.
func Load(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, fmt.Errorf("parse yaml config: %w", err)
	}

	cfg := defaults()

	if tmp.Feed.URL != "" {
		cfg.Feed.URL = tmp.Feed.URL
	}
	if tmp.Feed.RedialWait > 0 {
		cfg.Feed.RedialWait = tmp.Feed.RedialWait
	}
	if tmp.Account.InitialBalance != "" {
		balance, err := decimal.NewFromString(tmp.Account.InitialBalance)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'initial_balance' param in yaml config: %w", err)
		}
		if balance.IsNegative() {
			return Config{}, fmt.Errorf("'initial_balance' must not be negative, got %s", balance)
		}
		cfg.Account.InitialBalance = balance
	}
	if tmp.Server.Addr != "" {
		cfg.Server.Addr = tmp.Server.Addr
	}
	if tmp.Log.Level != "" {
		cfg.Log.Level = tmp.Log.Level
	}
	if tmp.Log.Format != "" {
		cfg.Log.Format = tmp.Log.Format
	}
	if tmp.Log.OutputFile != "" {
		cfg.Log.OutputFile = tmp.Log.OutputFile
	}
	if len(tmp.Pairs) > 0 {
		pairs := make([]string, len(tmp.Pairs))
		for i, p := range tmp.Pairs {
			pair, err := domain.ParsePair(p)
			if err != nil {
				return Config{}, fmt.Errorf("incorrect 'pairs' entry in yaml config: %w", err)
			}
			pairs[i] = pair.Symbol()
		}
		cfg.Pairs = pairs
	}

	return cfg, nil
}

func defaults() Config {
	return Config{
		Feed: FeedConfig{
			URL:        defaultFeedURL,
			RedialWait: defaultRedialWait,
		},
		Account: AccountConfig{
			InitialBalance: decimal.RequireFromString(defaultInitialBalance),
		},
		Server: ServerConfig{
			Addr: defaultServerAddr,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Pairs: DefaultPairs,
	}
}
