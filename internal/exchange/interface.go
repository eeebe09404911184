package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/khanhng/martingale-bot/internal/exchange/bybit"
	"github.com/khanhng/martingale-bot/internal/exchange/okx"
	"github.com/khanhng/martingale-bot/pkg/types"
)

// MarketDataSource supplies clean, time-ordered 1-minute candles to the
// strategy core. Implementations own their retry/backoff and must
// deduplicate by timestamp before handing bars over.
type MarketDataSource interface {
	// FetchHistoricalWindow returns up to `lookback` most recent 1m bars
	// for the instrument, oldest first.
	FetchHistoricalWindow(ctx context.Context, instrument string, lookback int) ([]types.OHLCV, error)

	// FetchLatestBar returns the most recent (possibly unconfirmed) 1m bar.
	FetchLatestBar(ctx context.Context, instrument string) (types.OHLCV, error)

	// GetName returns the venue name.
	GetName() string
}

// Config selects and configures a market data source.
type Config struct {
	Name    string        `json:"name"` // okx, bybit
	Timeout time.Duration `json:"timeout,omitempty"`

	Bybit *bybit.Config `json:"bybit,omitempty"`
	OKX   *okx.Config   `json:"okx,omitempty"`
}

// NewMarketDataSource creates the data source named by the config.
func NewMarketDataSource(cfg Config) (MarketDataSource, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "okx", "":
		var okxCfg okx.Config
		if cfg.OKX != nil {
			okxCfg = *cfg.OKX
		}
		return okx.NewClient(okxCfg), nil
	case "bybit":
		var bybitCfg bybit.Config
		if cfg.Bybit != nil {
			bybitCfg = *cfg.Bybit
		}
		return bybit.NewClient(bybitCfg), nil
	default:
		return nil, fmt.Errorf("unsupported exchange %q (supported: okx, bybit)", cfg.Name)
	}
}
