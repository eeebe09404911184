package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	boterrors "github.com/khanhng/martingale-bot/internal/errors"
	"github.com/khanhng/martingale-bot/pkg/types"
)

// maxPageSize is the Bybit per-request kline limit.
const maxPageSize = 1000

// Config holds the Bybit client configuration. Kline endpoints are
// public; keys are only needed if the same client is reused for private
// calls.
type Config struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	Category  string `json:"category"` // spot, linear, inverse
	Testnet   bool   `json:"testnet"`
}

// Client fetches 1-minute klines from Bybit and maps them to OHLCV bars.
type Client struct {
	httpClient *bybit_api.Client
	category   string
}

// NewClient creates a Bybit market data client.
func NewClient(cfg Config) *Client {
	baseURL := bybit_api.MAINNET
	if cfg.Testnet {
		baseURL = bybit_api.TESTNET
	}
	category := cfg.Category
	if category == "" {
		category = "spot"
	}
	return &Client{
		httpClient: bybit_api.NewBybitHttpClient(cfg.APIKey, cfg.APISecret, bybit_api.WithBaseURL(baseURL)),
		category:   category,
	}
}

// GetName returns the venue name.
func (c *Client) GetName() string {
	return "bybit"
}

// FetchHistoricalWindow pages backwards through kline history until
// `lookback` 1m bars are collected, deduplicated by timestamp and sorted
// oldest first.
func (c *Client) FetchHistoricalWindow(ctx context.Context, instrument string, lookback int) ([]types.OHLCV, error) {
	if lookback <= 0 {
		return nil, boterrors.New(boterrors.ErrorCategoryConfiguration, "bybit", "fetch_historical", "lookback must be positive")
	}

	seen := make(map[int64]bool)
	var bars []types.OHLCV
	var end int64

	for len(bars) < lookback {
		limit := lookback - len(bars)
		if limit > maxPageSize {
			limit = maxPageSize
		}

		page, err := c.fetchKlines(ctx, instrument, limit, end)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, bar := range page {
			ts := bar.Timestamp.UnixMilli()
			if !seen[ts] {
				seen[ts] = true
				bars = append(bars, bar)
			}
		}

		oldest := page[len(page)-1].Timestamp.UnixMilli()
		end = oldest - 1
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	return bars, nil
}

// FetchLatestBar returns the most recent 1m bar for the instrument.
func (c *Client) FetchLatestBar(ctx context.Context, instrument string) (types.OHLCV, error) {
	page, err := c.fetchKlines(ctx, instrument, 1, 0)
	if err != nil {
		return types.OHLCV{}, err
	}
	if len(page) == 0 {
		return types.OHLCV{}, boterrors.New(boterrors.ErrorCategoryExchange, "bybit", "fetch_latest", "no kline returned").WithRetryable(true)
	}
	return page[0], nil
}

// fetchKlines performs one kline request. Bybit returns rows newest
// first: [startTime, open, high, low, close, volume, turnover].
func (c *Client) fetchKlines(ctx context.Context, instrument string, limit int, end int64) ([]types.OHLCV, error) {
	params := map[string]interface{}{
		"category": c.category,
		"symbol":   instrument,
		"interval": "1",
		"limit":    limit,
	}
	if end > 0 {
		params["end"] = end
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
	if err != nil {
		return nil, boterrors.Wrap(err, boterrors.ErrorCategoryNetwork, "bybit", "get_klines")
	}
	return parseKlineResponse(result)
}

func parseKlineResponse(response interface{}) ([]types.OHLCV, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, boterrors.New(boterrors.ErrorCategoryExchange, "bybit", "parse_klines", "invalid response type")
	}
	if serverResp.RetCode != 0 {
		return nil, boterrors.New(boterrors.ErrorCategoryExchange, "bybit", "parse_klines",
			fmt.Sprintf("API error %d: %s", serverResp.RetCode, serverResp.RetMsg))
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, boterrors.Wrap(err, boterrors.ErrorCategoryExchange, "bybit", "parse_klines")
	}

	var klineResult struct {
		List [][]string `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, boterrors.Wrap(err, boterrors.ErrorCategoryExchange, "bybit", "parse_klines")
	}

	bars := make([]types.OHLCV, 0, len(klineResult.List))
	for _, row := range klineResult.List {
		if len(row) < 6 {
			continue
		}
		ts, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			continue
		}
		open, err1 := strconv.ParseFloat(row[1], 64)
		high, err2 := strconv.ParseFloat(row[2], 64)
		low, err3 := strconv.ParseFloat(row[3], 64)
		closePrice, err4 := strconv.ParseFloat(row[4], 64)
		volume, err5 := strconv.ParseFloat(row[5], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}
		bars = append(bars, types.OHLCV{
			Timestamp: time.UnixMilli(ts).UTC(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
		})
	}
	return bars, nil
}
