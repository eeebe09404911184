package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	boterrors "github.com/khanhng/martingale-bot/internal/errors"
	"github.com/khanhng/martingale-bot/internal/safety"
	"github.com/khanhng/martingale-bot/pkg/types"
)

const (
	defaultBaseURL = "https://www.okx.com"
	candlesPath    = "/api/v5/market/candles"

	// maxPageSize is the OKX per-request candle limit.
	maxPageSize = 300

	// OKX allows 20 requests per 2 seconds on public market endpoints.
	rateLimitCapacity = 20
	rateLimitRefill   = 10
)

// Config holds the OKX client configuration. Market data endpoints are
// public; no credentials are required.
type Config struct {
	BaseURL string        `json:"base_url,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// Client fetches 1-minute candles from the OKX public REST API with
// pagination, retry and timestamp dedupe.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
	limiter    *safety.RateLimiter
}

// NewClient creates an OKX market data client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retry:      DefaultRetryConfig(),
		limiter:    safety.NewRateLimiter(rateLimitCapacity, rateLimitRefill),
	}
}

// GetName returns the venue name.
func (c *Client) GetName() string {
	return "okx"
}

type candlesResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

// FetchHistoricalWindow pages backwards through the candle history until
// `lookback` bars are collected or the venue runs out of data. Bars are
// deduplicated by timestamp and returned oldest first.
func (c *Client) FetchHistoricalWindow(ctx context.Context, instrument string, lookback int) ([]types.OHLCV, error) {
	if lookback <= 0 {
		return nil, boterrors.New(boterrors.ErrorCategoryConfiguration, "okx", "fetch_historical", "lookback must be positive")
	}

	seen := make(map[int64]bool)
	var bars []types.OHLCV
	var after int64

	for len(bars) < lookback {
		limit := lookback - len(bars)
		if limit > maxPageSize {
			limit = maxPageSize
		}

		page, err := c.fetchCandles(ctx, instrument, limit, after)
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

		// Pages arrive newest first; the cursor moves past the oldest bar.
		oldest := page[len(page)-1].Timestamp.UnixMilli()
		after = oldest - 1
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	return bars, nil
}

// FetchLatestBar returns the most recent 1m bar for the instrument.
func (c *Client) FetchLatestBar(ctx context.Context, instrument string) (types.OHLCV, error) {
	page, err := c.fetchCandles(ctx, instrument, 1, 0)
	if err != nil {
		return types.OHLCV{}, err
	}
	if len(page) == 0 {
		return types.OHLCV{}, boterrors.New(boterrors.ErrorCategoryExchange, "okx", "fetch_latest", "no candle returned").WithRetryable(true)
	}
	return page[0], nil
}

// fetchCandles performs one paginated candles request with retry.
func (c *Client) fetchCandles(ctx context.Context, instrument string, limit int, after int64) ([]types.OHLCV, error) {
	var bars []types.OHLCV
	err := Retry(ctx, c.retry, func() error {
		var err error
		bars, err = c.doFetchCandles(ctx, instrument, limit, after)
		return err
	})
	return bars, err
}

func (c *Client) doFetchCandles(ctx context.Context, instrument string, limit int, after int64) ([]types.OHLCV, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("instId", instrument)
	params.Set("bar", "1m")
	params.Set("limit", strconv.Itoa(limit))
	if after > 0 {
		params.Set("after", strconv.FormatInt(after, 10))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+candlesPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, boterrors.Wrap(err, boterrors.ErrorCategoryConfiguration, "okx", "build_request").WithRetryable(false)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, boterrors.Wrap(err, boterrors.ErrorCategoryNetwork, "okx", "get_candles")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, boterrors.New(boterrors.ErrorCategoryRateLimit, "okx", "get_candles", "rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, boterrors.New(boterrors.ErrorCategoryExchange, "okx", "get_candles", fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	var body candlesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, boterrors.Wrap(err, boterrors.ErrorCategoryExchange, "okx", "decode_candles")
	}
	if body.Code != "0" {
		return nil, boterrors.New(boterrors.ErrorCategoryExchange, "okx", "get_candles", fmt.Sprintf("API error %s: %s", body.Code, body.Msg))
	}

	bars := make([]types.OHLCV, 0, len(body.Data))
	for _, row := range body.Data {
		bar, err := parseCandle(row)
		if err != nil {
			// Malformed rows are dropped here so the core only ever sees
			// validated bars.
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// parseCandle maps an OKX candle row
// [ts, open, high, low, close, vol, volCcy, volCcyQuote, confirm]
// to an OHLCV bar.
func parseCandle(row []string) (types.OHLCV, error) {
	if len(row) < 6 {
		return types.OHLCV{}, fmt.Errorf("candle row too short: %d fields", len(row))
	}

	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("bad timestamp %q: %w", row[0], err)
	}

	values := make([]float64, 5)
	for i := 0; i < 5; i++ {
		values[i], err = strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("bad field %q: %w", row[i+1], err)
		}
	}

	return types.OHLCV{
		Timestamp: time.UnixMilli(ts).UTC(),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}
