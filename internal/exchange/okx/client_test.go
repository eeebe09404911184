package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func newTestClient(server *httptest.Server) *Client {
	c := NewClient(Config{BaseURL: server.URL})
	c.retry = fastRetry()
	return c
}

// candleRow builds an OKX candle row for a minute offset from a fixed
// base, newest rows first in real responses.
func candleRow(minute int, close float64) []string {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ts := base.Add(time.Duration(minute) * time.Minute).UnixMilli()
	return []string{
		fmt.Sprintf("%d", ts),
		fmt.Sprintf("%.1f", close), fmt.Sprintf("%.1f", close+1),
		fmt.Sprintf("%.1f", close-1), fmt.Sprintf("%.1f", close),
		"10", "0", "0", "1",
	}
}

func writeCandles(w http.ResponseWriter, rows [][]string) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code": "0",
		"msg":  "",
		"data": rows,
	})
}

func TestFetchHistoricalWindow_PaginatesAndDedupes(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		after := r.URL.Query().Get("after")
		requests = append(requests, after)

		switch len(requests) {
		case 1:
			// Newest page: minutes 5, 4, 3.
			writeCandles(w, [][]string{candleRow(5, 105), candleRow(4, 104), candleRow(3, 103)})
		case 2:
			// Overlapping page: minute 3 repeats and must be deduped.
			writeCandles(w, [][]string{candleRow(3, 103), candleRow(2, 102)})
		default:
			// History exhausted.
			writeCandles(w, nil)
		}
	}))
	defer server.Close()

	client := newTestClient(server)
	bars, err := client.FetchHistoricalWindow(context.Background(), "BTC-USDT", 6)
	require.NoError(t, err)

	// 4 unique bars, oldest first.
	require.Len(t, bars, 4)
	for i := 0; i < len(bars)-1; i++ {
		assert.True(t, bars[i].Timestamp.Before(bars[i+1].Timestamp))
	}
	assert.Equal(t, 102.0, bars[0].Close)
	assert.Equal(t, 105.0, bars[3].Close)

	// The second request's cursor points just past the oldest bar of the
	// first page.
	require.Len(t, requests, 3)
	assert.Empty(t, requests[0])
	oldestFirstPage := time.Date(2024, 3, 1, 0, 3, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, fmt.Sprintf("%d", oldestFirstPage-1), requests[1])
}

func TestFetchHistoricalWindow_RetriesOnRateLimit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeCandles(w, [][]string{candleRow(1, 101)})
	}))
	defer server.Close()

	client := newTestClient(server)
	bars, err := client.FetchHistoricalWindow(context.Background(), "BTC-USDT", 1)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 2, calls)
}

func TestFetchHistoricalWindow_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "51001", "msg": "Instrument ID does not exist", "data": [][]string{},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.FetchHistoricalWindow(context.Background(), "NOPE-USDT", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "51001")
}

func TestFetchHistoricalWindow_RejectsBadLookback(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.FetchHistoricalWindow(context.Background(), "BTC-USDT", 0)
	assert.Error(t, err)
}

func TestFetchLatestBar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		writeCandles(w, [][]string{candleRow(7, 107)})
	}))
	defer server.Close()

	client := newTestClient(server)
	bar, err := client.FetchLatestBar(context.Background(), "BTC-USDT")
	require.NoError(t, err)
	assert.Equal(t, 107.0, bar.Close)
	assert.Equal(t, 7, bar.Timestamp.Minute())
}

func TestFetchLatestBar_DropsMalformedRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCandles(w, [][]string{{"not-a-ts", "1", "2", "3", "4", "5"}})
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.FetchLatestBar(context.Background(), "BTC-USDT")
	assert.Error(t, err)
}
