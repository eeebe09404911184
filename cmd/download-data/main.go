package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/khanhng/martingale-bot/internal/exchange"
	"github.com/khanhng/martingale-bot/pkg/types"
)

func main() {
	instrument := flag.String("instrument", "BTC-USDT", "instrument to download")
	venue := flag.String("exchange", "okx", "data source (okx, bybit)")
	days := flag.Int("days", 1, "number of days of 1m bars")
	output := flag.String("output", "", "output CSV path (default data/<instrument>_1m.csv)")
	envFile := flag.String("env", ".env", "environment file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("⚠️  Could not load %s (%v)", *envFile, err)
	}

	source, err := exchange.NewMarketDataSource(exchange.Config{Name: *venue})
	if err != nil {
		log.Fatalf("❌ Exchange error: %v", err)
	}

	lookback := *days * 24 * 60
	log.Printf("▶️ Downloading %d bars of %s from %s...", lookback, *instrument, source.GetName())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	bars, err := source.FetchHistoricalWindow(ctx, *instrument, lookback)
	if err != nil {
		log.Fatalf("❌ Download failed: %v", err)
	}
	if len(bars) == 0 {
		log.Fatal("❌ No bars returned")
	}
	log.Printf("✅ Downloaded %d bars (%s → %s)", len(bars),
		bars[0].Timestamp.Format("2006-01-02 15:04"),
		bars[len(bars)-1].Timestamp.Format("2006-01-02 15:04"))

	path := *output
	if path == "" {
		path = filepath.Join("data", fmt.Sprintf("%s_1m.csv", *instrument))
	}
	if err := writeCSV(path, bars); err != nil {
		log.Fatalf("❌ Write failed: %v", err)
	}
	log.Printf("💾 Saved to %s", path)
}

func writeCSV(path string, bars []types.OHLCV) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, bar := range bars {
		row := []string{
			bar.Timestamp.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(bar.Open, 'f', -1, 64),
			strconv.FormatFloat(bar.High, 'f', -1, 64),
			strconv.FormatFloat(bar.Low, 'f', -1, 64),
			strconv.FormatFloat(bar.Close, 'f', -1, 64),
			strconv.FormatFloat(bar.Volume, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
