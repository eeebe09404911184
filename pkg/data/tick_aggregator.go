package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/khanhng/martingale-bot/pkg/types"
)

// TickAggregator builds 1-minute OHLCV bars from raw trade ticks:
// open = first trade, high = max, low = min, close = last,
// volume = sum of sizes, keyed by the minute the trade falls in.
type TickAggregator struct {
	format TickColumnMapping
}

// NewTickAggregator creates an aggregator with the default tick mapping.
func NewTickAggregator() *TickAggregator {
	return &TickAggregator{format: DefaultTickFormat}
}

// Aggregate folds ticks into minute bars, oldest first. Ticks may arrive
// in any order; within a minute, ordering follows the input sequence for
// equal timestamps.
func (a *TickAggregator) Aggregate(ticks []types.Tick) []types.OHLCV {
	if len(ticks) == 0 {
		return nil
	}

	sorted := make([]types.Tick, len(ticks))
	copy(sorted, ticks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var bars []types.OHLCV
	for _, tick := range sorted {
		minute := tick.Timestamp.Truncate(time.Minute)
		if len(bars) == 0 || !bars[len(bars)-1].Timestamp.Equal(minute) {
			bars = append(bars, types.OHLCV{
				Timestamp: minute,
				Open:      tick.Price,
				High:      tick.Price,
				Low:       tick.Price,
				Close:     tick.Price,
				Volume:    tick.Size,
			})
			continue
		}

		bar := &bars[len(bars)-1]
		if tick.Price > bar.High {
			bar.High = tick.Price
		}
		if tick.Price < bar.Low {
			bar.Low = tick.Price
		}
		bar.Close = tick.Price
		bar.Volume += tick.Size
	}
	return bars
}

// LoadData implements Provider for tick CSV files, millisecond
// timestamps in the first column.
func (a *TickAggregator) LoadData(source string) ([]types.OHLCV, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		return nil, err
	}

	var ticks []types.Tick
	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading tick CSV at line %d: %v", lineNum, err)
		}
		lineNum++

		if len(record) < a.format.MinColumns {
			log.Printf("⚠️ Insufficient columns at line %d, skipping", lineNum)
			continue
		}

		ms, err := strconv.ParseInt(record[a.format.TimestampCol], 10, 64)
		if err != nil {
			log.Printf("⚠️ Invalid tick timestamp '%s' at line %d, skipping", record[a.format.TimestampCol], lineNum)
			continue
		}
		price, err := strconv.ParseFloat(record[a.format.PriceCol], 64)
		if err != nil || price <= 0 {
			log.Printf("⚠️ Invalid tick price '%s' at line %d, skipping", record[a.format.PriceCol], lineNum)
			continue
		}
		size, err := strconv.ParseFloat(record[a.format.SizeCol], 64)
		if err != nil {
			log.Printf("⚠️ Invalid tick size '%s' at line %d, skipping", record[a.format.SizeCol], lineNum)
			continue
		}

		ticks = append(ticks, types.Tick{
			Timestamp: time.UnixMilli(ms).UTC(),
			Price:     price,
			Size:      size,
		})
	}

	return a.Aggregate(ticks), nil
}

// ValidateData implements Provider.
func (a *TickAggregator) ValidateData(data []types.OHLCV) error {
	for i := 1; i < len(data); i++ {
		if !data[i].Timestamp.After(data[i-1].Timestamp) {
			return fmt.Errorf("aggregated bars not strictly increasing at index %d", i)
		}
	}
	return nil
}

// GetName implements Provider.
func (a *TickAggregator) GetName() string {
	return "Tick Aggregator"
}
