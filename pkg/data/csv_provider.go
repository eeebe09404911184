package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/khanhng/martingale-bot/pkg/types"
)

// CSVProvider loads OHLCV bars from CSV files. Malformed rows are
// skipped with a log line; the strategy core only ever receives
// validated, chronologically ordered bars.
type CSVProvider struct {
	format ColumnMapping
}

// NewCSVProvider creates a provider with the default column mapping.
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{format: DefaultCSVFormat}
}

// NewCSVProviderWithFormat creates a provider with a custom mapping.
func NewCSVProviderWithFormat(format ColumnMapping) *CSVProvider {
	return &CSVProvider{format: format}
}

// GetName returns the provider name.
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads bars from a CSV file.
func (p *CSVProvider) LoadData(source string) ([]types.OHLCV, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, err
	}

	var bars []types.OHLCV
	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %v", lineNum, err)
		}
		lineNum++

		bar, ok := p.parseRow(record, lineNum)
		if !ok {
			continue
		}
		bars = append(bars, bar)
	}

	return bars, nil
}

func (p *CSVProvider) parseRow(record []string, lineNum int) (types.OHLCV, bool) {
	format := p.format
	if len(record) < format.MinColumns {
		log.Printf("⚠️ Insufficient columns at line %d (expected %d, got %d), skipping", lineNum, format.MinColumns, len(record))
		return types.OHLCV{}, false
	}

	timestamp, err := parseTimestamp(record[format.TimestampCol], format)
	if err != nil {
		log.Printf("⚠️ Invalid timestamp '%s' at line %d, skipping: %v", record[format.TimestampCol], lineNum, err)
		return types.OHLCV{}, false
	}

	fields := [...]struct {
		col  int
		name string
	}{
		{format.OpenCol, "open"},
		{format.HighCol, "high"},
		{format.LowCol, "low"},
		{format.CloseCol, "close"},
		{format.VolumeCol, "volume"},
	}
	values := make([]float64, len(fields))
	for i, f := range fields {
		values[i], err = strconv.ParseFloat(record[f.col], 64)
		if err != nil {
			log.Printf("⚠️ Invalid %s '%s' at line %d, skipping: %v", f.name, record[f.col], lineNum, err)
			return types.OHLCV{}, false
		}
	}

	bar := types.OHLCV{
		Timestamp: timestamp,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}

	if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
		log.Printf("⚠️ Invalid price data (negative or zero) at line %d, skipping", lineNum)
		return types.OHLCV{}, false
	}
	if bar.High < bar.Open || bar.High < bar.Close || bar.High < bar.Low {
		log.Printf("⚠️ High price is lower than other prices at line %d, skipping", lineNum)
		return types.OHLCV{}, false
	}
	if bar.Low > bar.Open || bar.Low > bar.Close {
		log.Printf("⚠️ Low price is higher than other prices at line %d, skipping", lineNum)
		return types.OHLCV{}, false
	}

	return bar, true
}

func parseTimestamp(raw string, format ColumnMapping) (time.Time, error) {
	if format.UnixMillis {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Parse(format.DateFormat, raw)
}

// ValidateData validates the integrity of loaded bars.
func (p *CSVProvider) ValidateData(data []types.OHLCV) error {
	if len(data) == 0 {
		return fmt.Errorf("no data provided")
	}

	for i, candle := range data {
		if candle.Open <= 0 || candle.High <= 0 || candle.Low <= 0 || candle.Close <= 0 {
			return fmt.Errorf("invalid price data at index %d: prices must be positive", i)
		}
		if candle.High < candle.Low {
			return fmt.Errorf("invalid price data at index %d: high (%.4f) cannot be less than low (%.4f)",
				i, candle.High, candle.Low)
		}
		if i > 0 && !candle.Timestamp.After(data[i-1].Timestamp) {
			return fmt.Errorf("invalid timestamp sequence at index %d: timestamps must be strictly increasing", i)
		}
	}

	return nil
}
