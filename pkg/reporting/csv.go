package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/khanhng/martingale-bot/internal/strategy"
	"github.com/khanhng/martingale-bot/pkg/types"
)

// CSVReporter writes the annotated bar sequence to a CSV file: the input
// bars plus the open_signal/close_signal columns the engine produced.
type CSVReporter struct{}

// NewCSVReporter creates a CSV reporter.
func NewCSVReporter() *CSVReporter {
	return &CSVReporter{}
}

// WriteAnnotatedBars writes bars alongside their annotations.
func (r *CSVReporter) WriteAnnotatedBars(bars []types.OHLCV, annotations []strategy.Annotation, path string) error {
	if len(bars) != len(annotations) {
		return fmt.Errorf("bars (%d) and annotations (%d) must have matching length", len(bars), len(annotations))
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{"timestamp", "open", "high", "low", "close", "volume", "open_signal", "close_signal"}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, bar := range bars {
		row := []string{
			bar.Timestamp.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(bar.Open, 'f', -1, 64),
			strconv.FormatFloat(bar.High, 'f', -1, 64),
			strconv.FormatFloat(bar.Low, 'f', -1, 64),
			strconv.FormatFloat(bar.Close, 'f', -1, 64),
			strconv.FormatFloat(bar.Volume, 'f', -1, 64),
			strconv.Itoa(annotations[i].OpenSignal),
			strconv.Itoa(annotations[i].CloseSignal),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
