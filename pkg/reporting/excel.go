package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/khanhng/martingale-bot/internal/strategy"
)

// ExcelReporter writes the event log and run summary to an .xlsx
// workbook.
type ExcelReporter struct{}

// NewExcelReporter creates an Excel reporter.
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// WriteEventsXLSX writes events and summary sheets to path.
func (r *ExcelReporter) WriteEventsXLSX(result *strategy.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const eventsSheet = "Events"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), eventsSheet)
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := r.writeEventsSheet(fx, eventsSheet, result, headerStyle); err != nil {
		return err
	}
	if err := r.writeSummarySheet(fx, summarySheet, result, headerStyle); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) writeEventsSheet(fx *excelize.File, sheet string, result *strategy.Result, headerStyle int) error {
	headers := []string{"#", "Bar", "Time", "Event", "Direction", "Layer", "Price", "Avg Entry", "Position", "PnL"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, ev := range result.Events {
		row := i + 2
		values := []interface{}{
			i + 1,
			ev.Index,
			ev.Time.Format("2006-01-02 15:04:05"),
			ev.Kind.String(),
			ev.Direction.String(),
			ev.Layer + 1,
			ev.Price,
			ev.AvgEntry,
			ev.Position,
			ev.PnL,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *ExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, result *strategy.Result, headerStyle int) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Profit", result.Summary.TotalProfit},
		{"Total Loss", result.Summary.TotalLoss},
		{"Events", len(result.Events)},
		{"Liquidated", result.Summary.Liquidated},
		{"Liquidated At Bar", result.Summary.LiquidatedAt},
	}

	for i, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return err
			}
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			if i == 0 {
				if err := fx.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
