package reporting

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/khanhng/martingale-bot/internal/strategy"
)

// ConsoleReporter prints run results to stdout.
type ConsoleReporter struct{}

// NewConsoleReporter creates a console reporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// OutputResults prints the run summary and the event table.
func (r *ConsoleReporter) OutputResults(result *strategy.Result) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("📊 STRATEGY RESULTS")
	fmt.Println(strings.Repeat("=", 50))

	fmt.Printf("💰 Total Profit:  %.4f\n", result.Summary.TotalProfit)
	fmt.Printf("📉 Total Loss:    %.2f%%\n", result.Summary.TotalLoss*100)
	fmt.Printf("🔄 Events:        %d\n", len(result.Events))
	if result.Summary.Liquidated {
		fmt.Printf("💥 Liquidated at bar %d — run terminated\n", result.Summary.LiquidatedAt)
	}

	if len(result.Events) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("POSITION EVENTS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Bar", "Event", "Dir", "Layer", "Price", "Avg Entry", "Position", "PnL"})

	for i, ev := range result.Events {
		t.AppendRow(table.Row{
			i + 1,
			ev.Index,
			ev.Kind.String(),
			ev.Direction.String(),
			ev.Layer + 1,
			fmt.Sprintf("%.2f", ev.Price),
			fmt.Sprintf("%.2f", ev.AvgEntry),
			fmt.Sprintf("%.2f%%", ev.Position*100),
			fmt.Sprintf("%.4f", ev.PnL),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignLeft},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
	})
	t.Render()
	fmt.Println()
}
