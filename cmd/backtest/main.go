package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/khanhng/martingale-bot/internal/features"
	"github.com/khanhng/martingale-bot/internal/signal"
	"github.com/khanhng/martingale-bot/internal/strategy"
	"github.com/khanhng/martingale-bot/pkg/config"
	datamanager "github.com/khanhng/martingale-bot/pkg/data"
	"github.com/khanhng/martingale-bot/pkg/optimization"
	"github.com/khanhng/martingale-bot/pkg/reporting"
	"github.com/khanhng/martingale-bot/pkg/types"
	"github.com/khanhng/martingale-bot/pkg/validation"
)

const (
	AppName    = "Martingale Backtest"
	AppVersion = "1.0.0"
)

func main() {
	flags := NewFlags()
	flag.Parse()

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}

	printHeader()
	loadEnvironment(*flags.EnvFile)

	cfg, err := config.Load(*flags.ConfigFile)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}
	if *flags.DataFile != "" {
		cfg.DataFile = *flags.DataFile
	}

	bars, err := loadBars(cfg, flags)
	if err != nil {
		log.Fatalf("❌ Data error: %v", err)
	}
	log.Printf("✅ Loaded %d bars (%s → %s)", len(bars),
		bars[0].Timestamp.Format("2006-01-02 15:04"),
		bars[len(bars)-1].Timestamp.Format("2006-01-02 15:04"))

	vol, err := features.Snapshot(bars)
	if err != nil {
		log.Fatalf("❌ Volatility snapshot: %v", err)
	}
	log.Printf("📊 Volatility regime: x=%.4f (4h), y=%.4f (1h)", vol.X, vol.Y)

	engine, err := strategy.NewMartingaleEngine(cfg.StrategyConfig(), vol)
	if err != nil {
		log.Fatalf("❌ Engine error: %v", err)
	}

	result, err := engine.Run(bars)
	if err != nil {
		log.Fatalf("❌ Run error: %v", err)
	}

	reporting.NewConsoleReporter().OutputResults(result)

	if *flags.WaveDivergence {
		runWaveDivergence(cfg, bars)
	}

	if *flags.Sweep {
		runSweep(cfg, vol, bars, *flags.SweepRatio)
	}

	if !*flags.ConsoleOnly {
		writeOutputs(flags, bars, result)
	}
}

// runSweep grid-searches layer schedules on a train split and reports
// the winner against the untouched holdout.
func runSweep(cfg *config.Config, vol features.VolatilitySnapshot, bars []types.OHLCV, ratio float64) {
	train, holdout := validation.SplitByRatio(bars, ratio)
	if len(holdout) == 0 {
		log.Printf("⚠️ Sweep skipped: not enough bars for a %.0f%% train split", ratio*100)
		return
	}

	sweep := optimization.NewSweep(cfg.StrategyConfig(), vol, 0)
	results := sweep.Run(context.Background(), train, optimization.DefaultGrid())

	best, ok := optimization.Best(results)
	if !ok {
		log.Printf("⚠️ Sweep produced no usable result")
		return
	}
	fmt.Printf("🔍 Sweep winner on train (%d bars): %s profit=%.4f loss=%.4f\n",
		len(train), best.Candidate.Name, best.Summary.TotalProfit, best.Summary.TotalLoss)

	holdoutCfg := cfg.StrategyConfig()
	holdoutCfg.Layers = best.Candidate.Layers
	engine, err := strategy.NewMartingaleEngine(holdoutCfg, vol)
	if err != nil {
		log.Printf("⚠️ Holdout engine: %v", err)
		return
	}
	run, err := engine.Run(holdout)
	if err != nil {
		log.Printf("⚠️ Holdout run: %v", err)
		return
	}
	fmt.Printf("🔍 Holdout (%d bars): profit=%.4f loss=%.4f liquidated=%t\n",
		len(holdout), run.Summary.TotalProfit, run.Summary.TotalLoss, run.Summary.Liquidated)
}

func loadBars(cfg *config.Config, flags *Flags) ([]types.OHLCV, error) {
	var provider datamanager.Provider
	var source string

	switch {
	case *flags.TickFile != "":
		provider = datamanager.NewTickAggregator()
		source = *flags.TickFile
	case cfg.DataFile != "":
		provider = datamanager.NewCachedProvider(datamanager.NewCSVProvider())
		source = cfg.DataFile
	default:
		return nil, fmt.Errorf("no data source: set -data, -ticks or data_file in the config")
	}

	bars, err := provider.LoadData(source)
	if err != nil {
		return nil, err
	}
	if err := provider.ValidateData(bars); err != nil {
		return nil, err
	}

	if *flags.Period != "" {
		period, ok := datamanager.ParseTrailingPeriod(*flags.Period)
		if !ok {
			return nil, fmt.Errorf("invalid period format: %s (use 24h, 7d, ...)", *flags.Period)
		}
		bars = datamanager.NewDefaultFilter().FilterByPeriod(bars, period)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars left after filtering")
	}
	return bars, nil
}

func runWaveDivergence(cfg *config.Config, bars []types.OHLCV) {
	policy := signal.NewWaveDivergence(cfg.ShortWindow, cfg.MediumWindow, cfg.LongWindow)
	signals, err := policy.Generate(bars)
	if err != nil {
		log.Printf("⚠️ Wave-divergence policy failed: %v", err)
		return
	}

	long := 0
	exits := 0
	for i, s := range signals {
		if s.Signal == 1 {
			long++
		}
		if i > 0 && signals[i-1].Signal == 1 && s.Signal == 0 {
			exits++
		}
	}
	fmt.Printf("🌊 Wave-divergence: %d waves, long on %d/%d bars, %d exits\n",
		signals[len(signals)-1].WaveID+1, long, len(signals), exits)
}

func writeOutputs(flags *Flags, bars []types.OHLCV, result *strategy.Result) {
	if *flags.OutputCSV != "" {
		if err := reporting.NewCSVReporter().WriteAnnotatedBars(bars, result.Annotations, *flags.OutputCSV); err != nil {
			log.Printf("⚠️ CSV output failed: %v", err)
		} else {
			log.Printf("💾 Annotated bars written to %s", *flags.OutputCSV)
		}
	}
	if *flags.OutputXLSX != "" {
		if err := reporting.NewExcelReporter().WriteEventsXLSX(result, *flags.OutputXLSX); err != nil {
			log.Printf("⚠️ Excel output failed: %v", err)
		} else {
			log.Printf("💾 Event log written to %s", *flags.OutputXLSX)
		}
	}
}

func printHeader() {
	fmt.Printf("🎯 %s v%s\n", strings.ToUpper(AppName), AppVersion)
	fmt.Printf("%s\n\n", strings.Repeat("=", 50))
}

func loadEnvironment(envFile string) {
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("⚠️  Could not load %s (%v)", envFile, err)
	}
}
