package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/khanhng/martingale-bot/internal/exchange"
	"github.com/khanhng/martingale-bot/internal/features"
	"github.com/khanhng/martingale-bot/internal/feed"
	"github.com/khanhng/martingale-bot/internal/logger"
	"github.com/khanhng/martingale-bot/internal/monitoring"
	"github.com/khanhng/martingale-bot/internal/notifications"
	"github.com/khanhng/martingale-bot/internal/strategy"
	"github.com/khanhng/martingale-bot/pkg/config"
)

func main() {
	configFile := flag.String("config", "", "JSON configuration file")
	envFile := flag.String("env", ".env", "environment file")
	metricsAddr := flag.String("metrics", ":2112", "prometheus metrics listen address")
	flag.Parse()

	fmt.Printf("🎯 LIVE SIGNAL v1.0.0\n%s\n\n", strings.Repeat("=", 50))

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("⚠️  Could not load %s (%v)", *envFile, err)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	source, err := exchange.NewMarketDataSource(exchange.Config{Name: cfg.Exchange})
	if err != nil {
		log.Fatalf("❌ Exchange error: %v", err)
	}

	fileLog, err := logger.NewLogger(cfg.Instrument)
	if err != nil {
		log.Fatalf("❌ Log file error: %v", err)
	}
	defer fileLog.Close()

	notifier := notifications.FromEnv()
	if notifier != nil {
		log.Printf("📨 Telegram alerts enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Seed the rolling buffer with the trailing day of bars.
	log.Printf("▶️ Seeding %d bars of %s from %s...", cfg.Lookback, cfg.Instrument, source.GetName())
	seedCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	history, err := source.FetchHistoricalWindow(seedCtx, cfg.Instrument, cfg.Lookback)
	cancel()
	if err != nil {
		log.Fatalf("❌ Seed failed: %v", err)
	}

	buffer := feed.NewRollingBuffer(features.TrailingWindowBars)
	buffer.Seed(history)
	log.Printf("✅ Buffer seeded with %d bars", buffer.Len())
	fileLog.Log(logger.LogLevelInfo, "buffer seeded with %d bars", buffer.Len())

	go func() {
		http.Handle("/metrics", monitoring.Handler())
		log.Printf("📈 Metrics on %s/metrics", *metricsAddr)
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			log.Printf("⚠️ Metrics server stopped: %v", err)
		}
	}()

	refresher := feed.NewRefresher(source, buffer, cfg.Instrument)
	refresher.OnRefresh = func() {
		evaluate(cfg, buffer, fileLog, notifier)
	}

	log.Printf("▶️ Polling latest bar each minute; Ctrl-C to stop")
	refresher.Run(ctx)
	log.Println("👋 Shutting down")
}

// evaluate runs one engine pass over an immutable snapshot of the
// buffer. The snapshot handoff means the refresher can keep mutating the
// buffer while a run is in flight.
func evaluate(cfg *config.Config, buffer *feed.RollingBuffer, fileLog *logger.Logger, notifier notifications.Notifier) {
	bars := buffer.Snapshot()
	if len(bars) < cfg.SlowWindow {
		return
	}

	vol, err := features.Snapshot(bars)
	if err != nil {
		log.Printf("⚠️ Volatility snapshot: %v", err)
		return
	}

	engine, err := strategy.NewMartingaleEngine(cfg.StrategyConfig(), vol)
	if err != nil {
		log.Printf("⚠️ Engine error: %v", err)
		return
	}

	result, err := engine.Run(bars)
	if err != nil {
		log.Printf("⚠️ Run error: %v", err)
		return
	}

	last := len(bars) - 1
	ann := result.Annotations[last]
	monitoring.RecordRun(cfg.Instrument, result.Summary.TotalProfit, ann.OpenSignal)

	if ann.OpenSignal == 0 && ann.CloseSignal == 0 {
		return
	}

	log.Printf("🔔 %s close=%.2f open_signal=%+d close_signal=%d profit=%.4f",
		bars[last].Timestamp.Format("15:04"), bars[last].Close, ann.OpenSignal, ann.CloseSignal, result.Summary.TotalProfit)
	fileLog.Log(logger.LogLevelSignal, "close=%.2f open_signal=%+d close_signal=%d profit=%.4f",
		bars[last].Close, ann.OpenSignal, ann.CloseSignal, result.Summary.TotalProfit)

	if notifier == nil {
		return
	}

	level := notifications.LevelInfo
	msg := fmt.Sprintf("%s: open signal %+d at %.2f", cfg.Instrument, ann.OpenSignal, bars[last].Close)
	if result.Summary.Liquidated && result.Summary.LiquidatedAt == last {
		level = notifications.LevelError
		msg = fmt.Sprintf("%s: forced liquidation at %.2f, total loss %.4f", cfg.Instrument, bars[last].Close, result.Summary.TotalLoss)
	} else if ann.CloseSignal == 1 {
		level = notifications.LevelSuccess
		msg = fmt.Sprintf("%s: take profit at %.2f, total profit %.4f", cfg.Instrument, bars[last].Close, result.Summary.TotalProfit)
	}
	if err := notifier.SendAlert(level, msg); err != nil {
		log.Printf("⚠️ Alert failed: %v", err)
	}
}
