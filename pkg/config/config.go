package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/khanhng/martingale-bot/internal/strategy"
)

// Default configuration values.
const (
	DefaultInstrument  = "BTC-USDT"
	DefaultExchange    = "okx"
	DefaultLookback    = 24 * 60 // 1 day of 1m bars
	DefaultFastWindow  = strategy.DefaultFastWindow
	DefaultSlowWindow  = strategy.DefaultSlowWindow
)

// DefaultLayers is the stock two-layer schedule: a half position at 1x
// and a martingale add at 2x.
var DefaultLayers = strategy.LayerSchedule{
	Leverage: []float64{1, 2},
	Size:     []float64{0.5, 0.5},
}

// Config is the full bot configuration, immutable for a run.
type Config struct {
	Instrument string `json:"instrument"`
	Exchange   string `json:"exchange"`
	DataFile   string `json:"data_file,omitempty"`
	Lookback   int    `json:"lookback,omitempty"`

	LeverageList []float64 `json:"leverage_list"`
	PositionList []float64 `json:"position_list"`

	FastWindow      int     `json:"fast_window,omitempty"`
	SlowWindow      int     `json:"slow_window,omitempty"`
	EntryVolatility float64 `json:"entry_volatility,omitempty"`
	MaxTotalLoss    float64 `json:"max_total_loss,omitempty"`

	// Wave-divergence policy windows (variant strategy).
	ShortWindow  int `json:"short_window,omitempty"`
	MediumWindow int `json:"medium_window,omitempty"`
	LongWindow   int `json:"long_window,omitempty"`
}

// Default returns a config with stock parameters.
func Default() *Config {
	return &Config{
		Instrument:   DefaultInstrument,
		Exchange:     DefaultExchange,
		Lookback:     DefaultLookback,
		LeverageList: append([]float64(nil), DefaultLayers.Leverage...),
		PositionList: append([]float64(nil), DefaultLayers.Size...),
		FastWindow:   DefaultFastWindow,
		SlowWindow:   DefaultSlowWindow,
		ShortWindow:  5,
		MediumWindow: 10,
		LongWindow:   20,
	}
}

// Load reads a JSON config file, fills defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BOT_INSTRUMENT"); v != "" {
		c.Instrument = v
	}
	if v := os.Getenv("BOT_EXCHANGE"); v != "" {
		c.Exchange = strings.ToLower(v)
	}
	if v := os.Getenv("BOT_DATA_FILE"); v != "" {
		c.DataFile = v
	}
}

func (c *Config) fillDefaults() {
	if c.Instrument == "" {
		c.Instrument = DefaultInstrument
	}
	if c.Exchange == "" {
		c.Exchange = DefaultExchange
	}
	if c.Lookback == 0 {
		c.Lookback = DefaultLookback
	}
	if len(c.LeverageList) == 0 && len(c.PositionList) == 0 {
		c.LeverageList = append([]float64(nil), DefaultLayers.Leverage...)
		c.PositionList = append([]float64(nil), DefaultLayers.Size...)
	}
	if c.ShortWindow == 0 {
		c.ShortWindow = 5
	}
	if c.MediumWindow == 0 {
		c.MediumWindow = 10
	}
	if c.LongWindow == 0 {
		c.LongWindow = 20
	}
}

// Validate rejects configurations that would fail at run time.
func (c *Config) Validate() error {
	if err := c.Layers().Validate(); err != nil {
		return fmt.Errorf("layer schedule: %w", err)
	}
	if c.FastWindow < 0 || c.SlowWindow < 0 {
		return fmt.Errorf("MA windows must be non-negative")
	}
	if c.FastWindow != 0 && c.SlowWindow != 0 && c.FastWindow >= c.SlowWindow {
		return fmt.Errorf("fast window (%d) must be smaller than slow window (%d)", c.FastWindow, c.SlowWindow)
	}
	if c.Lookback < 0 {
		return fmt.Errorf("lookback must be non-negative")
	}
	return nil
}

// Layers assembles the layer schedule from the parallel lists.
func (c *Config) Layers() strategy.LayerSchedule {
	return strategy.LayerSchedule{
		Leverage: c.LeverageList,
		Size:     c.PositionList,
	}
}

// StrategyConfig maps the bot config onto engine parameters.
func (c *Config) StrategyConfig() strategy.Config {
	return strategy.Config{
		Layers:          c.Layers(),
		FastWindow:      c.FastWindow,
		SlowWindow:      c.SlowWindow,
		EntryVolatility: c.EntryVolatility,
		MaxTotalLoss:    c.MaxTotalLoss,
	}
}
