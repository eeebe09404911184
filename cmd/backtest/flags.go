package main

import "flag"

// Flags holds the backtest command line flags.
type Flags struct {
	ConfigFile *string
	DataFile   *string
	TickFile   *string
	Period     *string
	EnvFile    *string

	WaveDivergence *bool
	Sweep          *bool
	SweepRatio     *float64

	OutputCSV   *string
	OutputXLSX  *string
	ConsoleOnly *bool

	ShowVersion *bool
}

// NewFlags registers all backtest flags.
func NewFlags() *Flags {
	return &Flags{
		ConfigFile: flag.String("config", "", "JSON configuration file"),
		DataFile:   flag.String("data", "", "OHLCV CSV file to backtest against"),
		TickFile:   flag.String("ticks", "", "raw trade-tick CSV to aggregate into 1m bars"),
		Period:     flag.String("period", "", "trailing period filter (e.g. 24h, 7d)"),
		EnvFile:    flag.String("env", ".env", "environment file"),

		WaveDivergence: flag.Bool("wave", false, "also run the wave-divergence signal policy"),
		Sweep:          flag.Bool("sweep", false, "sweep layer schedules and report the best on a holdout"),
		SweepRatio:     flag.Float64("sweep-ratio", 0.7, "train/holdout split ratio for -sweep"),

		OutputCSV:   flag.String("out-csv", "", "write annotated bars to this CSV file"),
		OutputXLSX:  flag.String("out-xlsx", "", "write the event log to this Excel file"),
		ConsoleOnly: flag.Bool("console-only", false, "skip file outputs"),

		ShowVersion: flag.Bool("version", false, "print version and exit"),
	}
}
