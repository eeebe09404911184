package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	barsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "martingale_bot_bars_received_total",
			Help: "Total number of bars ingested into the rolling buffer",
		},
		[]string{"instrument", "source"},
	)

	lastClose = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "martingale_bot_last_close",
			Help: "Close price of the most recent bar",
		},
		[]string{"instrument"},
	)

	refreshErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "martingale_bot_refresh_errors_total",
			Help: "Total number of failed feed refreshes",
		},
		[]string{"instrument", "source"},
	)

	totalProfit = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "martingale_bot_total_profit",
			Help: "Cumulative realized profit from the last engine run",
		},
		[]string{"instrument"},
	)

	openSignal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "martingale_bot_open_signal",
			Help: "Open signal on the most recent bar (-1 short, 0 none, 1 long)",
		},
		[]string{"instrument"},
	)
)

func init() {
	prometheus.MustRegister(barsReceived)
	prometheus.MustRegister(lastClose)
	prometheus.MustRegister(refreshErrors)
	prometheus.MustRegister(totalProfit)
	prometheus.MustRegister(openSignal)
}

// RecordBar records one ingested bar and its close price.
func RecordBar(instrument, source string, close float64) {
	barsReceived.WithLabelValues(instrument, source).Inc()
	lastClose.WithLabelValues(instrument).Set(close)
}

// RecordRefreshError records a failed feed refresh.
func RecordRefreshError(instrument, source string) {
	refreshErrors.WithLabelValues(instrument, source).Inc()
}

// RecordRun records the outcome of one engine pass over the buffer.
func RecordRun(instrument string, profit float64, signal int) {
	totalProfit.WithLabelValues(instrument).Set(profit)
	openSignal.WithLabelValues(instrument).Set(float64(signal))
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
