package feed

import (
	"context"
	"log"
	"time"

	"github.com/khanhng/martingale-bot/internal/exchange"
	"github.com/khanhng/martingale-bot/internal/monitoring"
)

// refreshSecond is the second of each minute at which the latest bar is
// pulled, just before the minute closes.
const refreshSecond = 58

// Refresher keeps a RollingBuffer current by polling the data source for
// the latest bar once per minute. It runs until the context is
// cancelled.
type Refresher struct {
	source     exchange.MarketDataSource
	buffer     *RollingBuffer
	instrument string

	// OnRefresh, when set, is invoked after every successful buffer
	// update with a fresh snapshot.
	OnRefresh func()
}

// NewRefresher creates a refresher for one instrument.
func NewRefresher(source exchange.MarketDataSource, buffer *RollingBuffer, instrument string) *Refresher {
	return &Refresher{source: source, buffer: buffer, instrument: instrument}
}

// Run polls once per minute near second 58. Failed refreshes are logged
// and counted; the loop keeps going.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastRefresh time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Second() != refreshSecond || now.Sub(lastRefresh) < 2*time.Second {
				continue
			}
			lastRefresh = now
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	bar, err := r.source.FetchLatestBar(ctx, r.instrument)
	if err != nil {
		log.Printf("⚠️ Feed refresh failed for %s: %v", r.instrument, err)
		monitoring.RecordRefreshError(r.instrument, r.source.GetName())
		return
	}

	if r.buffer.Push(bar) {
		monitoring.RecordBar(r.instrument, r.source.GetName(), bar.Close)
		if r.OnRefresh != nil {
			r.OnRefresh()
		}
	}
}
