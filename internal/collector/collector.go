// Package collector retrieves instrument universes and price history and
// turns them into validated series for the sequential engine.
package collector

import (
	"context"
	"fmt"
	"time"

	"TDSentinel/internal/model"
)

// Collector wraps a Fetcher and produces validated PriceSeries.
type Collector struct {
	Fetcher Fetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Universe fetches the instrument master and filters it to the given
// segment. An empty segment keeps everything.
func (c *Collector) Universe(ctx context.Context, segment string) ([]model.Instrument, error) {
	instruments, err := c.Fetcher.FetchInstruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch instruments: %w", err)
	}
	if segment == "" {
		return instruments, nil
	}
	filtered := instruments[:0]
	for _, inst := range instruments {
		if inst.Segment == segment {
			filtered = append(filtered, inst)
		}
	}
	return filtered, nil
}

// DailySeries fetches daily history for one instrument as a validated series.
func (c *Collector) DailySeries(ctx context.Context, inst model.Instrument, days int) (model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchDailyBars(ctx, inst.Segment, inst.Token, days)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch daily bars for %s: %w", inst.Symbol, err)
	}
	return model.NewPriceSeries(inst.Symbol, "day", bars)
}

// HourlySeries fetches minute history and resamples it to 60-minute bars.
func (c *Collector) HourlySeries(ctx context.Context, inst model.Instrument, days int) (model.PriceSeries, error) {
	bars, err := c.Fetcher.FetchMinuteBars(ctx, inst.Segment, inst.Token, days)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch minute bars for %s: %w", inst.Symbol, err)
	}
	return model.NewPriceSeries(inst.Symbol, "60min", Resample(bars, time.Hour))
}
