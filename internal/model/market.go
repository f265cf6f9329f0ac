package model

import (
	"fmt"
	"math"
	"time"
)

// PriceBar represents a single OHLCV candlestick bar.
type PriceBar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds time-ordered price data for one instrument and timeframe.
// Bars must be strictly increasing by timestamp.
type PriceSeries struct {
	Symbol    string
	Timeframe string
	Bars      []PriceBar
}

// NewPriceSeries builds a validated series.
func NewPriceSeries(symbol, timeframe string, bars []PriceBar) (PriceSeries, error) {
	s := PriceSeries{Symbol: symbol, Timeframe: timeframe, Bars: bars}
	if err := s.Validate(); err != nil {
		return PriceSeries{}, err
	}
	return s, nil
}

// Validate checks ordering and value invariants: strictly ascending unique
// timestamps, finite prices, finite non-negative volume.
func (s PriceSeries) Validate() error {
	for i, b := range s.Bars {
		for _, v := range [4]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("bar %d: non-finite price", i)
			}
		}
		if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) || b.Volume < 0 {
			return fmt.Errorf("bar %d: invalid volume %v", i, b.Volume)
		}
		if i > 0 && !s.Bars[i-1].Time.Before(b.Time) {
			return fmt.Errorf("bar %d: timestamp %s not after %s",
				i, b.Time.Format(time.RFC3339), s.Bars[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Len returns the number of bars in the series.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Instrument is one row of the exchange master file.
type Instrument struct {
	Segment    string
	Token      string
	Symbol     string
	TradingSym string
	Type       string
	Company    string
}
