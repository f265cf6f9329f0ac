package collector

import (
	"context"
	"time"

	"TDSentinel/internal/model"
)

// Fetcher defines the interface for retrieving the instrument universe and
// price history.
type Fetcher interface {
	FetchInstruments(ctx context.Context) ([]model.Instrument, error)
	FetchDailyBars(ctx context.Context, segment, token string, days int) ([]model.PriceBar, error)
	FetchMinuteBars(ctx context.Context, segment, token string, days int) ([]model.PriceBar, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Instruments []model.Instrument
	DailyData   map[string][]model.PriceBar
	MinuteData  map[string][]model.PriceBar
	Err         error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchInstruments(_ context.Context) ([]model.Instrument, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Instruments, nil
}

func (m *MockFetcher) FetchDailyBars(_ context.Context, _, token string, days int) ([]model.PriceBar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.DailyData[token]; ok {
		return bars, nil
	}
	return generateMockBars(100, days, 24*time.Hour), nil
}

func (m *MockFetcher) FetchMinuteBars(_ context.Context, _, token string, days int) ([]model.PriceBar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.MinuteData[token]; ok {
		return bars, nil
	}
	return generateMockBars(100, days*375, time.Minute), nil
}

func generateMockBars(basePrice float64, count int, step time.Duration) []model.PriceBar {
	start := time.Now().Add(-time.Duration(count) * step).Truncate(step)
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Time:   start.Add(time.Duration(i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
