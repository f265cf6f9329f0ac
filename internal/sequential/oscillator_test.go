package sequential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TDSentinel/internal/model"
)

func barsFromRanges(highs, lows []float64) []model.PriceBar {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(highs))
	for i := range highs {
		mid := (highs[i] + lows[i]) / 2
		bars[i] = model.PriceBar{
			Time:   base.AddDate(0, 0, i),
			Open:   mid,
			High:   highs[i],
			Low:    lows[i],
			Close:  mid,
			Volume: 1000,
		}
	}
	return bars
}

func TestOscillatorHandComputed(t *testing.T) {
	highs := []float64{10, 12, 11, 13, 13}
	lows := []float64{5, 6, 4, 3, 3}
	// up:   -, 2, 0, 2, 0
	// down: -, 0, 2, 1, 0
	out := computeOscillator(barsFromRanges(highs, lows), 3)
	require.Len(t, out, 5)

	assert.False(t, out[0].Valid)
	assert.False(t, out[1].Valid)
	assert.False(t, out[2].Valid)

	require.True(t, out[3].Valid)
	assert.InDelta(t, 4.0/7.0, out[3].Value, 1e-12)

	require.True(t, out[4].Valid)
	assert.InDelta(t, 2.0/5.0, out[4].Value, 1e-12)
}

func TestOscillatorZeroPressureUndefined(t *testing.T) {
	// Identical bars produce no pressure in either direction: the value is
	// undefined, never 0 or 1.
	highs := []float64{10, 10, 10, 10, 10, 10}
	lows := []float64{5, 5, 5, 5, 5, 5}
	out := computeOscillator(barsFromRanges(highs, lows), 3)
	for i, v := range out {
		assert.False(t, v.Valid, "bar %d", i)
	}
}

func TestOscillatorWarmup(t *testing.T) {
	bars := randomWalkBars(40, 3)
	period := 14
	out := computeOscillator(bars, period)
	for i := 0; i < period; i++ {
		assert.False(t, out[i].Valid, "bar %d", i)
	}
}

func TestOscillatorTinySeries(t *testing.T) {
	assert.Empty(t, computeOscillator(nil, 14))
	out := computeOscillator(barsFromRanges([]float64{10}, []float64{5}), 14)
	require.Len(t, out, 1)
	assert.False(t, out[0].Valid)
}
