package sequential

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TDSentinel/internal/model"
)

func barsFromCloses(closes []float64) []model.PriceBar {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{
			Time:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func testSeries(t *testing.T, bars []model.PriceBar) model.PriceSeries {
	t.Helper()
	s, err := model.NewPriceSeries("TEST", "day", bars)
	require.NoError(t, err)
	return s
}

func TestSetupBuildUp(t *testing.T) {
	// 13 bars: from bar 4 onward each close is below the close 4 bars back.
	closes := []float64{10, 10, 10, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	series := testSeries(t, barsFromCloses(closes))

	states, err := Run(series, Config{OscillatorPeriod: 2})
	require.NoError(t, err)
	require.Len(t, states, 13)

	want := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	for k, w := range want {
		i := 4 + k
		assert.Equal(t, w, states[i].BullSetup, "bull setup at bar %d", i)
		assert.Zero(t, states[i].BearSetup, "bear setup at bar %d", i)
	}

	// Perfection at the completion bar: high[4] beats high[6] here.
	assert.True(t, states[12].PerfectBuy)
	assert.Equal(t, model.StatusFresh, states[12].BullSetupRecency.Status)
	assert.Equal(t, model.Int(0), states[12].BullSetupRecency.Age)
}

func TestSetupBreakRestartsCount(t *testing.T) {
	// Same as the build-up series, but bar 8 matches the close 4 bars back,
	// which is not a flip: the count must drop to exactly 0 and restart.
	closes := []float64{10, 10, 10, 10, 9, 8, 7, 6, 9, 4, 3, 2, 1}
	series := testSeries(t, barsFromCloses(closes))

	states, err := Run(series, Config{OscillatorPeriod: 2})
	require.NoError(t, err)

	assert.Equal(t, 4, states[7].BullSetup)
	assert.Zero(t, states[8].BullSetup)
	assert.Zero(t, states[8].BearSetup)
	assert.Equal(t, 1, states[9].BullSetup)
	assert.Equal(t, 4, states[12].BullSetup)
}

// cancellationCloses builds a bull countdown through bar 9, then makes
// bar 10 rise above the close 4 bars back (bear setup 1) while still
// satisfying the bull increment condition (close <= low two bars back).
func cancellationCloses() []float64 {
	return []float64{30, 30, 30, 30, 20, 19, 10, 9, 14, 8, 11, 7}
}

func TestCountdownCancellation(t *testing.T) {
	series := testSeries(t, barsFromCloses(cancellationCloses()))

	states, err := Run(series, Config{OscillatorPeriod: 2})
	require.NoError(t, err)

	// Countdown accumulated before the opposing setup shows up.
	assert.Equal(t, 5, states[9].BullCountdown)
	require.Equal(t, 1, states[10].BearSetup)

	// Bar 10 satisfies close <= low[8], yet the cancelled countdown must
	// read 0, not 1.
	assert.LessOrEqual(t, series.Bars[10].Close, series.Bars[8].Low)
	assert.Zero(t, states[10].BullCountdown)
}

func TestCountdownCancelThresholdNine(t *testing.T) {
	// The drifted variant only cancels on a completed opposing setup. With
	// the threshold at 9, a bear setup of 1 leaves the countdown running.
	series := testSeries(t, barsFromCloses(cancellationCloses()))

	states, err := Run(series, Config{OscillatorPeriod: 2, CancelThreshold: 9})
	require.NoError(t, err)

	assert.Equal(t, 5, states[9].BullCountdown)
	assert.Equal(t, 6, states[10].BullCountdown)
}

func declineCloses(n int, start float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start - float64(i)
	}
	return closes
}

func TestCountdownRecycling(t *testing.T) {
	// A steady decline completes a setup at bar 12 while the countdown sits
	// at 10: recycling restarts the count from the completion bar.
	series := testSeries(t, barsFromCloses(declineCloses(16, 50)))

	states, err := Run(series, Config{OscillatorPeriod: 2})
	require.NoError(t, err)

	assert.Equal(t, 10, states[11].BullCountdown)
	require.Equal(t, 9, states[12].BullSetup)
	assert.Equal(t, 1, states[12].BullCountdown)
	assert.Equal(t, 2, states[13].BullCountdown)
}

func TestCountdownRecyclingDisabled(t *testing.T) {
	series := testSeries(t, barsFromCloses(declineCloses(16, 50)))

	states, err := Run(series, Config{OscillatorPeriod: 2, DisableRecycling: true})
	require.NoError(t, err)

	assert.Equal(t, 11, states[12].BullCountdown)
	assert.Equal(t, 13, states[14].BullCountdown)
	// Capped and held, not recycled, for the rest of the series.
	assert.Equal(t, 13, states[15].BullCountdown)
}

func TestCountdownRequiresSetupNine(t *testing.T) {
	series := testSeries(t, barsFromCloses(declineCloses(30, 50)))

	states, err := Run(series, Config{
		OscillatorPeriod: 2,
		RequireSetupNine: true,
		DisableRecycling: true,
	})
	require.NoError(t, err)

	// Disarmed until the setup completes at bar 12.
	assert.Zero(t, states[11].BullCountdown)
	assert.Equal(t, 1, states[12].BullCountdown)
	assert.Equal(t, 13, states[24].BullCountdown)
}

func TestExhaustionRejectedWhenOscillatorUndefined(t *testing.T) {
	// Countdown reaches 13 at bar 14, but the oscillator needs 18 prior
	// bars: validation must read false, not unknown.
	closes := declineCloses(20, 40)
	bars := barsFromCloses(closes)
	for i := range bars {
		bars[i].Volume = 1000 - 10*float64(i)
	}
	series := testSeries(t, bars)

	states, err := Run(series, Config{
		OscillatorPeriod: 18,
		VolumeWindow:     5,
		DisableRecycling: true,
	})
	require.NoError(t, err)

	require.Equal(t, 13, states[14].BullCountdown)
	assert.False(t, states[14].Oscillator.Valid)
	assert.False(t, states[14].ValidBuyExhaustion)

	// Once the oscillator is defined the same conditions validate: a pure
	// decline pins it to 0, volume is contracting, and the low has
	// round-tripped below the close 8 bars back.
	require.True(t, states[18].Oscillator.Valid)
	assert.Less(t, states[18].Oscillator.Value, buyOscillatorMax)
	assert.Equal(t, 13, states[18].BullCountdown)
	assert.True(t, states[18].ValidBuyExhaustion)
	assert.Equal(t, model.StatusFresh, states[18].BullExhaustionRecency.Status)
}

func TestBearExhaustionValidation(t *testing.T) {
	// Mirror case: a steady advance with contracting volume.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 20 + float64(i)
	}
	bars := barsFromCloses(closes)
	for i := range bars {
		bars[i].Volume = 1000 - 10*float64(i)
	}
	series := testSeries(t, bars)

	states, err := Run(series, Config{
		OscillatorPeriod: 5,
		VolumeWindow:     5,
		DisableRecycling: true,
	})
	require.NoError(t, err)

	require.Equal(t, 13, states[14].BearCountdown)
	require.True(t, states[14].Oscillator.Valid)
	assert.Greater(t, states[14].Oscillator.Value, sellOscillatorMin)
	assert.True(t, states[14].ValidSellExhaustion)
	assert.False(t, states[14].ValidBuyExhaustion)
}

func TestRecencyClassificationBands(t *testing.T) {
	// One setup-9 event at bar 20, nothing afterwards: Fresh at the event
	// bar, Active through the window, Expired beyond it.
	closes := make([]float64, 26)
	for i := 0; i < 12; i++ {
		closes[i] = 100
	}
	for i := 12; i < 26; i++ {
		closes[i] = 100 - float64(i-11)
	}
	series := testSeries(t, barsFromCloses(closes))

	states, err := Run(series, Config{OscillatorPeriod: 2})
	require.NoError(t, err)

	// No event yet: age and status undefined, not Expired.
	assert.False(t, states[11].BullAge.Valid)
	assert.Equal(t, model.StatusNone, states[11].BullStatus)

	require.Equal(t, 9, states[20].BullSetup)
	assert.Equal(t, model.StatusFresh, states[20].BullStatus)
	assert.Equal(t, model.Int(0), states[20].BullAge)
	for i := 21; i <= 24; i++ {
		assert.Equal(t, model.StatusActive, states[i].BullStatus, "bar %d", i)
		assert.Equal(t, model.Int(i-20), states[i].BullAge, "bar %d", i)
	}
	assert.Equal(t, model.StatusExpired, states[25].BullStatus)
	assert.Equal(t, model.Int(5), states[25].BullAge)
}

func TestQualifyingEventSelectsExhaustionStream(t *testing.T) {
	closes := declineCloses(20, 40)
	bars := barsFromCloses(closes)
	for i := range bars {
		bars[i].Volume = 1000 - 10*float64(i)
	}
	series := testSeries(t, bars)

	states, err := Run(series, Config{
		OscillatorPeriod: 5,
		VolumeWindow:     5,
		DisableRecycling: true,
		QualifyingEvent:  EventExhaustion,
	})
	require.NoError(t, err)

	// Setup-9 happened at bar 12, but the mirrored age must follow the
	// validated exhaustion stream instead.
	require.True(t, states[14].ValidBuyExhaustion)
	assert.Equal(t, model.Int(0), states[14].BullAge)
	assert.Equal(t, model.StatusFresh, states[14].BullStatus)
}

func TestShortSeriesAllUndefined(t *testing.T) {
	series := testSeries(t, barsFromCloses(declineCloses(10, 50)))

	states, err := Run(series, Config{})
	require.NoError(t, err)
	require.Len(t, states, 10)
	for i, st := range states {
		assert.False(t, st.Computed, "bar %d", i)
		assert.False(t, st.Oscillator.Valid, "bar %d", i)
		assert.Equal(t, model.StatusNone, st.BullStatus, "bar %d", i)
	}
}

func TestEmptySeries(t *testing.T) {
	states, err := Run(model.PriceSeries{Symbol: "TEST"}, Config{})
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestMalformedSeriesRejected(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("duplicate timestamps", func(t *testing.T) {
		bars := barsFromCloses(declineCloses(15, 50))
		bars[7].Time = bars[6].Time
		_, err := Run(model.PriceSeries{Symbol: "TEST", Bars: bars}, Config{})
		assert.Error(t, err)
	})

	t.Run("unsorted timestamps", func(t *testing.T) {
		bars := barsFromCloses(declineCloses(15, 50))
		bars[3].Time = base.AddDate(0, 0, 30)
		_, err := Run(model.PriceSeries{Symbol: "TEST", Bars: bars}, Config{})
		assert.Error(t, err)
	})

	t.Run("non-finite close", func(t *testing.T) {
		bars := barsFromCloses(declineCloses(15, 50))
		bars[5].Close = math.NaN()
		_, err := Run(model.PriceSeries{Symbol: "TEST", Bars: bars}, Config{})
		assert.Error(t, err)
	})

	t.Run("negative volume", func(t *testing.T) {
		bars := barsFromCloses(declineCloses(15, 50))
		bars[5].Volume = -1
		_, err := Run(model.PriceSeries{Symbol: "TEST", Bars: bars}, Config{})
		assert.Error(t, err)
	})
}

func TestInvalidConfigRejected(t *testing.T) {
	series := testSeries(t, barsFromCloses(declineCloses(30, 50)))

	_, err := Run(series, Config{OscillatorPeriod: -1})
	assert.Error(t, err)

	_, err = Run(series, Config{QualifyingEvent: EventKind("bogus")})
	assert.Error(t, err)
}

func randomWalkBars(n int, seed int64) []model.PriceBar {
	rng := rand.New(rand.NewSource(seed))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, n)
	price := 100.0
	for i := range bars {
		price += rng.Float64()*4 - 2
		high := price + rng.Float64()*2
		low := price - rng.Float64()*2
		bars[i] = model.PriceBar{
			Time:   base.AddDate(0, 0, i),
			Open:   price,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: 100000 + rng.Float64()*50000,
		}
	}
	return bars
}

func TestRunInvariants(t *testing.T) {
	series := testSeries(t, randomWalkBars(300, 42))

	states, err := Run(series, Config{})
	require.NoError(t, err)
	require.Len(t, states, series.Len())

	for i, st := range states {
		if st.BullSetup > 0 {
			assert.Zero(t, st.BearSetup, "mutual exclusivity at bar %d", i)
		}
		if st.BearSetup > 0 {
			assert.Zero(t, st.BullSetup, "mutual exclusivity at bar %d", i)
		}
		if i > 0 {
			// Monotonic reset: a counter is either prev+1 or exactly 0.
			if st.BullSetup != 0 {
				assert.Equal(t, states[i-1].BullSetup+1, st.BullSetup, "bull setup at bar %d", i)
			}
			if st.BearSetup != 0 {
				assert.Equal(t, states[i-1].BearSetup+1, st.BearSetup, "bear setup at bar %d", i)
			}
		}
		assert.GreaterOrEqual(t, st.BullCountdown, 0, "bar %d", i)
		assert.LessOrEqual(t, st.BullCountdown, 13, "bar %d", i)
		assert.GreaterOrEqual(t, st.BearCountdown, 0, "bar %d", i)
		assert.LessOrEqual(t, st.BearCountdown, 13, "bar %d", i)
		if st.Oscillator.Valid {
			assert.GreaterOrEqual(t, st.Oscillator.Value, 0.0, "bar %d", i)
			assert.LessOrEqual(t, st.Oscillator.Value, 1.0, "bar %d", i)
		}
	}
}

func TestRunIdempotent(t *testing.T) {
	series := testSeries(t, randomWalkBars(250, 7))
	cfg := Config{VolumeWindow: 10}

	first, err := Run(series, cfg)
	require.NoError(t, err)
	second, err := Run(series, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
