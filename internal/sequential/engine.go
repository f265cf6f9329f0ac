// Package sequential implements the TD Sequential exhaustion engine: per-bar
// setup and countdown counts, setup perfection, a DeMarker-style confirmation
// oscillator, validated exhaustion flags and signal recency classification.
//
// Run is a pure function of its inputs. It holds no state between calls, so
// callers may run instruments in parallel without locking.
package sequential

import (
	"fmt"

	"TDSentinel/internal/model"
)

// Run computes one BarState per input bar, in index order. It returns an
// error only for malformed input (unsorted or duplicate timestamps,
// non-finite values) or an invalid config. A series shorter than the minimum
// lookback yields a length-matched slice of undefined records instead.
func Run(series model.PriceSeries, cfg Config) ([]model.BarState, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("invalid series: %w", err)
	}

	states := make([]model.BarState, series.Len())
	if series.Len() < cfg.minBars() {
		return states, nil
	}

	bars := series.Bars
	osc := computeOscillator(bars, cfg.OscillatorPeriod)

	var cd countdownState
	val := exhaustionValidator{window: cfg.VolumeWindow}
	rec := newRecencyTracker(cfg)

	for i := range bars {
		st := &states[i]
		st.Computed = true
		st.Oscillator = osc[i]

		stepSetup(bars, states, i)
		cd.step(bars, states, i, cfg)
		val.step(bars, states, i)
		rec.step(states, i)
	}
	return states, nil
}
