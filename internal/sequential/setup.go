package sequential

import "TDSentinel/internal/model"

// stepSetup computes the setup counts and perfection flags for bar i. Both
// directions are evaluated from the previous bar's counters, never from a
// value updated within the same step, and the flip conditions are mutually
// exclusive, so at most one direction is non-zero per bar.
func stepSetup(bars []model.PriceBar, states []model.BarState, i int) {
	if i < setupLookback {
		return
	}
	st := &states[i]
	prev := states[i-1]

	if bars[i].Close < bars[i-setupLookback].Close {
		st.BullSetup = prev.BullSetup + 1
	}
	if bars[i].Close > bars[i-setupLookback].Close {
		st.BearSetup = prev.BearSetup + 1
	}

	// Perfection is decided once, on the bar where the count reaches exactly
	// 9, and never revoked.
	if st.BullSetup == setupComplete {
		st.PerfectBuy = bars[i-8].High > bars[i-6].High || bars[i-8].High > bars[i-7].High
	}
	if st.BearSetup == setupComplete {
		st.PerfectSell = bars[i-8].Low < bars[i-6].Low || bars[i-8].Low < bars[i-7].Low
	}
}
