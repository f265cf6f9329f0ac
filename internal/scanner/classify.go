package scanner

import (
	"TDSentinel/internal/model"
)

// Classify inspects the last bar of an engine run and decides whether it is
// worth alerting on: an early setup (7-8), a completed setup (9), or a
// countdown at 13. Returns false when the last bar is quiet, undefined, or a
// countdown signal has gone stale.
func Classify(series model.PriceSeries, states []model.BarState) (model.SymbolSignal, bool) {
	n := len(states)
	if n == 0 || n != series.Len() {
		return model.SymbolSignal{}, false
	}
	st := states[n-1]
	if !st.Computed {
		return model.SymbolSignal{}, false
	}

	bar := series.Bars[n-1]
	sig := model.SymbolSignal{
		Symbol:     series.Symbol,
		BarTime:    bar.Time,
		Close:      bar.Close,
		Oscillator: st.Oscillator,
	}

	var prev model.BarState
	if n > 1 {
		prev = states[n-2]
	}

	switch {
	case st.BullCountdown >= 13:
		if stale(st.BullExhaustionRecency, st.ValidBuyExhaustion, prev.BullCountdown) {
			return model.SymbolSignal{}, false
		}
		sig.Kind = model.SignalCountdown
		sig.Direction = model.DirectionBuy
		sig.Setup = st.BullSetup
		sig.Countdown = st.BullCountdown
		sig.Validated = st.ValidBuyExhaustion
		sig.Age = st.BullExhaustionRecency.Age
		sig.Status = st.BullExhaustionRecency.Status

	case st.BearCountdown >= 13:
		if stale(st.BearExhaustionRecency, st.ValidSellExhaustion, prev.BearCountdown) {
			return model.SymbolSignal{}, false
		}
		sig.Kind = model.SignalCountdown
		sig.Direction = model.DirectionSell
		sig.Setup = st.BearSetup
		sig.Countdown = st.BearCountdown
		sig.Validated = st.ValidSellExhaustion
		sig.Age = st.BearExhaustionRecency.Age
		sig.Status = st.BearExhaustionRecency.Status

	case st.BullSetup == 9:
		sig.Kind = model.SignalActive
		sig.Direction = model.DirectionBuy
		sig.Setup = st.BullSetup
		sig.Countdown = st.BullCountdown
		sig.Perfected = st.PerfectBuy
		sig.Age = st.BullSetupRecency.Age
		sig.Status = st.BullSetupRecency.Status

	case st.BearSetup == 9:
		sig.Kind = model.SignalActive
		sig.Direction = model.DirectionSell
		sig.Setup = st.BearSetup
		sig.Countdown = st.BearCountdown
		sig.Perfected = st.PerfectSell
		sig.Age = st.BearSetupRecency.Age
		sig.Status = st.BearSetupRecency.Status

	case st.BullSetup >= 7:
		sig.Kind = model.SignalEarly
		sig.Direction = model.DirectionBuy
		sig.Setup = st.BullSetup
		sig.Countdown = st.BullCountdown

	case st.BearSetup >= 7:
		sig.Kind = model.SignalEarly
		sig.Direction = model.DirectionSell
		sig.Setup = st.BearSetup
		sig.Countdown = st.BearCountdown

	default:
		return model.SymbolSignal{}, false
	}

	return sig, true
}

// stale reports whether a held countdown-13 is old news: it did not reach 13
// on this bar, is not validated now, and its last validated exhaustion (if
// any) has expired.
func stale(rec model.Recency, validatedNow bool, prevCountdown int) bool {
	if validatedNow || prevCountdown < 13 {
		return false
	}
	return rec.Status == model.StatusExpired || rec.Status == model.StatusNone
}

// AlignedWith reports whether an intraday engine run confirms the daily
// signal: a setup of 7 or more in the same direction on the last bar.
func AlignedWith(sig model.SymbolSignal, states []model.BarState) bool {
	if len(states) == 0 {
		return false
	}
	st := states[len(states)-1]
	if !st.Computed {
		return false
	}
	if sig.Direction == model.DirectionBuy {
		return st.BullSetup >= 7
	}
	return st.BearSetup >= 7
}
