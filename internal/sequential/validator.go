package sequential

import "TDSentinel/internal/model"

// exhaustionValidator gates a completed countdown behind three confirmation
// filters: the oscillator in its exhaustion zone, contracting volume, and
// price round-tripping past the close 8 bars back. An undefined oscillator
// rejects the bar outright; absence of confirmation is never "unknown".
type exhaustionValidator struct {
	window int
	volSum float64
}

func (v *exhaustionValidator) step(bars []model.PriceBar, states []model.BarState, i int) {
	v.volSum += bars[i].Volume
	if i >= v.window {
		v.volSum -= bars[i-v.window].Volume
	}

	st := &states[i]
	if i+1 < v.window || i < proximityLookback {
		return
	}
	avgVol := v.volSum / float64(v.window)
	contracting := avgVol > bars[i].Volume

	if st.BullCountdown >= countdownMax &&
		st.Oscillator.Valid && st.Oscillator.Value < buyOscillatorMax &&
		contracting && bars[i].Low <= bars[i-proximityLookback].Close {
		st.ValidBuyExhaustion = true
	}
	if st.BearCountdown >= countdownMax &&
		st.Oscillator.Valid && st.Oscillator.Value > sellOscillatorMin &&
		contracting && bars[i].High >= bars[i-proximityLookback].Close {
		st.ValidSellExhaustion = true
	}
}
