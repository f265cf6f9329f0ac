package sequential

import (
	"TDSentinel/internal/model"
)

// computeOscillator returns the confirmation oscillator for every bar: the
// trailing period-mean of upward pressure divided by the total trailing
// pressure, bounded in [0,1]. A bar's value is undefined while fewer than
// `period` prior bars exist, and whenever total pressure is zero — a flat
// window carries no confirmation and must not read as 0 or 1.
func computeOscillator(bars []model.PriceBar, period int) []model.OptFloat {
	out := make([]model.OptFloat, len(bars))
	if len(bars) < 2 {
		return out
	}

	up := make([]float64, len(bars))
	down := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		if d := bars[i].High - bars[i-1].High; d > 0 {
			up[i] = d
		}
		if d := bars[i-1].Low - bars[i].Low; d > 0 {
			down[i] = d
		}
	}

	var sumUp, sumDown float64
	for i := 1; i < len(bars); i++ {
		sumUp += up[i]
		sumDown += down[i]
		if i > period {
			sumUp -= up[i-period]
			sumDown -= down[i-period]
		}
		if i < period {
			continue
		}
		total := sumUp + sumDown
		if total == 0 {
			continue
		}
		out[i] = model.Float(sumUp / total)
	}
	return out
}
