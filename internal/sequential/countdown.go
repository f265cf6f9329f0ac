package sequential

import "TDSentinel/internal/model"

// countdownState carries the running countdown counters through the forward
// pass. The armed flags only matter when Config.RequireSetupNine is set.
type countdownState struct {
	bull, bear           int
	bullArmed, bearArmed bool
}

// step evaluates bar i in the fixed order: cancellation, recycling, arming,
// increment, cap. A cancelled counter stays at 0 for the whole bar even if
// the bar's own increment condition holds; a recycled counter begins
// counting again on the completion bar itself.
func (cd *countdownState) step(bars []model.PriceBar, states []model.BarState, i int, cfg Config) {
	if i < countdownLookback {
		return
	}
	st := &states[i]

	// Cancellation: an active opposing setup kills the countdown.
	bullCancelled := st.BearSetup >= cfg.CancelThreshold
	bearCancelled := st.BullSetup >= cfg.CancelThreshold
	if bullCancelled {
		cd.bull = 0
		cd.bullArmed = false
	}
	if bearCancelled {
		cd.bear = 0
		cd.bearArmed = false
	}

	// Recycling: a new same-direction setup completing restarts an
	// unfinished countdown. A countdown holding at 13 is never recycled.
	if !cfg.DisableRecycling {
		if st.BullSetup == setupComplete && cd.bull < countdownMax {
			cd.bull = 0
		}
		if st.BearSetup == setupComplete && cd.bear < countdownMax {
			cd.bear = 0
		}
	}

	if st.BullSetup == setupComplete {
		cd.bullArmed = true
	}
	if st.BearSetup == setupComplete {
		cd.bearArmed = true
	}

	if !bullCancelled && (!cfg.RequireSetupNine || cd.bullArmed) &&
		cd.bull < countdownMax && bars[i].Close <= bars[i-countdownLookback].Low {
		cd.bull++
	}
	if !bearCancelled && (!cfg.RequireSetupNine || cd.bearArmed) &&
		cd.bear < countdownMax && bars[i].Close >= bars[i-countdownLookback].High {
		cd.bear++
	}

	st.BullCountdown = cd.bull
	st.BearCountdown = cd.bear
}
