package sequential

import "TDSentinel/internal/model"

// recencyTracker carries the index of the most recent occurrence of each
// event stream: setup-9 and validated exhaustion, both directions. The
// last-seen indices are updated in the same forward pass that finalizes the
// events, so an event bar always classifies as Fresh.
type recencyTracker struct {
	cfg Config

	lastBullSetup int
	lastBearSetup int
	lastBullExh   int
	lastBearExh   int
}

func newRecencyTracker(cfg Config) *recencyTracker {
	return &recencyTracker{
		cfg:           cfg,
		lastBullSetup: -1,
		lastBearSetup: -1,
		lastBullExh:   -1,
		lastBearExh:   -1,
	}
}

func (t *recencyTracker) step(states []model.BarState, i int) {
	st := &states[i]

	if st.BullSetup == setupComplete {
		t.lastBullSetup = i
	}
	if st.BearSetup == setupComplete {
		t.lastBearSetup = i
	}
	if st.ValidBuyExhaustion {
		t.lastBullExh = i
	}
	if st.ValidSellExhaustion {
		t.lastBearExh = i
	}

	st.BullSetupRecency = classifyRecency(i, t.lastBullSetup, t.cfg.SetupActiveWindow)
	st.BearSetupRecency = classifyRecency(i, t.lastBearSetup, t.cfg.SetupActiveWindow)
	st.BullExhaustionRecency = classifyRecency(i, t.lastBullExh, t.cfg.CountdownActiveWindow)
	st.BearExhaustionRecency = classifyRecency(i, t.lastBearExh, t.cfg.CountdownActiveWindow)

	bull, bear := st.BullSetupRecency, st.BearSetupRecency
	if t.cfg.QualifyingEvent == EventExhaustion {
		bull, bear = st.BullExhaustionRecency, st.BearExhaustionRecency
	}
	st.BullAge, st.BullStatus = bull.Age, bull.Status
	st.BearAge, st.BearStatus = bear.Age, bear.Status
}

// classifyRecency bands an event age: 0 is Fresh, within the window is
// Active, beyond it Expired. Before the first occurrence both the age and
// the status are undefined, not Expired.
func classifyRecency(i, lastSeen, window int) model.Recency {
	if lastSeen < 0 {
		return model.Recency{Status: model.StatusNone}
	}
	age := i - lastSeen
	r := model.Recency{Age: model.Int(age)}
	switch {
	case age == 0:
		r.Status = model.StatusFresh
	case age <= window:
		r.Status = model.StatusActive
	default:
		r.Status = model.StatusExpired
	}
	return r
}
