package model

// OptFloat is a float64 that may be undefined. Valid is false when the value
// could not be computed; a genuinely-zero value carries Valid=true.
type OptFloat struct {
	Value float64
	Valid bool
}

// Float returns a defined OptFloat.
func Float(v float64) OptFloat { return OptFloat{Value: v, Valid: true} }

// OptInt is an int that may be undefined.
type OptInt struct {
	Value int
	Valid bool
}

// Int returns a defined OptInt.
func Int(v int) OptInt { return OptInt{Value: v, Valid: true} }

// Status classifies how recently a signal event occurred. The zero value
// means no event has occurred yet in the series history.
type Status string

const (
	StatusNone    Status = ""
	StatusFresh   Status = "Fresh"
	StatusActive  Status = "Active"
	StatusExpired Status = "Expired"
)

// Recency is the age of the most recent occurrence of one event stream and
// its classification band. Age is undefined until the first occurrence.
type Recency struct {
	Age    OptInt
	Status Status
}

// BarState is the engine output for a single input bar. Records are written
// once, in index order, and never mutated afterwards.
type BarState struct {
	// Computed is false when the whole record is undefined, i.e. the input
	// series was shorter than the minimum lookback. Zero counts and false
	// flags are meaningful only when Computed is true.
	Computed bool

	// Setup counts. At most one direction is non-zero on any bar.
	BullSetup int
	BearSetup int

	// Perfection flags, meaningful only on the bar where the corresponding
	// setup count reaches exactly 9.
	PerfectBuy  bool
	PerfectSell bool

	// Countdown counts, each in [0, 13].
	BullCountdown int
	BearCountdown int

	// Validated exhaustion flags (countdown 13 plus oscillator, volume and
	// price-proximity confirmation).
	ValidBuyExhaustion  bool
	ValidSellExhaustion bool

	// Oscillator is the confirmation oscillator in [0, 1], undefined for the
	// warmup bars and whenever total pressure is zero.
	Oscillator OptFloat

	// Per-stream recency: Setup-9 and validated Countdown-13 occurrences,
	// both directions.
	BullSetupRecency      Recency
	BearSetupRecency      Recency
	BullExhaustionRecency Recency
	BearExhaustionRecency Recency

	// BullAge/BearAge mirror whichever stream the engine config selects as
	// the qualifying event; external consumers read these.
	BullAge    OptInt
	BearAge    OptInt
	BullStatus Status
	BearStatus Status
}
