package sequential

import "fmt"

// Method constants. Setup and Countdown lookbacks are part of the method's
// definition and deliberately not configurable.
const (
	setupLookback     = 4
	countdownLookback = 2
	setupComplete     = 9
	countdownMax      = 13
	proximityLookback = 8

	buyOscillatorMax  = 0.3
	sellOscillatorMin = 0.7

	// Perfection needs the highs/lows 8 bars behind a completed setup.
	minComputableBars = 12
)

// EventKind selects which event stream feeds the per-direction age and
// status fields of the output records.
type EventKind string

const (
	// EventSetupNine keys recency on setup counts reaching 9.
	EventSetupNine EventKind = "setup9"
	// EventExhaustion keys recency on validated countdown-13 exhaustions.
	EventExhaustion EventKind = "countdown13"
)

// Config parameterizes a single engine run. The zero value means "use
// defaults" for every field. Observed charting platforms disagree on
// cancellation, recycling, countdown gating and recency windows; those
// choices are explicit fields here instead of baked-in behavior.
type Config struct {
	// OscillatorPeriod is the confirmation oscillator window (default 14).
	OscillatorPeriod int
	// VolumeWindow is the trailing mean-volume window used by exhaustion
	// validation (default 20).
	VolumeWindow int
	// CancelThreshold is the opposing setup count at which a running
	// countdown is cancelled (default 1: any opposing setup).
	CancelThreshold int
	// DisableRecycling turns off the countdown reset on a new same-direction
	// setup completing before the countdown reaches 13.
	DisableRecycling bool
	// RequireSetupNine keeps a countdown disarmed until a same-direction
	// setup of 9 completes. Cancellation disarms it again.
	RequireSetupNine bool
	// SetupActiveWindow is the recency band for setup-9 events (default 4).
	SetupActiveWindow int
	// CountdownActiveWindow is the recency band for validated exhaustion
	// events (default 8).
	CountdownActiveWindow int
	// QualifyingEvent selects the stream mirrored into BullAge/BearAge and
	// BullStatus/BearStatus (default EventSetupNine).
	QualifyingEvent EventKind
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	c := Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.OscillatorPeriod == 0 {
		c.OscillatorPeriod = 14
	}
	if c.VolumeWindow == 0 {
		c.VolumeWindow = 20
	}
	if c.CancelThreshold == 0 {
		c.CancelThreshold = 1
	}
	if c.SetupActiveWindow == 0 {
		c.SetupActiveWindow = 4
	}
	if c.CountdownActiveWindow == 0 {
		c.CountdownActiveWindow = 8
	}
	if c.QualifyingEvent == "" {
		c.QualifyingEvent = EventSetupNine
	}
}

func (c Config) validate() error {
	if c.OscillatorPeriod < 1 {
		return fmt.Errorf("oscillator period must be positive, got %d", c.OscillatorPeriod)
	}
	if c.VolumeWindow < 1 {
		return fmt.Errorf("volume window must be positive, got %d", c.VolumeWindow)
	}
	if c.CancelThreshold < 1 {
		return fmt.Errorf("cancel threshold must be positive, got %d", c.CancelThreshold)
	}
	if c.SetupActiveWindow < 1 || c.CountdownActiveWindow < 1 {
		return fmt.Errorf("recency windows must be positive")
	}
	if c.QualifyingEvent != EventSetupNine && c.QualifyingEvent != EventExhaustion {
		return fmt.Errorf("unknown qualifying event %q", c.QualifyingEvent)
	}
	return nil
}

// minBars is the shortest series the engine will compute over. Shorter
// series yield all-undefined records instead of partial output.
func (c Config) minBars() int {
	if n := c.OscillatorPeriod + 1; n > minComputableBars {
		return n
	}
	return minComputableBars
}
