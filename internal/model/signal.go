package model

import "time"

// Direction of a detected exhaustion signal.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// SignalKind classifies the strength of the last-bar state.
type SignalKind string

const (
	// SignalEarly fires on a setup count of 7 or 8.
	SignalEarly SignalKind = "EARLY"
	// SignalActive fires on a completed setup of 9.
	SignalActive SignalKind = "ACTIVE"
	// SignalCountdown fires on a countdown of 13.
	SignalCountdown SignalKind = "COUNTDOWN13"
)

// SymbolSignal is one alert candidate assembled by the scanner from the
// engine output of a single instrument.
type SymbolSignal struct {
	Symbol     string
	Company    string
	Kind       SignalKind
	Direction  Direction
	BarTime    time.Time
	Close      float64
	Setup      int
	Countdown  int
	Perfected  bool
	Validated  bool
	Oscillator OptFloat
	ContextRSI OptFloat
	Age        OptInt
	Status     Status
	// Aligned is set when the 60-minute series shows a setup of 7 or more in
	// the same direction.
	Aligned bool
}

// ScanSummary describes one completed universe scan.
type ScanSummary struct {
	StartedAt    time.Time
	Duration     time.Duration
	UniverseSize int
	Scanned      int
	Skipped      int
	Signals      int
}
