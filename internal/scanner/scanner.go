// Package scanner runs the sequential engine across an instrument universe
// and assembles alert candidates from the last-bar states.
package scanner

import (
	"context"
	"fmt"
	"time"

	talib "github.com/markcheno/go-talib"
	"github.com/rs/zerolog/log"

	"TDSentinel/internal/collector"
	"TDSentinel/internal/model"
	"TDSentinel/internal/sequential"
)

const contextRSIPeriod = 14

// Config controls one scan pass.
type Config struct {
	// Segment filters the instrument master (e.g. "EQ"); empty keeps all.
	Segment string
	// HistoryDays is how far back daily history is fetched.
	HistoryDays int
	// IntradayDays is how far back minute history is fetched for alignment.
	IntradayDays int
	// MinAvgVolume skips instruments whose trailing mean volume is below
	// this floor. Zero disables the filter.
	MinAvgVolume float64
	// VolumeLookback is the trailing window for the liquidity filter.
	VolumeLookback int
	// MaxInstruments caps the universe per scan. Zero means no cap.
	MaxInstruments int
	// Engine parameterizes the sequential engine runs.
	Engine sequential.Config
}

func (c *Config) applyDefaults() {
	if c.HistoryDays == 0 {
		c.HistoryDays = 120
	}
	if c.IntradayDays == 0 {
		c.IntradayDays = 10
	}
	if c.VolumeLookback == 0 {
		c.VolumeLookback = 5
	}
}

// Scanner iterates a universe and produces SymbolSignals.
type Scanner struct {
	collector *collector.Collector
	cfg       Config
}

// New creates a Scanner.
func New(col *collector.Collector, cfg Config) *Scanner {
	cfg.applyDefaults()
	return &Scanner{collector: col, cfg: cfg}
}

// Scan fetches the universe and evaluates every instrument. Per-instrument
// failures are skipped, not fatal; only a universe fetch failure or context
// cancellation aborts the scan.
func (s *Scanner) Scan(ctx context.Context) (model.ScanSummary, []model.SymbolSignal, error) {
	started := time.Now()
	sum := model.ScanSummary{StartedAt: started}

	universe, err := s.collector.Universe(ctx, s.cfg.Segment)
	if err != nil {
		return sum, nil, fmt.Errorf("scan universe: %w", err)
	}
	if s.cfg.MaxInstruments > 0 && len(universe) > s.cfg.MaxInstruments {
		universe = universe[:s.cfg.MaxInstruments]
	}
	sum.UniverseSize = len(universe)
	log.Info().Int("universe", len(universe)).Str("segment", s.cfg.Segment).Msg("scan started")

	var signals []model.SymbolSignal
	for _, inst := range universe {
		if err := ctx.Err(); err != nil {
			return sum, signals, err
		}

		sig, ok := s.evaluate(ctx, inst)
		if !ok {
			sum.Skipped++
			continue
		}
		sum.Scanned++
		if sig != nil {
			signals = append(signals, *sig)
		}
	}

	sum.Signals = len(signals)
	sum.Duration = time.Since(started)
	log.Info().
		Int("scanned", sum.Scanned).
		Int("skipped", sum.Skipped).
		Int("signals", sum.Signals).
		Dur("took", sum.Duration).
		Msg("scan finished")
	return sum, signals, nil
}

// evaluate runs one instrument. ok is false when the instrument was skipped
// (fetch failure, illiquid, malformed history); a nil signal with ok=true
// means it was scanned but quiet.
func (s *Scanner) evaluate(ctx context.Context, inst model.Instrument) (*model.SymbolSignal, bool) {
	series, err := s.collector.DailySeries(ctx, inst, s.cfg.HistoryDays)
	if err != nil {
		log.Debug().Err(err).Str("symbol", inst.Symbol).Msg("skipping: daily history")
		return nil, false
	}

	if !s.liquidEnough(series) {
		return nil, false
	}

	states, err := sequential.Run(series, s.cfg.Engine)
	if err != nil {
		log.Warn().Err(err).Str("symbol", inst.Symbol).Msg("skipping: engine rejected series")
		return nil, false
	}

	sig, ok := Classify(series, states)
	if !ok {
		return nil, true
	}
	sig.Company = inst.Company
	sig.ContextRSI = contextRSI(series)

	// Strong signals get an intraday cross-check; EARLY ones are not worth
	// the extra fetch.
	if sig.Kind != model.SignalEarly {
		sig.Aligned = s.intradayAligned(ctx, inst, sig)
	}

	log.Info().
		Str("symbol", sig.Symbol).
		Str("kind", string(sig.Kind)).
		Str("direction", string(sig.Direction)).
		Int("setup", sig.Setup).
		Int("countdown", sig.Countdown).
		Bool("aligned", sig.Aligned).
		Msg("signal detected")
	return &sig, true
}

// liquidEnough applies the trailing mean-volume floor.
func (s *Scanner) liquidEnough(series model.PriceSeries) bool {
	if s.cfg.MinAvgVolume <= 0 {
		return true
	}
	if series.Len() < s.cfg.VolumeLookback+1 {
		return false
	}
	volumes := make([]float64, series.Len())
	for i, b := range series.Bars {
		volumes[i] = b.Volume
	}
	sma := talib.Sma(volumes, s.cfg.VolumeLookback)
	return sma[len(sma)-1] >= s.cfg.MinAvgVolume
}

// contextRSI computes a plain RSI(14) on closes for alert context. Undefined
// when the series is too short.
func contextRSI(series model.PriceSeries) model.OptFloat {
	if series.Len() <= contextRSIPeriod {
		return model.OptFloat{}
	}
	closes := make([]float64, series.Len())
	for i, b := range series.Bars {
		closes[i] = b.Close
	}
	rsi := talib.Rsi(closes, contextRSIPeriod)
	return model.Float(rsi[len(rsi)-1])
}

func (s *Scanner) intradayAligned(ctx context.Context, inst model.Instrument, sig model.SymbolSignal) bool {
	hourly, err := s.collector.HourlySeries(ctx, inst, s.cfg.IntradayDays)
	if err != nil {
		log.Debug().Err(err).Str("symbol", inst.Symbol).Msg("no intraday confirmation data")
		return false
	}
	states, err := sequential.Run(hourly, s.cfg.Engine)
	if err != nil {
		return false
	}
	return AlignedWith(sig, states)
}
