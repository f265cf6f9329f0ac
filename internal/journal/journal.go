// Package journal persists scan bookkeeping between runs so a rescan does
// not re-alert a signal that was already sent for the same bar.
package journal

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"TDSentinel/internal/model"
)

// Manager handles alert dedupe state with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	if state.LastAlerts == nil {
		state.LastAlerts = make(map[string]AlertRecord)
	}
	return &Manager{state: state, filePath: filePath}, nil
}

func alertKey(sig model.SymbolSignal) string {
	return fmt.Sprintf("%s|%s|%s", sig.Symbol, sig.Direction, sig.Kind)
}

// ShouldAlert reports whether the signal is new: either never alerted for
// this key, or alerted for an earlier bar.
func (m *Manager) ShouldAlert(sig model.SymbolSignal) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.state.LastAlerts[alertKey(sig)]
	if !ok {
		return true
	}
	return rec.BarTime.Before(sig.BarTime)
}

// MarkAlerted records that the signal was sent.
func (m *Manager) MarkAlerted(sig model.SymbolSignal) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.LastAlerts[alertKey(sig)] = AlertRecord{
		BarTime: sig.BarTime,
		SentAt:  time.Now(),
	}
	m.state.TotalSignals++
	m.save()
}

// RecordScan updates the scan counters.
func (m *Manager) RecordScan(sum model.ScanSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.LastScanAt = sum.StartedAt
	m.state.TotalScans++
	m.save()
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *m.state
	cp.LastAlerts = make(map[string]AlertRecord, len(m.state.LastAlerts))
	for k, v := range m.state.LastAlerts {
		cp.LastAlerts[k] = v
	}
	return cp
}

func (m *Manager) save() {
	if err := SaveState(m.filePath, m.state); err != nil {
		log.Error().Err(err).Str("path", m.filePath).Msg("failed to save scan state")
	}
}
