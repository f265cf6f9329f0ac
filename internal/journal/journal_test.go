package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TDSentinel/internal/model"
)

func tempManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan_state.json")
	m, err := NewManager(path)
	require.NoError(t, err)
	return m, path
}

func TestDedupeSameBar(t *testing.T) {
	m, _ := tempManager(t)

	sig := model.SymbolSignal{
		Symbol:    "RELIANCE",
		Direction: model.DirectionBuy,
		Kind:      model.SignalActive,
		BarTime:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, m.ShouldAlert(sig))
	m.MarkAlerted(sig)
	assert.False(t, m.ShouldAlert(sig), "same bar must not re-alert")

	// A later bar for the same key alerts again.
	sig.BarTime = sig.BarTime.AddDate(0, 0, 1)
	assert.True(t, m.ShouldAlert(sig))

	// A different kind for the same symbol is an independent key.
	other := sig
	other.Kind = model.SignalCountdown
	assert.True(t, m.ShouldAlert(other))
}

func TestStatePersistsAcrossManagers(t *testing.T) {
	m, path := tempManager(t)

	sig := model.SymbolSignal{
		Symbol:    "IDEA",
		Direction: model.DirectionSell,
		Kind:      model.SignalCountdown,
		BarTime:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	m.MarkAlerted(sig)
	m.RecordScan(model.ScanSummary{StartedAt: time.Now()})

	reloaded, err := NewManager(path)
	require.NoError(t, err)
	assert.False(t, reloaded.ShouldAlert(sig))

	snap := reloaded.Snapshot()
	assert.Equal(t, 1, snap.TotalScans)
	assert.Equal(t, 1, snap.TotalSignals)
}
