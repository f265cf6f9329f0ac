package journal

import (
	"encoding/json"
	"os"
	"time"
)

// AlertRecord remembers the last alert sent for one (symbol, direction,
// kind) key.
type AlertRecord struct {
	BarTime time.Time `json:"bar_time"`
	SentAt  time.Time `json:"sent_at"`
}

// State is the persisted scan bookkeeping.
type State struct {
	LastScanAt   time.Time              `json:"last_scan_at"`
	TotalScans   int                    `json:"total_scans"`
	TotalSignals int                    `json:"total_signals"`
	LastAlerts   map[string]AlertRecord `json:"last_alerts"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// LoadState reads the scan state from a JSON file. Returns a zero state if
// the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the scan state to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
