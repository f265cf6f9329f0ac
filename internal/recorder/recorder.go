// Package recorder persists detected signals and scan runs for later
// analysis.
package recorder

import "TDSentinel/internal/model"

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordSignal(sig *model.SymbolSignal) error
	RecordScan(sum *model.ScanSummary) error
	Close() error
}
