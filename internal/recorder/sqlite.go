package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"TDSentinel/internal/model"
)

// SQLiteRecorder persists signals and scan runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so ad-hoc readers don't block the scanner's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			bar_time    INTEGER NOT NULL,
			symbol      TEXT NOT NULL,
			company     TEXT,
			kind        TEXT NOT NULL,
			direction   TEXT NOT NULL,
			close       REAL,
			setup       INTEGER,
			countdown   INTEGER,
			perfected   INTEGER,
			validated   INTEGER,
			oscillator  REAL,
			context_rsi REAL,
			age         INTEGER,
			status      TEXT,
			aligned     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol)`,

		`CREATE TABLE IF NOT EXISTS scan_runs (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			universe_size INTEGER,
			scanned       INTEGER,
			skipped       INTEGER,
			signals       INTEGER,
			duration_ms   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_runs_ts ON scan_runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(sig *model.SymbolSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var osc, rsi sql.NullFloat64
	if sig.Oscillator.Valid {
		osc = sql.NullFloat64{Float64: sig.Oscillator.Value, Valid: true}
	}
	if sig.ContextRSI.Valid {
		rsi = sql.NullFloat64{Float64: sig.ContextRSI.Value, Valid: true}
	}
	var age sql.NullInt64
	if sig.Age.Valid {
		age = sql.NullInt64{Int64: int64(sig.Age.Value), Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO signals
		(timestamp, bar_time, symbol, company, kind, direction, close,
		 setup, countdown, perfected, validated,
		 oscillator, context_rsi, age, status, aligned)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), sig.BarTime.Unix(), sig.Symbol, sig.Company,
		string(sig.Kind), string(sig.Direction), sig.Close,
		sig.Setup, sig.Countdown, boolToInt(sig.Perfected), boolToInt(sig.Validated),
		osc, rsi, age, string(sig.Status), boolToInt(sig.Aligned),
	)
	return err
}

func (r *SQLiteRecorder) RecordScan(sum *model.ScanSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO scan_runs
		(timestamp, universe_size, scanned, skipped, signals, duration_ms)
		VALUES (?,?,?,?,?,?)`,
		sum.StartedAt.Unix(), sum.UniverseSize, sum.Scanned, sum.Skipped,
		sum.Signals, sum.Duration.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
