// Package scheduler wires the scan pipeline to cron triggers and Telegram
// commands.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"TDSentinel/internal/journal"
	"TDSentinel/internal/model"
	"TDSentinel/internal/notifier"
	"TDSentinel/internal/recorder"
	"TDSentinel/internal/scanner"
)

// Scheduler manages the cron tasks and command handling.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	Journal  *journal.Manager
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Ctx      context.Context

	mu          sync.Mutex
	lastSignals []model.SymbolSignal
	scanning    bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, jm *journal.Manager, tn *notifier.TelegramNotifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  sc,
		Journal:  jm,
		Notifier: tn,
		Recorder: rec,
		Ctx:      ctx,
	}
}

// Register registers the scan task on the given cron expressions. The
// intraday expression is optional; empty skips it.
func (s *Scheduler) Register(scanCron, intradayCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if intradayCron != "" {
		if _, err := s.Cron.AddFunc(intradayCron, s.scanTask); err != nil {
			return fmt.Errorf("register intraday scan task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Info().Msg("scheduler stopped")
}

// RunScanNow executes the scan task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

// scanTask runs one full universe scan and alerts on new signals. Overlapping
// runs are dropped rather than queued.
func (s *Scheduler) scanTask() {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		log.Warn().Msg("scan already in progress, skipping trigger")
		return
	}
	s.scanning = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
	}()

	sum, signals, err := s.Scanner.Scan(s.Ctx)
	if err != nil {
		log.Error().Err(err).Msg("scan failed")
		s.trySend(fmt.Sprintf("❌ Scan failed: %v", err))
		return
	}

	sent := 0
	for _, sig := range signals {
		if !s.Journal.ShouldAlert(sig) {
			log.Debug().
				Str("symbol", sig.Symbol).
				Str("kind", string(sig.Kind)).
				Msg("suppressing duplicate alert")
			continue
		}
		s.trySend(notifier.FormatSignal(sig, "daily"))
		s.Journal.MarkAlerted(sig)
		if err := s.Recorder.RecordSignal(&sig); err != nil {
			log.Error().Err(err).Str("symbol", sig.Symbol).Msg("record signal")
		}
		sent++
	}

	s.Journal.RecordScan(sum)
	if err := s.Recorder.RecordScan(&sum); err != nil {
		log.Error().Err(err).Msg("record scan")
	}

	s.mu.Lock()
	s.lastSignals = signals
	s.mu.Unlock()

	if sent > 0 {
		s.trySend(notifier.FormatScanSummary(sum))
	}
	log.Info().Int("alerts", sent).Int("signals", len(signals)).Msg("scan task finished")
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/scan":
		go s.scanTask()
		return "🔍 Scan started"
	case "/status":
		return notifier.FormatStatus(s.Journal.Snapshot())
	case "/last":
		return s.formatLastSignals()
	default:
		return "Commands:\n• /scan — run a scan now\n• /status — scanner status\n• /last — signals from the last scan"
	}
}

func (s *Scheduler) formatLastSignals() string {
	s.mu.Lock()
	signals := s.lastSignals
	s.mu.Unlock()

	if len(signals) == 0 {
		return "No signals in the last scan."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>Last scan: %d signal(s)</b>\n", len(signals)))
	for _, sig := range signals {
		b.WriteString(fmt.Sprintf("\n%s — %s %s (setup %d, countdown %d)",
			sig.Symbol, sig.Kind, sig.Direction, sig.Setup, sig.Countdown))
	}
	return b.String()
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
