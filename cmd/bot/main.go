package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"TDSentinel/internal/collector"
	"TDSentinel/internal/config"
	"TDSentinel/internal/journal"
	"TDSentinel/internal/notifier"
	"TDSentinel/internal/recorder"
	"TDSentinel/internal/scanner"
	"TDSentinel/internal/scheduler"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if os.Getenv("LOG_LEVEL") == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Info().Msg("TDSentinel starting")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Init fetcher and collector
	fetcher := collector.NewDefinedgeFetcher(
		cfg.DataSource.BaseURL,
		cfg.DataSource.DataURL,
		cfg.DataSource.SessionKey,
		cfg.Proxy,
	)
	log.Info().Str("source", fetcher.Name()).Msg("data source configured")
	col := collector.NewCollector(fetcher)

	// Init scanner
	sc := scanner.New(col, cfg.ScannerConfig())

	// Init journal
	jm, err := journal.NewManager(cfg.Journal.StateFile)
	if err != nil {
		log.Fatal().Err(err).Msg("init journal")
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, sc, jm, tn, rec)
	if err := sched.Register(cfg.Schedule.ScanCron, cfg.Schedule.IntradayCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	// Optional: scan immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, scanning now")
		go sched.RunScanNow()
	}

	log.Info().Str("cron", cfg.Schedule.ScanCron).Msg("TDSentinel is running")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("TDSentinel stopped")
}
