package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"GoldSentinel/internal/alertstate"
	"GoldSentinel/internal/collector"
	"GoldSentinel/internal/config"
	"GoldSentinel/internal/notifier"
	"GoldSentinel/internal/recorder"
	"GoldSentinel/internal/scheduler"
	"GoldSentinel/internal/server"
	"GoldSentinel/internal/session"
	"GoldSentinel/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] GoldSentinel starting...")

	// Secrets may live in a local .env
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.Provider == "twelvedata" {
		fetcher = collector.NewTwelveDataFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s (%s)", fetcher.Name(), cfg.DataSource.Symbol)
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol)

	gate, err := session.NewGate(cfg.Sessions.Timezone, cfg.Sessions.Windows)
	if err != nil {
		log.Fatalf("[FATAL] init session gate: %v", err)
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	eng := strategy.NewEngine(strategy.Config{
		Symbol:    cfg.DataSource.Symbol,
		Levels:    cfg.Levels,
		Tolerance: cfg.LevelTolerance,
		LotSize:   cfg.Risk.LotSize,
		Risk: strategy.RiskParams{
			StopLossPips:   cfg.Risk.StopLossPips,
			TakeProfitPips: cfg.Risk.TakeProfitPips,
			PipSize:        cfg.Risk.PipSize,
		},
	}, col, tn, alertstate.NewDeduplicator(), gate)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, eng, gate, rec)
	if err := sched.Register(cfg.Schedule.PollInterval); err != nil {
		log.Fatalf("[FATAL] register poll task: %v", err)
	}
	sched.Start()

	// HTTP listener
	srv := server.New(ctx, cfg.HTTP.Addr, sched, cfg.HTTP.WebhookTriggersRun)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Printf("[ERROR] http server: %v", err)
		}
	}()

	// Telegram commands
	if cfg.Telegram.Commands {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	log.Println("[INFO] GoldSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	cancel()
	sched.Stop()
	log.Println("[INFO] GoldSentinel stopped")
}
