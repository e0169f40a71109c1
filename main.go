package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ccj_tracker/config"
	"ccj_tracker/httputil"
	"ccj_tracker/logging"
	"ccj_tracker/models"
	"ccj_tracker/scheduler"
	"ccj_tracker/scraper"
	"ccj_tracker/storage"
	"ccj_tracker/workers"
)

var (
	scrapeNow   = flag.Bool("scrape", false, "Run one ranking cycle and exit")
	scheduleNow = flag.Bool("schedule", false, "Run one schedule cycle and exit")
	analyzeNow  = flag.Bool("analyze", false, "Run one analytics pass and exit")
	enqueue     = flag.String("enqueue", "", "Queue a command for a running daemon (scrape_now, schedule_now, analyze_now, pause, resume)")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("tracker.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting ccj_tracker...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Failed to load source time zone %q: %v", cfg.Source.Timezone, err)
	}

	ops, err := storage.NewSQLiteStore(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer ops.Close()
	log.Printf("SQLite database: %s", cfg.SQLitePath)

	if *enqueue != "" {
		if err := ops.EnqueueCommand(models.CommandType(*enqueue)); err != nil {
			log.Fatalf("Failed to enqueue command: %v", err)
		}
		log.Printf("Command queued: %s", *enqueue)
		return
	}

	ctx := context.Background()

	pg, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pg.Close()
	log.Println("Connected to Postgres")

	client := httputil.NewScrapeClient()
	orch := scraper.NewOrchestrator(cfg, ops, pg, client, loc)

	// One-shot modes
	switch {
	case *scrapeNow:
		if err := orch.RunRanking(ctx); err != nil {
			log.Fatalf("Ranking cycle failed: %v", err)
		}
		return
	case *scheduleNow:
		if err := orch.RunSchedule(ctx); err != nil {
			log.Fatalf("Schedule cycle failed: %v", err)
		}
		return
	case *analyzeNow:
		if err := orch.RunAnalytics(ctx); err != nil {
			log.Fatalf("Analytics pass failed: %v", err)
		}
		return
	}

	// Daemon mode
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scheduleWorker := workers.NewScheduleWorker(orch)
	analyticsWorker := workers.NewAnalyticsWorker(orch)

	sched := scheduler.New(cfg, orch, ops)
	sched.SetWorkers(scheduleWorker, analyticsWorker)

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	go scheduleWorker.Run(ctx, cfg.Scheduler.ScheduleInterval)
	log.Println("Schedule worker started")

	go analyticsWorker.Run(ctx, cfg.Scheduler.AnalyticsInterval)
	log.Println("Analytics worker started")

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}
