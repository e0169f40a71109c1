package scraper

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ccj_tracker/config"
	"ccj_tracker/models"
	"ccj_tracker/services"
	"ccj_tracker/storage"
)

// Orchestrator runs the three cycle kinds end to end and records each run
// in the operational store. Store failures inside a cycle are logged and
// the cycle carries on; nothing here is fatal to the process.
type Orchestrator struct {
	cfg    *config.Config
	ops    *storage.SQLiteStore
	loc    *time.Location
	paused bool

	ranking  *RankingHandler
	schedule *ScheduleHandler

	reconciler   *services.ReconcileService
	achievements *services.AchievementService
	schedules    *services.ScheduleService
	analytics    *services.AnalyticsService
}

func NewOrchestrator(cfg *config.Config, ops *storage.SQLiteStore, pg *storage.PostgresStore, client *http.Client, loc *time.Location) *Orchestrator {
	return &Orchestrator{
		cfg:          cfg,
		ops:          ops,
		loc:          loc,
		ranking:      NewRankingHandler(client, &cfg.Source, loc),
		schedule:     NewScheduleHandler(client, &cfg.Source),
		reconciler:   services.NewReconcileService(pg),
		achievements: services.NewAchievementService(pg),
		schedules:    services.NewScheduleService(pg),
		analytics:    services.NewAnalyticsService(pg),
	}
}

// RunRanking executes one scrape-reconcile-persist cycle.
func (o *Orchestrator) RunRanking(ctx context.Context) error {
	if o.paused {
		log.Println("Scraper is paused, skipping ranking run")
		return nil
	}

	now := time.Now().In(o.loc)
	if o.inQuietHours(now) {
		log.Printf("Quiet hours (%02d:00-%02d:59), skipping ranking run", o.cfg.Source.QuietHourStart, o.cfg.Source.QuietHourEnd)
		return nil
	}

	run := o.startRun(models.RunKindRanking)
	defer o.finishRun(run)

	entries := o.ranking.FetchAll(ctx)
	run.EntriesFound = len(entries)
	o.log(run, models.LogLevelInfo, fmt.Sprintf("Parsed %d ranking entries", len(entries)))

	if len(entries) == 0 {
		run.Status = models.RunStatusFailed
		o.log(run, models.LogLevelError, "All ranking pages failed")
		return fmt.Errorf("all ranking pages failed")
	}

	result, err := o.reconciler.Reconcile(ctx, entries, time.Now())
	if err != nil {
		run.ErrorsCount++
		o.log(run, models.LogLevelError, fmt.Sprintf("Reconcile error: %v", err))
	} else {
		run.RecordsNew = result.RecordsInserted
		run.PlayersSeen = result.PlayersUpserted
		o.log(run, models.LogLevelInfo, fmt.Sprintf(
			"Reconciled: %d records inserted, %d players upserted, %d anon dupes, %d zero diffs",
			result.RecordsInserted, result.PlayersUpserted, result.AnonsSkipped, result.ZeroDiffSkipped))
	}

	// Achievements piggyback on the same entries; the catalog sync has
	// its own error handling.
	o.achievements.Sync(ctx, entries)

	run.Status = models.RunStatusCompleted
	return nil
}

// RunSchedule scrapes the news page and appends new schedule events.
func (o *Orchestrator) RunSchedule(ctx context.Context) error {
	run := o.startRun(models.RunKindSchedule)
	defer o.finishRun(run)

	raw, err := o.schedule.FetchRaw(ctx)
	if err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorsCount++
		o.log(run, models.LogLevelError, fmt.Sprintf("Schedule fetch error: %v", err))
		return err
	}
	run.EntriesFound = len(raw)

	events := services.NormalizeEvents(raw, o.cfg.Source.InitialYear, o.loc)
	inserted, err := o.schedules.InsertNew(ctx, events)
	if err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorsCount++
		o.log(run, models.LogLevelError, fmt.Sprintf("Schedule insert error: %v", err))
		return err
	}

	run.RecordsNew = inserted
	run.Status = models.RunStatusCompleted
	o.log(run, models.LogLevelInfo, fmt.Sprintf("Schedule: %d rows parsed, %d inserted", len(raw), inserted))
	return nil
}

// RunAnalytics recomputes the season statistics.
func (o *Orchestrator) RunAnalytics(ctx context.Context) error {
	run := o.startRun(models.RunKindAnalytics)
	defer o.finishRun(run)

	if err := o.analytics.Run(ctx, time.Now()); err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorsCount++
		o.log(run, models.LogLevelError, fmt.Sprintf("Analytics error: %v", err))
		return err
	}

	run.Status = models.RunStatusCompleted
	return nil
}

func (o *Orchestrator) Pause() {
	o.paused = true
	log.Println("Scraper paused")
}

func (o *Orchestrator) Resume() {
	o.paused = false
	log.Println("Scraper resumed")
}

func (o *Orchestrator) IsPaused() bool {
	return o.paused
}

// inQuietHours reports whether the site's clock is inside the overnight
// freeze window.
func (o *Orchestrator) inQuietHours(now time.Time) bool {
	hour := now.In(o.loc).Hour()
	return hour >= o.cfg.Source.QuietHourStart && hour <= o.cfg.Source.QuietHourEnd
}

func (o *Orchestrator) startRun(kind models.RunKind) *models.ScrapeRun {
	run := &models.ScrapeRun{
		UID:       uuid.New(),
		Kind:      kind,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	id, err := o.ops.CreateRun(run)
	if err != nil {
		log.Printf("Warning: failed to create run record: %v", err)
	}
	run.ID = id
	return run
}

func (o *Orchestrator) finishRun(run *models.ScrapeRun) {
	now := time.Now()
	run.FinishedAt = &now
	if run.Status == models.RunStatusRunning {
		run.Status = models.RunStatusCompleted
	}
	if err := o.ops.UpdateRun(run); err != nil {
		log.Printf("Warning: failed to update run record: %v", err)
	}
}

func (o *Orchestrator) log(run *models.ScrapeRun, level models.LogLevel, message string) {
	log.Printf("[%s] %s: %s", level, run.Kind, message)
	o.ops.Log(&run.ID, level, message, run.Kind)
}
