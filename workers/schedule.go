package workers

import (
	"context"
	"log"
	"time"

	"ccj_tracker/scraper"
)

// ScheduleWorker refreshes the event schedule from the news page. It runs
// once at startup so a fresh deployment is not blind until the first tick.
type ScheduleWorker struct {
	orch      *scraper.Orchestrator
	triggerCh chan struct{}
}

func NewScheduleWorker(orch *scraper.Orchestrator) *ScheduleWorker {
	return &ScheduleWorker{
		orch:      orch,
		triggerCh: make(chan struct{}, 1),
	}
}

func (w *ScheduleWorker) Run(ctx context.Context, every time.Duration) {
	w.runOnce(ctx)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runOnce(ctx)
		case <-w.triggerCh:
			w.runOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *ScheduleWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *ScheduleWorker) runOnce(ctx context.Context) {
	if err := w.orch.RunSchedule(ctx); err != nil {
		log.Printf("Schedule worker error: %v", err)
	}
}
