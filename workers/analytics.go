package workers

import (
	"context"
	"log"
	"time"

	"ccj_tracker/scraper"
)

// AnalyticsWorker reruns the season statistics pass on a slow cadence,
// independent of the scrape loop.
type AnalyticsWorker struct {
	orch      *scraper.Orchestrator
	triggerCh chan struct{}
}

func NewAnalyticsWorker(orch *scraper.Orchestrator) *AnalyticsWorker {
	return &AnalyticsWorker{
		orch:      orch,
		triggerCh: make(chan struct{}, 1),
	}
}

func (w *AnalyticsWorker) Run(ctx context.Context, every time.Duration) {
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

// Trigger requests an immediate pass; a pass already pending coalesces.
func (w *AnalyticsWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

func (w *AnalyticsWorker) runOnce(ctx context.Context) {
	if err := w.orch.RunAnalytics(ctx); err != nil {
		log.Printf("Analytics worker error: %v", err)
	}
}
