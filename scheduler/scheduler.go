package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"ccj_tracker/config"
	"ccj_tracker/models"
	"ccj_tracker/scraper"
	"ccj_tracker/storage"
)

// Triggerable allows workers to be kicked manually via queued commands.
type Triggerable interface {
	Trigger()
}

type Scheduler struct {
	cfg    *config.Config
	orch   *scraper.Orchestrator
	ops    *storage.SQLiteStore
	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}

	scheduleWorker  Triggerable
	analyticsWorker Triggerable
}

func New(cfg *config.Config, orch *scraper.Orchestrator, ops *storage.SQLiteStore) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		orch:   orch,
		ops:    ops,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

// SetWorkers registers background workers for manual triggering.
func (s *Scheduler) SetWorkers(schedule, analytics Triggerable) {
	s.scheduleWorker = schedule
	s.analyticsWorker = analytics
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	if s.cfg.Scheduler.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			if err := s.orch.RunRanking(ctx); err != nil {
				log.Printf("Scheduled ranking run error: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
		return nil
	}

	log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
	s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
	go func() {
		for {
			select {
			case <-s.ticker.C:
				if err := s.orch.RunRanking(ctx); err != nil {
					log.Printf("Scheduled ranking run error: %v", err)
				}
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds, err := s.ops.GetPendingCommands()
			if err != nil {
				log.Printf("Error getting commands: %v", err)
				continue
			}

			for _, cmd := range cmds {
				log.Printf("Processing command: %s", cmd.Command)
				if err := s.handleCommand(ctx, &cmd); err != nil {
					log.Printf("Command error: %v", err)
				}
				if err := s.ops.MarkCommandProcessed(cmd.ID); err != nil {
					log.Printf("Error marking command processed: %v", err)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	switch cmd.Command {
	case models.CmdScrapeNow:
		return s.orch.RunRanking(ctx)
	case models.CmdScheduleNow:
		if s.scheduleWorker != nil {
			s.scheduleWorker.Trigger()
		}
		return nil
	case models.CmdAnalyzeNow:
		if s.analyticsWorker != nil {
			s.analyticsWorker.Trigger()
		}
		return nil
	case models.CmdPause:
		s.orch.Pause()
		return nil
	case models.CmdResume:
		s.orch.Resume()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd.Command)
	}
}
