package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"ccj_tracker/models"
	"ccj_tracker/storage"
)

// yearCursor is the accumulator for year inference over an ordered event
// sequence: the working year plus the previous event's start month.
type yearCursor struct {
	year           int
	lastStartMonth int
	started        bool
}

// NormalizeEvents converts raw year-less schedule rows into absolute
// timestamps. Events must arrive in non-decreasing chronological start
// order: a start month lower than the previous event's means the sequence
// crossed a year boundary. Out-of-order input yields wrong years; no
// validation is performed.
func NormalizeEvents(raw []models.RawScheduleEvent, initialYear int, loc *time.Location) []models.ScheduleEvent {
	cur := yearCursor{year: initialYear}
	events := make([]models.ScheduleEvent, 0, len(raw))
	for _, r := range raw {
		var ev models.ScheduleEvent
		ev, cur = normalizeEvent(r, cur, loc)
		events = append(events, ev)
	}
	return events
}

func normalizeEvent(raw models.RawScheduleEvent, cur yearCursor, loc *time.Location) (models.ScheduleEvent, yearCursor) {
	start := ParseClockDate(raw.StartText)
	if cur.started && start.Month < cur.lastStartMonth {
		cur.year++
	}
	cur.lastStartMonth = start.Month
	cur.started = true

	startedAt := time.Date(cur.year, time.Month(start.Month), start.Day, start.Hour, start.Minute, 0, 0, loc)

	end := ParseClockDate(raw.EndText)
	endYear := cur.year
	if end.Month < start.Month {
		endYear++
	}
	// The source reports end times to the minute and the event runs
	// through that whole minute.
	endedAt := time.Date(endYear, time.Month(end.Month), end.Day, end.Hour, end.Minute, 59, 999_000_000, loc)

	return models.ScheduleEvent{
		StartedAt: startedAt,
		EndedAt:   endedAt,
		EvenTime:  raw.EvenTime,
		OddTime:   raw.OddTime,
	}, cur
}

// ScheduleService appends normalized events to the schedule log.
type ScheduleService struct {
	store *storage.PostgresStore
}

func NewScheduleService(store *storage.PostgresStore) *ScheduleService {
	return &ScheduleService{store: store}
}

// InsertNew appends only events strictly newer than the latest stored
// start, keeping the persisted schedule a strictly growing log.
func (s *ScheduleService) InsertNew(ctx context.Context, events []models.ScheduleEvent) (int, error) {
	latest, err := s.store.GetLatestScheduleStart(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch latest schedule: %w", err)
	}

	var targets []models.ScheduleEvent
	for _, ev := range events {
		if latest == nil || ev.StartedAt.After(*latest) {
			targets = append(targets, ev)
		}
	}

	if len(targets) == 0 {
		log.Println("No new schedule events to insert")
		return 0, nil
	}

	if err := s.store.InsertSchedules(ctx, targets); err != nil {
		return 0, fmt.Errorf("insert schedules: %w", err)
	}

	log.Printf("Inserted %d new schedule event(s)", len(targets))
	return len(targets), nil
}
