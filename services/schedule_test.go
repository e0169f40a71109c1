package services

import (
	"testing"
	"time"

	"ccj_tracker/models"
)

var jst = time.FixedZone("JST", 9*60*60)

func rawEvent(start, end string) models.RawScheduleEvent {
	return models.RawScheduleEvent{StartText: start, EndText: end, EvenTime: "even", OddTime: "odd"}
}

func TestNormalizeEvents_YearRollover(t *testing.T) {
	events := NormalizeEvents([]models.RawScheduleEvent{
		rawEvent("7/11(火) 10:00", "7/18(火) 9:59"),
		rawEvent("7/18(火) 10:00", "7/25(火) 9:59"),
		rawEvent("1/2(火) 10:00", "1/9(火) 9:59"),
	}, 2023, jst)

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if got := events[0].StartedAt.Year(); got != 2023 {
		t.Fatalf("first event: year %d, want 2023", got)
	}
	if got := events[1].StartedAt.Year(); got != 2023 {
		t.Fatalf("second event: year %d, want 2023", got)
	}
	// month dropped from 7 to 1 while scanning forward: new year
	if got := events[2].StartedAt.Year(); got != 2024 {
		t.Fatalf("third event: year %d, want 2024", got)
	}

	want := time.Date(2023, 7, 11, 10, 0, 0, 0, jst)
	if !events[0].StartedAt.Equal(want) {
		t.Fatalf("first start: got %v, want %v", events[0].StartedAt, want)
	}
}

func TestNormalizeEvents_EndCrossesYear(t *testing.T) {
	events := NormalizeEvents([]models.RawScheduleEvent{
		rawEvent("12/28(木) 10:00", "1/4(木) 9:59"),
	}, 2023, jst)

	if got := events[0].StartedAt.Year(); got != 2023 {
		t.Fatalf("start year %d, want 2023", got)
	}
	if got := events[0].EndedAt.Year(); got != 2024 {
		t.Fatalf("end year %d, want 2024", got)
	}
}

func TestNormalizeEvents_EndOfMinute(t *testing.T) {
	events := NormalizeEvents([]models.RawScheduleEvent{
		rawEvent("7/11(火) 10:00", "7/18(火) 9:59"),
	}, 2023, jst)

	want := time.Date(2023, 7, 18, 9, 59, 59, 999_000_000, jst)
	if !events[0].EndedAt.Equal(want) {
		t.Fatalf("end: got %v, want %v", events[0].EndedAt, want)
	}
}

func TestNormalizeEvents_PreservesAuxFields(t *testing.T) {
	events := NormalizeEvents([]models.RawScheduleEvent{
		{StartText: "7/11 10:00", EndText: "7/18 9:59", EvenTime: "10:00-12:00", OddTime: "13:00-15:00"},
	}, 2023, jst)

	if events[0].EvenTime != "10:00-12:00" || events[0].OddTime != "13:00-15:00" {
		t.Fatalf("aux fields not preserved: %+v", events[0])
	}
}

func TestNormalizeEvents_SameMonthNoRollover(t *testing.T) {
	events := NormalizeEvents([]models.RawScheduleEvent{
		rawEvent("3/1 10:00", "3/8 9:59"),
		rawEvent("3/8 10:00", "3/15 9:59"),
		rawEvent("3/15 10:00", "3/22 9:59"),
	}, 2024, jst)

	for i, ev := range events {
		if ev.StartedAt.Year() != 2024 {
			t.Fatalf("event %d: year %d, want 2024", i, ev.StartedAt.Year())
		}
	}
}
