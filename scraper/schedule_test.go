package scraper

import (
	"bytes"
	"testing"
)

func TestParseNewsSchedule(t *testing.T) {
	handler := &ScheduleHandler{keyword: "スケジュール"}
	data := loadFixture(t, "news_page.html")

	events, err := handler.parseNews(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// older table group first, rows within each table flipped to
	// chronological order
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	wantStarts := []string{"7/18(火) 10:00", "7/25(火) 10:00", "8/1(火) 10:00"}
	wantEnds := []string{"7/25(火) 9:59", "8/1(火) 9:59", "8/8(火) 9:59"}
	wantEven := []string{"A", "C", "E"}
	wantOdd := []string{"B", "D", "F"}

	for i, ev := range events {
		if ev.StartText != wantStarts[i] {
			t.Errorf("event %d: start %q, want %q", i, ev.StartText, wantStarts[i])
		}
		if ev.EndText != wantEnds[i] {
			t.Errorf("event %d: end %q, want %q", i, ev.EndText, wantEnds[i])
		}
		if ev.EvenTime != wantEven[i] {
			t.Errorf("event %d: even %q, want %q", i, ev.EvenTime, wantEven[i])
		}
		if ev.OddTime != wantOdd[i] {
			t.Errorf("event %d: odd %q, want %q", i, ev.OddTime, wantOdd[i])
		}
	}
}

func TestParseNewsSchedule_NoMatches(t *testing.T) {
	handler := &ScheduleHandler{keyword: "スケジュール"}

	events, err := handler.parseNews(bytes.NewReader([]byte(`<html><body><ul class="list"><li>ニュース</li></ul></body></html>`)))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}
