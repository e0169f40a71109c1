package models

import "time"

// RawScheduleEvent is one schedule table row before year inference: the
// date-range cell split on " - " plus the two time-slot cells, verbatim.
type RawScheduleEvent struct {
	StartText string
	EndText   string
	EvenTime  string
	OddTime   string
}

// ScheduleEvent is a normalized event with absolute timestamps. The
// persisted set is a strictly growing append log ordered by StartedAt.
type ScheduleEvent struct {
	ID        int64     `json:"id" db:"id"`
	StartedAt time.Time `json:"started_at" db:"started_at"`
	EndedAt   time.Time `json:"ended_at" db:"ended_at"`
	EvenTime  string    `json:"even_time" db:"even_time"`
	OddTime   string    `json:"odd_time" db:"odd_time"`
}

// Season is an externally authored time window. A nil EndedAt means the
// season is still open.
type Season struct {
	ID        int64      `json:"id" db:"id"`
	StartedAt time.Time  `json:"started_at" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at" db:"ended_at"`
}
