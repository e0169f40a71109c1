package models

import (
	"time"

	"github.com/google/uuid"
)

type RunKind string

const (
	RunKindRanking   RunKind = "ranking"
	RunKindSchedule  RunKind = "schedule"
	RunKindAnalytics RunKind = "analytics"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusSkipped   RunStatus = "skipped"
	RunStatusFailed    RunStatus = "failed"
)

// ScrapeRun is one cycle of any kind, recorded in the operational store.
type ScrapeRun struct {
	ID           int64      `json:"id" db:"id"`
	UID          uuid.UUID  `json:"uid" db:"uid"`
	Kind         RunKind    `json:"kind" db:"kind"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	FinishedAt   *time.Time `json:"finished_at" db:"finished_at"`
	Status       RunStatus  `json:"status" db:"status"`
	EntriesFound int        `json:"entries_found" db:"entries_found"`
	RecordsNew   int        `json:"records_new" db:"records_new"`
	PlayersSeen  int        `json:"players_seen" db:"players_seen"`
	ErrorsCount  int        `json:"errors_count" db:"errors_count"`
}
