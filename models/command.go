package models

import "time"

type CommandType string

const (
	CmdScrapeNow   CommandType = "scrape_now"
	CmdScheduleNow CommandType = "schedule_now"
	CmdAnalyzeNow  CommandType = "analyze_now"
	CmdPause       CommandType = "pause"
	CmdResume      CommandType = "resume"
)

// Command is a one-shot instruction queued in the operational store and
// picked up by the running daemon.
type Command struct {
	ID          int64       `json:"id" db:"id"`
	Command     CommandType `json:"command" db:"command"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time  `json:"processed_at" db:"processed_at"`
}
