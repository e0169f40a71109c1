package models

import "time"

// Record is one accepted observation, append-only. The record history is
// the sole input to the season analytics pass. Diff is stored as a 16-bit
// column; implausible deltas are stored as null instead.
type Record struct {
	ID          int64     `json:"id" db:"id"`
	PlayerName  string    `json:"player_name" db:"player_name"`
	CharaID     string    `json:"chara" db:"chara"`
	Point       int       `json:"point" db:"point"`
	Diff        *int      `json:"diff" db:"diff"`
	Ranking     int       `json:"ranking" db:"ranking"`
	Achievement string    `json:"achievement" db:"achievement"`
	RecordedAt  time.Time `json:"recorded_at" db:"recorded_at"`
	Elapsed     *int64    `json:"elapsed" db:"elapsed"`
	Version     *string   `json:"version" db:"version"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
