package models

import "time"

// Player is the persisted per-name state, one row per distinct player.
// The statistics columns are nullable: they are reset at the start of
// every analytics pass and recomputed only for eligible players.
type Player struct {
	Name             string     `json:"name" db:"name"`
	Points           *int       `json:"points" db:"points"`
	Ranking          *int       `json:"ranking" db:"ranking"`
	UpdatedAt        *time.Time `json:"updated_at" db:"updated_at"`
	Average          *float64   `json:"average" db:"average"`
	EffectiveAverage *float64   `json:"effective_average" db:"effective_average"`
	DeviationValue   *float64   `json:"deviation_value" db:"deviation_value"`
}

// PlayerStats is the analytics output for one player, upserted by name.
type PlayerStats struct {
	Name             string   `json:"name" db:"name"`
	Average          *float64 `json:"average" db:"average"`
	EffectiveAverage *float64 `json:"effective_average" db:"effective_average"`
	DeviationValue   *float64 `json:"deviation_value" db:"deviation_value"`
}
