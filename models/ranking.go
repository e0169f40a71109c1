package models

import "time"

// SentinelPlayer is the placeholder name the site renders on unranked
// filler rows. Entries under it never map to a real player.
const SentinelPlayer = "プレーヤー"

// RankingEntry is one leaderboard row as parsed from a ranking page.
// Diff and Elapsed stay nil until the entry has been reconciled against
// the player's previously stored state.
type RankingEntry struct {
	Rank        int
	Points      PointState
	CharaID     string
	PlayerName  string
	Achievement ScrapedAchievement
	RecordedAt  time.Time
	Elapsed     *int64 // whole seconds since the previous stored observation
	Version     *string
}

type PointState struct {
	Current int
	Diff    *int
}

// ScrapedAchievement is the achievement block of a ranking row. Markup is
// the title rendering with decorative icon spans stripped out. Icon ids of
// "0" mean no icon and are normalized to nil at parse time.
type ScrapedAchievement struct {
	Title     string
	Markup    *string
	IconFirst *string
	IconLast  *string
}

func (e *RankingEntry) IsSentinel() bool {
	return e.PlayerName == SentinelPlayer
}
