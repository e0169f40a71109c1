package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"ccj_tracker/models"
	"ccj_tracker/storage"
)

const (
	// diff lives in an int2 column; anything outside is stored as null
	// (implausible delta), not rejected.
	maxStoredDiff = 32767
	minStoredDiff = -32768

	// how many recent anonymous records form the duplicate window
	anonWindow = 50
)

// ReconcileService joins one cycle's entries against stored player state
// and decides what to persist.
type ReconcileService struct {
	store *storage.PostgresStore
}

func NewReconcileService(store *storage.PostgresStore) *ReconcileService {
	return &ReconcileService{store: store}
}

// ReconcileResult accounts for one cycle's outcome.
type ReconcileResult struct {
	RecordsInserted int
	PlayersUpserted int
	AnonsSkipped    int
	ZeroDiffSkipped int
}

// Reconcile computes diffs against stored state, filters noise, inserts
// accepted records and upserts player state. Record insertion and player
// upsert are independent: a failure in one is logged and does not block
// the other, and nothing rolls back.
func (s *ReconcileService) Reconcile(ctx context.Context, entries []models.RankingEntry, now time.Time) (*ReconcileResult, error) {
	result := &ReconcileResult{}
	if len(entries) == 0 {
		return result, nil
	}

	players, err := s.store.GetPlayersByNames(ctx, distinctPlayerNames(entries))
	if err != nil {
		return nil, fmt.Errorf("fetch players: %w", err)
	}

	anons, err := s.store.GetRecentAnonRecords(ctx, models.SentinelPlayer, anonWindow)
	if err != nil {
		log.Printf("Fetching anonymous records failed: %v", err)
		anons = nil
	}

	applyDiffs(entries, players, now)
	accepted := filterAnonDuplicates(entries, anons)
	result.AnonsSkipped = len(entries) - len(accepted)

	records := recordsToInsert(accepted)
	result.ZeroDiffSkipped = len(accepted) - len(records)

	if len(records) > 0 {
		if err := s.store.InsertRecords(ctx, records); err != nil {
			log.Printf("Inserting records failed: %v", err)
		} else {
			result.RecordsInserted = len(records)
			logAccepted(records)
		}
	}

	upserts := playerUpserts(accepted)
	if len(upserts) > 0 {
		if err := s.store.UpsertPlayers(ctx, upserts); err != nil {
			log.Printf("Upserting players failed: %v", err)
		} else {
			result.PlayersUpserted = len(upserts)
		}
	}

	return result, nil
}

func distinctPlayerNames(entries []models.RankingEntry) []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		if e.IsSentinel() || seen[e.PlayerName] {
			continue
		}
		seen[e.PlayerName] = true
		names = append(names, e.PlayerName)
	}
	return names
}

// applyDiffs fills Diff and Elapsed for entries whose player has stored
// state. First observations keep both nil.
func applyDiffs(entries []models.RankingEntry, players []models.Player, now time.Time) {
	byName := make(map[string]*models.Player, len(players))
	for i := range players {
		byName[players[i].Name] = &players[i]
	}

	for i := range entries {
		player, ok := byName[entries[i].PlayerName]
		if !ok {
			continue
		}
		prior := 0
		if player.Points != nil {
			prior = *player.Points
		}
		diff := entries[i].Points.Current - prior
		entries[i].Points.Diff = &diff

		if player.UpdatedAt != nil {
			elapsed := int64(now.Sub(*player.UpdatedAt).Seconds())
			entries[i].Elapsed = &elapsed
		}
	}
}

// filterAnonDuplicates drops sentinel entries already present in the
// recent anonymous window with the same point total and rank. Those rows
// are the site recycling placeholder slots, not new information.
func filterAnonDuplicates(entries []models.RankingEntry, anons []models.Record) []models.RankingEntry {
	accepted := make([]models.RankingEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsSentinel() && hasAnonDuplicate(anons, e.Points.Current, e.Rank) {
			continue
		}
		accepted = append(accepted, e)
	}
	return accepted
}

func hasAnonDuplicate(anons []models.Record, point, rank int) bool {
	for _, a := range anons {
		if a.Point == point && a.Ranking == rank {
			return true
		}
	}
	return false
}

// recordsToInsert maps accepted entries to record rows, dropping entries
// whose diff is exactly zero (no state change to record) and nulling
// diffs outside the storable range.
func recordsToInsert(entries []models.RankingEntry) []models.Record {
	var records []models.Record
	for _, e := range entries {
		if e.Points.Diff != nil && *e.Points.Diff == 0 {
			continue
		}
		records = append(records, models.Record{
			PlayerName:  e.PlayerName,
			CharaID:     e.CharaID,
			Point:       e.Points.Current,
			Diff:        clampDiff(e.Points.Diff),
			Ranking:     e.Rank,
			Achievement: e.Achievement.Title,
			RecordedAt:  e.RecordedAt,
			Elapsed:     e.Elapsed,
			Version:     e.Version,
		})
	}
	return records
}

func clampDiff(diff *int) *int {
	if diff == nil || *diff > maxStoredDiff || *diff < minStoredDiff {
		return nil
	}
	return diff
}

// playerUpserts builds the state upsert for every non-sentinel player
// observed this cycle, regardless of whether a record was inserted. The
// latest occurrence wins when a name repeats across pages.
func playerUpserts(entries []models.RankingEntry) []models.Player {
	byName := make(map[string]models.Player)
	var order []string
	for _, e := range entries {
		if e.IsSentinel() {
			continue
		}
		if _, ok := byName[e.PlayerName]; !ok {
			order = append(order, e.PlayerName)
		}
		points := e.Points.Current
		rank := e.Rank
		recordedAt := e.RecordedAt
		byName[e.PlayerName] = models.Player{
			Name:      e.PlayerName,
			Points:    &points,
			Ranking:   &rank,
			UpdatedAt: &recordedAt,
		}
	}

	players := make([]models.Player, 0, len(order))
	for _, name := range order {
		players = append(players, byName[name])
	}
	return players
}

func logAccepted(records []models.Record) {
	log.Println("=== Updated ===")
	for _, r := range records {
		diff := "?"
		if r.Diff != nil {
			diff = fmt.Sprintf("%+d", *r.Diff)
		}
		elapsed := "?"
		if r.Elapsed != nil {
			elapsed = fmt.Sprintf("%d", *r.Elapsed)
		}
		log.Printf("%s - %dP (%sP) | %ssec.", r.PlayerName, r.Point, diff, elapsed)
	}
}
