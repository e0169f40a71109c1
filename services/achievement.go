package services

import (
	"context"
	"log"

	"ccj_tracker/models"
	"ccj_tracker/storage"
)

// Titles whose rendering is known to vary in ways that must never trigger
// an automatic markup update.
var defaultFrozenTitles = []string{"鬼ヶ丘体育高校"}

// AchievementService keeps the deduplicated-by-title achievement catalog.
type AchievementService struct {
	store  *storage.PostgresStore
	frozen map[string]bool
}

func NewAchievementService(store *storage.PostgresStore) *AchievementService {
	frozen := make(map[string]bool, len(defaultFrozenTitles))
	for _, t := range defaultFrozenTitles {
		frozen[t] = true
	}
	return &AchievementService{store: store, frozen: frozen}
}

// markupUpdate patches a single existing row's markup.
type markupUpdate struct {
	ID     int64
	Markup *string
}

// Sync reconciles this cycle's observed achievements against the catalog:
// unseen titles are inserted, and rows whose markup is still plain (equal
// to the title) get their markup upgraded when a richer rendering shows
// up. Everything else is left untouched. Insert and update failures are
// logged independently.
func (s *AchievementService) Sync(ctx context.Context, entries []models.RankingEntry) {
	observed := dedupeByTitle(entries)
	if len(observed) == 0 {
		return
	}

	existing, err := s.store.GetAchievements(ctx)
	if err != nil {
		log.Printf("Fetching achievement catalog failed: %v", err)
		return
	}

	inserts, updates := planCatalogChanges(observed, existing, s.frozen)

	if len(inserts) > 0 {
		if err := s.store.InsertAchievements(ctx, inserts); err != nil {
			log.Printf("Inserting achievements failed: %v", err)
		} else {
			log.Printf("Inserted %d new achievement(s)", len(inserts))
		}
	}

	for _, u := range updates {
		if err := s.store.UpdateAchievementMarkup(ctx, u.ID, u.Markup); err != nil {
			log.Printf("Updating achievement markup failed: %v", err)
		}
	}
}

// dedupeByTitle keeps the first occurrence of each title this cycle.
func dedupeByTitle(entries []models.RankingEntry) []models.Achievement {
	seen := make(map[string]bool)
	var observed []models.Achievement
	for _, e := range entries {
		a := e.Achievement
		if seen[a.Title] {
			continue
		}
		seen[a.Title] = true
		observed = append(observed, models.Achievement{
			Title:     a.Title,
			Markup:    a.Markup,
			IconFirst: a.IconFirst,
			IconLast:  a.IconLast,
		})
	}
	return observed
}

func planCatalogChanges(observed, existing []models.Achievement, frozen map[string]bool) ([]models.Achievement, []markupUpdate) {
	byTitle := make(map[string]*models.Achievement, len(existing))
	for i := range existing {
		byTitle[existing[i].Title] = &existing[i]
	}

	var inserts []models.Achievement
	var updates []markupUpdate
	for _, obs := range observed {
		row, ok := byTitle[obs.Title]
		if !ok {
			inserts = append(inserts, obs)
			continue
		}
		if row.HasPlainMarkup() && !markupEqual(obs.Markup, row.Markup) && !frozen[row.Title] {
			updates = append(updates, markupUpdate{ID: row.ID, Markup: obs.Markup})
		}
	}
	return inserts, updates
}

func markupEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
