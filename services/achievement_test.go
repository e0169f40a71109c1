package services

import (
	"testing"
	"time"

	"ccj_tracker/models"
)

func strPtr(s string) *string { return &s }

func achievementEntry(title string, markup *string) models.RankingEntry {
	return models.RankingEntry{
		Rank:       1,
		PlayerName: "ALPHA",
		Achievement: models.ScrapedAchievement{
			Title:  title,
			Markup: markup,
		},
	}
}

func TestDedupeByTitle_FirstOccurrenceWins(t *testing.T) {
	observed := dedupeByTitle([]models.RankingEntry{
		achievementEntry("クリア級", strPtr("<b>クリア級</b>")),
		achievementEntry("クリア級", strPtr("<i>クリア級</i>")),
		achievementEntry("初段", strPtr("初段")),
	})

	if len(observed) != 2 {
		t.Fatalf("expected 2 distinct titles, got %d", len(observed))
	}
	if *observed[0].Markup != "<b>クリア級</b>" {
		t.Fatalf("expected first occurrence to win, got %q", *observed[0].Markup)
	}
}

func TestPlanCatalogChanges(t *testing.T) {
	frozen := map[string]bool{"鬼ヶ丘体育高校": true}
	existing := []models.Achievement{
		{ID: 1, Title: "Clear", Markup: strPtr("Clear")},          // plain, upgradeable
		{ID: 2, Title: "Master", Markup: strPtr("<b>Master</b>")}, // already rich
		{ID: 3, Title: "鬼ヶ丘体育高校", Markup: strPtr("鬼ヶ丘体育高校")},     // plain but frozen
	}
	observed := []models.Achievement{
		{Title: "Clear", Markup: strPtr("<b>Clear</b>")},
		{Title: "Master", Markup: strPtr("<i>Master</i>")},
		{Title: "鬼ヶ丘体育高校", Markup: strPtr("<b>鬼ヶ丘体育高校</b>")},
		{Title: "Fresh", Markup: strPtr("Fresh")},
	}

	inserts, updates := planCatalogChanges(observed, existing, frozen)

	if len(inserts) != 1 || inserts[0].Title != "Fresh" {
		t.Fatalf("expected only the unseen title inserted, got %+v", inserts)
	}
	if len(updates) != 1 {
		t.Fatalf("expected exactly one markup update, got %d", len(updates))
	}
	if updates[0].ID != 1 || *updates[0].Markup != "<b>Clear</b>" {
		t.Fatalf("unexpected update %+v", updates[0])
	}
}

func TestPlanCatalogChanges_NoSecondUpgrade(t *testing.T) {
	// Once markup diverges from the title it is never touched again.
	existing := []models.Achievement{
		{ID: 1, Title: "Clear", Markup: strPtr("<b>Clear</b>")},
	}
	observed := []models.Achievement{
		{Title: "Clear", Markup: strPtr("<i>Clear</i>")},
	}

	inserts, updates := planCatalogChanges(observed, existing, map[string]bool{})
	if len(inserts) != 0 || len(updates) != 0 {
		t.Fatalf("expected no changes, got %d inserts, %d updates", len(inserts), len(updates))
	}
}

func TestPlanCatalogChanges_SameMarkupUntouched(t *testing.T) {
	existing := []models.Achievement{
		{ID: 1, Title: "Clear", Markup: strPtr("Clear"), CreatedAt: time.Now()},
	}
	observed := []models.Achievement{
		{Title: "Clear", Markup: strPtr("Clear")},
	}

	_, updates := planCatalogChanges(observed, existing, map[string]bool{})
	if len(updates) != 0 {
		t.Fatalf("identical markup must not trigger an update, got %d", len(updates))
	}
}
