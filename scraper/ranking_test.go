package scraper

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ccj_tracker/models"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

func TestParseRankingPage(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	handler := &RankingHandler{loc: jst}
	data := loadFixture(t, "ranking_page.html")

	entries, err := handler.parsePage(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// header row skipped, malformed row dropped
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Rank != 1 {
		t.Fatalf("expected rank 1, got %d", first.Rank)
	}
	if first.Points.Current != 12345 {
		t.Fatalf("expected 12345 points, got %d", first.Points.Current)
	}
	if first.CharaID != "12" {
		t.Fatalf("expected chara 12, got %s", first.CharaID)
	}
	if first.PlayerName != "YAMADA" {
		t.Fatalf("expected name YAMADA, got %q", first.PlayerName)
	}
	if first.Achievement.Title != "クリア級" {
		t.Fatalf("unexpected title %q", first.Achievement.Title)
	}
	if first.Achievement.IconFirst == nil || *first.Achievement.IconFirst != "3" {
		t.Fatalf("expected first icon 3, got %v", first.Achievement.IconFirst)
	}
	// icon id 0 means no icon
	if first.Achievement.IconLast != nil {
		t.Fatalf("expected no last icon, got %q", *first.Achievement.IconLast)
	}
	// decorative icon spans removed from markup
	if first.Achievement.Markup == nil || *first.Achievement.Markup != "クリア級" {
		t.Fatalf("unexpected markup %v", first.Achievement.Markup)
	}

	wantTime := time.Date(2025, 7, 11, 10, 0, 0, 0, jst)
	if !first.RecordedAt.Equal(wantTime) {
		t.Fatalf("expected banner timestamp %v, got %v", wantTime, first.RecordedAt)
	}

	second := entries[1]
	if second.Rank != 2 || second.Points.Current != 9000 {
		t.Fatalf("unexpected second entry: rank %d, points %d", second.Rank, second.Points.Current)
	}
	if second.CharaID != "0" {
		t.Fatalf("expected fallback chara 0, got %s", second.CharaID)
	}
	if second.PlayerName != models.SentinelPlayer {
		t.Fatalf("expected sentinel name, got %q", second.PlayerName)
	}
	if !second.IsSentinel() {
		t.Fatal("expected sentinel entry")
	}
	if second.Achievement.Title != "2代目桃太郎" {
		t.Fatalf("unexpected title %q", second.Achievement.Title)
	}
	if second.Achievement.Markup == nil || *second.Achievement.Markup != `2<span class="text-orange">代目桃太郎</span>` {
		t.Fatalf("unexpected markup %v", second.Achievement.Markup)
	}
	if second.RecordedAt != first.RecordedAt {
		t.Fatal("entries from one page should share the banner timestamp")
	}

	for _, e := range entries {
		if e.Rank < 0 || e.Points.Current < 0 {
			t.Fatalf("negative rank/points leaked through: %+v", e)
		}
		if e.Points.Diff != nil || e.Elapsed != nil {
			t.Fatal("diff/elapsed must stay nil until reconciliation")
		}
	}
}

func TestParseRankingPage_MissingBanner(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	handler := &RankingHandler{loc: jst}

	_, err := handler.parsePage(bytes.NewReader([]byte(`<html><body><ul id="ranking_data"></ul></body></html>`)))
	if err == nil {
		t.Fatal("expected error when the update banner is missing")
	}
}
