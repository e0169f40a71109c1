package services

import (
	"math"
	"testing"
	"time"

	"ccj_tracker/models"
)

// seasonRecords builds qualifying records for one player, newest last,
// spaced a minute apart ending at base.
func seasonRecords(name string, diffs []int, base time.Time) []models.Record {
	records := make([]models.Record, len(diffs))
	for i, d := range diffs {
		diff := d
		elapsed := int64(100)
		records[i] = models.Record{
			PlayerName: name,
			Diff:       &diff,
			Elapsed:    &elapsed,
			RecordedAt: base.Add(-time.Duration(len(diffs)-1-i) * time.Minute),
		}
	}
	return records
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestComputeStats_MinimumRecordCount(t *testing.T) {
	now := time.Now()

	tooFew := seasonRecords("FIVE", repeat(10, 5), now)
	enough := seasonRecords("SIX", repeat(10, 6), now)

	stats := computeStats(append(tooFew, enough...), now)

	if len(stats) != 1 {
		t.Fatalf("expected 1 eligible player, got %d", len(stats))
	}
	if stats[0].Name != "SIX" {
		t.Fatalf("expected SIX, got %s", stats[0].Name)
	}
	if stats[0].Average == nil || *stats[0].Average != 10 {
		t.Fatalf("expected average 10, got %v", stats[0].Average)
	}
}

func TestComputeStats_StalePlayerSkipped(t *testing.T) {
	now := time.Now()
	stale := seasonRecords("OLD", repeat(10, 20), now.Add(-51*24*time.Hour))

	stats := computeStats(stale, now)
	if len(stats) != 0 {
		t.Fatalf("expected stale player skipped, got %d stats", len(stats))
	}
}

func TestComputeStats_TrimmedMean(t *testing.T) {
	now := time.Now()

	// 106 tens plus 5 high and 4 low outliers: 115 rows total
	diffs := append(repeat(10, 106), repeat(110, 5)...)
	diffs = append(diffs, repeat(-90, 4)...)
	stats := computeStats(seasonRecords("HEAVY", diffs, now), now)

	if len(stats) != 1 {
		t.Fatalf("expected 1 player, got %d", len(stats))
	}
	wantAvg := float64(106*10+5*110+4*-90) / 115
	if stats[0].Average == nil || math.Abs(*stats[0].Average-wantAvg) > 1e-9 {
		t.Fatalf("average: got %v, want %v", stats[0].Average, wantAvg)
	}
	// trimming removes the 5 highest and the 5 lowest (all four -90s
	// plus one 10), leaving only tens
	if stats[0].EffectiveAverage == nil || *stats[0].EffectiveAverage != 10 {
		t.Fatalf("effective average: got %v, want 10", stats[0].EffectiveAverage)
	}
}

func TestComputeStats_NoTrimmedMeanBelowThreshold(t *testing.T) {
	now := time.Now()
	stats := computeStats(seasonRecords("LIGHT", repeat(10, 110), now), now)

	if len(stats) != 1 {
		t.Fatalf("expected 1 player, got %d", len(stats))
	}
	if stats[0].EffectiveAverage != nil {
		t.Fatalf("110 rows must not produce a trimmed mean, got %v", *stats[0].EffectiveAverage)
	}
}

func TestComputeStats_ZeroVariancePopulation(t *testing.T) {
	now := time.Now()
	records := append(
		seasonRecords("ALPHA", repeat(10, 6), now),
		seasonRecords("BETA", repeat(10, 6), now)...,
	)

	stats := computeStats(records, now)
	if len(stats) != 2 {
		t.Fatalf("expected 2 players, got %d", len(stats))
	}
	for _, st := range stats {
		if st.DeviationValue == nil || *st.DeviationValue != 50 {
			t.Fatalf("%s: zero-variance population must score exactly 50, got %v", st.Name, st.DeviationValue)
		}
	}
}

func TestComputeStats_DeviationValues(t *testing.T) {
	now := time.Now()
	records := append(seasonRecords("ALPHA", repeat(10, 6), now),
		seasonRecords("BETA", repeat(20, 6), now)...)
	records = append(records, seasonRecords("GAMMA", repeat(30, 6), now)...)

	stats := computeStats(records, now)
	if len(stats) != 3 {
		t.Fatalf("expected 3 players, got %d", len(stats))
	}

	// population mean 20, population stddev sqrt(200/3)
	std := math.Sqrt(200.0 / 3.0)
	want := map[string]float64{
		"ALPHA": 50 + 10*(10-20)/std,
		"BETA":  50,
		"GAMMA": 50 + 10*(30-20)/std,
	}
	for _, st := range stats {
		if st.DeviationValue == nil || math.Abs(*st.DeviationValue-want[st.Name]) > 1e-9 {
			t.Fatalf("%s: deviation %v, want %v", st.Name, st.DeviationValue, want[st.Name])
		}
	}
}

func TestComputeStats_InvalidRowsIgnored(t *testing.T) {
	now := time.Now()
	records := seasonRecords("ALPHA", repeat(10, 6), now)

	// rows with no diff or with elapsed at the bound contribute nothing
	slow := int64(600)
	records = append(records,
		models.Record{PlayerName: "ALPHA", RecordedAt: now},
		models.Record{PlayerName: "ALPHA", Diff: intPtr(999), Elapsed: &slow, RecordedAt: now},
	)

	stats := computeStats(records, now)
	if len(stats) != 1 {
		t.Fatalf("expected 1 player, got %d", len(stats))
	}
	if *stats[0].Average != 10 {
		t.Fatalf("invalid rows leaked into the average: got %v", *stats[0].Average)
	}
}

func TestComputeStats_DeterministicRoundTrip(t *testing.T) {
	now := time.Now()
	records := append(seasonRecords("ALPHA", []int{5, 10, 15, 20, 25, 30}, now),
		seasonRecords("BETA", repeat(12, 8), now)...)

	first := computeStats(records, now)
	second := computeStats(records, now)

	if len(first) != len(second) {
		t.Fatalf("pass lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name ||
			*first[i].Average != *second[i].Average ||
			*first[i].DeviationValue != *second[i].DeviationValue {
			t.Fatalf("recompute diverged at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
