package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"ccj_tracker/models"
	"ccj_tracker/storage"
)

const (
	analyticsPageSize = 1000

	// row-level validity bounds
	maxValidElapsed = 600 // seconds
	maxValidDiff    = 500

	// player-level eligibility
	minPlayerRecords = 6                   // 5 or fewer qualifying rows: no stats
	recencyWindow    = 50 * 24 * time.Hour // newest row older than this: no stats

	// trimmed mean: applied above this row count, dropping this many
	// values from each tail
	trimThreshold = 110
	trimPerTail   = 5
)

// AnalyticsService recomputes every player's season statistics: mean diff,
// trimmed mean, and a population-relative deviation value.
type AnalyticsService struct {
	store *storage.PostgresStore
}

func NewAnalyticsService(store *storage.PostgresStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Run performs one full analytics pass over the most recent season. It is
// a complete recompute, not incremental: all stats reset to null first,
// then eligible players get fresh values in one batched upsert.
func (s *AnalyticsService) Run(ctx context.Context, now time.Time) error {
	season, err := s.store.GetLatestSeason(ctx)
	if err != nil {
		return fmt.Errorf("fetch season: %w", err)
	}
	if season == nil {
		log.Println("No season configured, skipping analytics")
		return nil
	}

	if err := s.store.ResetPlayerStats(ctx); err != nil {
		log.Printf("Resetting player stats failed: %v", err)
	}

	records, err := s.fetchSeasonRecords(ctx, season)
	if err != nil {
		return err
	}
	log.Printf("Analytics target: %d records", len(records))

	stats := computeStats(records, now)
	if len(stats) == 0 {
		log.Println("No eligible players this pass")
		return nil
	}

	if err := s.store.UpsertPlayerStats(ctx, stats); err != nil {
		return fmt.Errorf("upsert player stats: %w", err)
	}
	log.Printf("Updated statistics for %d player(s)", len(stats))
	return nil
}

// fetchSeasonRecords pages through the season's qualifying records until a
// short page signals exhaustion. Sentinel rows and rows outside the
// elapsed/diff validity bounds are filtered in the query.
func (s *AnalyticsService) fetchSeasonRecords(ctx context.Context, season *models.Season) ([]models.Record, error) {
	var all []models.Record
	offset := 0
	for {
		page, err := s.store.GetSeasonRecords(ctx, season, models.SentinelPlayer, maxValidElapsed, maxValidDiff, offset, analyticsPageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch season records: %w", err)
		}
		all = append(all, page...)
		if len(page) < analyticsPageSize {
			return all, nil
		}
		offset += analyticsPageSize
	}
}

// computeStats buckets records per player, applies eligibility filters,
// and derives average / trimmed average / deviation value. The result is
// sorted by name for deterministic output.
func computeStats(records []models.Record, now time.Time) []models.PlayerStats {
	grouped := make(map[string][]models.Record)
	for _, r := range records {
		if !isValidRecord(r) {
			continue
		}
		grouped[r.PlayerName] = append(grouped[r.PlayerName], r)
	}

	type playerAverage struct {
		name             string
		average          float64
		effectiveAverage *float64
	}

	var eligible []playerAverage
	for name, recs := range grouped {
		sort.Slice(recs, func(i, j int) bool {
			return recs[i].RecordedAt.After(recs[j].RecordedAt)
		})

		// Inactive or thin histories produce no statistics at all;
		// their columns stay null from the reset.
		if now.Sub(recs[0].RecordedAt) > recencyWindow || len(recs) < minPlayerRecords {
			continue
		}

		diffs := make([]float64, len(recs))
		for i, r := range recs {
			diffs[i] = float64(*r.Diff)
		}
		avg := playerAverage{name: name, average: mean(diffs)}
		if len(diffs) > trimThreshold {
			trimmed := trimmedMean(diffs, trimPerTail)
			avg.effectiveAverage = &trimmed
		}
		eligible = append(eligible, avg)
	}

	if len(eligible) == 0 {
		return nil
	}

	averages := make([]float64, len(eligible))
	for i, p := range eligible {
		averages[i] = p.average
	}
	popMean := mean(averages)
	popStdDev := stdDev(averages, popMean)

	stats := make([]models.PlayerStats, 0, len(eligible))
	for _, p := range eligible {
		deviation := 50.0
		if popStdDev != 0 {
			deviation = 50 + 10*(p.average-popMean)/popStdDev
		}
		stats = append(stats, models.PlayerStats{
			Name:             p.name,
			Average:          floatOrNil(p.average),
			EffectiveAverage: p.effectiveAverage,
			DeviationValue:   floatOrNil(deviation),
		})
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

func isValidRecord(r models.Record) bool {
	return r.Diff != nil && r.Elapsed != nil && *r.Elapsed < maxValidElapsed
}

func mean(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// trimmedMean averages values after discarding n from each tail of the
// sorted slice.
func trimmedMean(values []float64, n int) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return mean(sorted[n : len(sorted)-n])
}

// stdDev is the population standard deviation around a known mean.
func stdDev(values []float64, mu float64) float64 {
	var variance float64
	for _, v := range values {
		variance += (v - mu) * (v - mu)
	}
	return math.Sqrt(variance / float64(len(values)))
}

func floatOrNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
