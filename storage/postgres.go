package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ccj_tracker/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// =============================================================================
// Players
// =============================================================================

func (s *PostgresStore) GetPlayersByNames(ctx context.Context, names []string) ([]models.Player, error) {
	if len(names) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT name, points, ranking, updated_at, average, effective_average, deviation_value
		FROM player WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.Name, &p.Points, &p.Ranking, &p.UpdatedAt,
			&p.Average, &p.EffectiveAverage, &p.DeviationValue); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// UpsertPlayers overwrites each player's latest observation, keyed by name.
func (s *PostgresStore) UpsertPlayers(ctx context.Context, players []models.Player) error {
	batch := &pgx.Batch{}
	for _, p := range players {
		batch.Queue(`
			INSERT INTO player (name, points, ranking, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE SET
				points = EXCLUDED.points,
				ranking = EXCLUDED.ranking,
				updated_at = EXCLUDED.updated_at`,
			p.Name, p.Points, p.Ranking, p.UpdatedAt)
	}
	return s.pool.SendBatch(ctx, batch).Close()
}

// ResetPlayerStats nulls every computed statistic ahead of a full
// analytics recompute.
func (s *PostgresStore) ResetPlayerStats(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE player
		SET average = NULL, effective_average = NULL, deviation_value = NULL
		WHERE average IS NOT NULL`)
	return err
}

func (s *PostgresStore) UpsertPlayerStats(ctx context.Context, stats []models.PlayerStats) error {
	batch := &pgx.Batch{}
	for _, st := range stats {
		batch.Queue(`
			INSERT INTO player (name, average, effective_average, deviation_value)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO UPDATE SET
				average = EXCLUDED.average,
				effective_average = EXCLUDED.effective_average,
				deviation_value = EXCLUDED.deviation_value`,
			st.Name, st.Average, st.EffectiveAverage, st.DeviationValue)
	}
	return s.pool.SendBatch(ctx, batch).Close()
}

// =============================================================================
// Records
// =============================================================================

func (s *PostgresStore) InsertRecords(ctx context.Context, records []models.Record) error {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO record (player_name, chara, point, diff, ranking, achievement, recorded_at, elapsed, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			r.PlayerName, r.CharaID, r.Point, r.Diff, r.Ranking, r.Achievement, r.RecordedAt, r.Elapsed, r.Version)
	}
	return s.pool.SendBatch(ctx, batch).Close()
}

// GetRecentAnonRecords returns the most recent records under the sentinel
// name; the reconciler's duplicate window.
func (s *PostgresStore) GetRecentAnonRecords(ctx context.Context, sentinel string, limit int) ([]models.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, player_name, chara, point, diff, ranking, achievement, recorded_at, elapsed, version, created_at
		FROM record
		WHERE player_name = $1
		ORDER BY recorded_at DESC
		LIMIT $2`, sentinel, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// GetLatestRecordsByPlayers returns each named player's newest record.
func (s *PostgresStore) GetLatestRecordsByPlayers(ctx context.Context, names []string) ([]models.Record, error) {
	if len(names) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (player_name)
			id, player_name, chara, point, diff, ranking, achievement, recorded_at, elapsed, version, created_at
		FROM record
		WHERE player_name = ANY($1)
		ORDER BY player_name, recorded_at DESC`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// GetSeasonRecords fetches one page of qualifying records inside the
// season window. The elapsed/diff predicates also exclude nulls, matching
// the validity rules of the analytics pass.
func (s *PostgresStore) GetSeasonRecords(ctx context.Context, season *models.Season, sentinel string, maxElapsed, maxDiff, offset, limit int) ([]models.Record, error) {
	query := `
		SELECT id, player_name, chara, point, diff, ranking, achievement, recorded_at, elapsed, version, created_at
		FROM record
		WHERE player_name <> $1
		  AND recorded_at >= $2
		  AND elapsed < $3
		  AND diff < $4`
	args := []any{sentinel, season.StartedAt, maxElapsed, maxDiff}

	if season.EndedAt != nil {
		query += ` AND recorded_at <= $5`
		args = append(args, *season.EndedAt)
	}
	query += fmt.Sprintf(` ORDER BY recorded_at, id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]models.Record, error) {
	var records []models.Record
	for rows.Next() {
		var r models.Record
		if err := rows.Scan(&r.ID, &r.PlayerName, &r.CharaID, &r.Point, &r.Diff, &r.Ranking,
			&r.Achievement, &r.RecordedAt, &r.Elapsed, &r.Version, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// =============================================================================
// Achievements
// =============================================================================

func (s *PostgresStore) GetAchievements(ctx context.Context) ([]models.Achievement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, markup, icon_first, icon_last
		FROM achievement`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []models.Achievement
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.Title, &a.Markup, &a.IconFirst, &a.IconLast); err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func (s *PostgresStore) InsertAchievements(ctx context.Context, achievements []models.Achievement) error {
	batch := &pgx.Batch{}
	for _, a := range achievements {
		batch.Queue(`
			INSERT INTO achievement (title, markup, icon_first, icon_last)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (title) DO NOTHING`,
			a.Title, a.Markup, a.IconFirst, a.IconLast)
	}
	return s.pool.SendBatch(ctx, batch).Close()
}

func (s *PostgresStore) UpdateAchievementMarkup(ctx context.Context, id int64, markup *string) error {
	_, err := s.pool.Exec(ctx, `UPDATE achievement SET markup = $1 WHERE id = $2`, markup, id)
	return err
}

// =============================================================================
// Schedule
// =============================================================================

// GetLatestScheduleStart returns the newest stored event start, or nil
// when the schedule log is empty.
func (s *PostgresStore) GetLatestScheduleStart(ctx context.Context) (*time.Time, error) {
	var startedAt time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT started_at FROM schedule
		ORDER BY started_at DESC
		LIMIT 1`).Scan(&startedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &startedAt, nil
}

func (s *PostgresStore) InsertSchedules(ctx context.Context, events []models.ScheduleEvent) error {
	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(`
			INSERT INTO schedule (started_at, ended_at, even_time, odd_time)
			VALUES ($1, $2, $3, $4)`,
			ev.StartedAt, ev.EndedAt, ev.EvenTime, ev.OddTime)
	}
	return s.pool.SendBatch(ctx, batch).Close()
}

// =============================================================================
// Seasons
// =============================================================================

// GetLatestSeason returns the season with the highest id, or nil when
// none is configured.
func (s *PostgresStore) GetLatestSeason(ctx context.Context) (*models.Season, error) {
	var season models.Season
	err := s.pool.QueryRow(ctx, `
		SELECT id, started_at, ended_at FROM season
		ORDER BY id DESC
		LIMIT 1`).Scan(&season.ID, &season.StartedAt, &season.EndedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &season, nil
}
