package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"ccj_tracker/models"
)

// SQLiteStore holds operational data: run history, run logs, and pending
// commands for the daemon. Domain data lives in Postgres.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY,
		uid TEXT,
		kind TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		entries_found INTEGER DEFAULT 0,
		records_new INTEGER DEFAULT 0,
		players_seen INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		kind TEXT
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind, started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.ScrapeRun) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO runs (uid, kind, started_at, status, entries_found, records_new, players_seen, errors_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.UID.String(), run.Kind, run.StartedAt, run.Status,
		run.EntriesFound, run.RecordsNew, run.PlayersSeen, run.ErrorsCount)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.ScrapeRun) error {
	_, err := s.db.Exec(`
		UPDATE runs SET finished_at = ?, status = ?, entries_found = ?, records_new = ?, players_seen = ?, errors_count = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.EntriesFound, run.RecordsNew, run.PlayersSeen, run.ErrorsCount, run.ID)
	return err
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message string, kind models.RunKind) error {
	_, err := s.db.Exec(`
		INSERT INTO logs (run_id, timestamp, level, message, kind)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, kind)
	return err
}

func (s *SQLiteStore) GetRecentRuns(kind models.RunKind, limit int) ([]models.ScrapeRun, error) {
	rows, err := s.db.Query(`
		SELECT id, uid, kind, started_at, finished_at, status, entries_found, records_new, players_seen, errors_count
		FROM runs WHERE kind = ? ORDER BY started_at DESC LIMIT ?`, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ScrapeRun
	for rows.Next() {
		var run models.ScrapeRun
		var uid string
		if err := rows.Scan(&run.ID, &uid, &run.Kind, &run.StartedAt, &run.FinishedAt, &run.Status,
			&run.EntriesFound, &run.RecordsNew, &run.PlayersSeen, &run.ErrorsCount); err != nil {
			return nil, err
		}
		run.UID, _ = uuid.Parse(uid)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) EnqueueCommand(cmd models.CommandType) error {
	_, err := s.db.Exec(`INSERT INTO commands (command) VALUES (?)`, cmd)
	return err
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, created_at FROM commands
		WHERE processed_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		if err := rows.Scan(&cmd.ID, &cmd.Command, &cmd.CreatedAt); err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}
