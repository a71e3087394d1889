package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *zap.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			source          TEXT,
			card_count      INTEGER,
			cards           TEXT,
			memberships     TEXT,
			score           REAL,
			annual          REAL,
			multiplier      REAL,
			evaluated       INTEGER,
			duration_ms     INTEGER,
			catalog_version INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS catalog_refreshes (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			source    TEXT,
			version   INTEGER,
			cards     INTEGER,
			ok        INTEGER,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refreshes_ts ON catalog_refreshes(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func stamp(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Unix()
}

func (r *SQLiteRecorder) RecordRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cards, err := json.Marshal(run.Cards)
	if err != nil {
		return err
	}
	members, err := json.Marshal(run.Memberships)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`INSERT INTO runs
		(timestamp, source, card_count, cards, memberships, score, annual,
		 multiplier, evaluated, duration_ms, catalog_version)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		stamp(run.Timestamp), run.Source, run.CardCount, string(cards), string(members),
		run.Score, run.Annual, run.Multiplier, run.Evaluated,
		run.Duration.Milliseconds(), int64(run.CatalogVersion),
	)
	return err
}

func (r *SQLiteRecorder) RecordRefresh(evt *RefreshEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO catalog_refreshes
		(timestamp, source, version, cards, ok, error)
		VALUES (?,?,?,?,?,?)`,
		stamp(evt.Timestamp), evt.Source, int64(evt.Version), evt.Cards, evt.OK, evt.Err,
	)
	return err
}

const runColumns = `timestamp, source, card_count, cards, memberships, score, annual,
	multiplier, evaluated, duration_ms, catalog_version`

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanRuns(rows)
}

// RunsSince returns runs recorded at or after since, oldest first.
func (r *SQLiteRecorder) RunsSince(since time.Time) ([]Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT `+runColumns+` FROM runs WHERE timestamp >= ? ORDER BY timestamp, id`, since.Unix())
	if err != nil {
		return nil, err
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run            Run
			ts, durMs, ver int64
			cards, members string
		)
		if err := rows.Scan(&ts, &run.Source, &run.CardCount, &cards, &members,
			&run.Score, &run.Annual, &run.Multiplier, &run.Evaluated, &durMs, &ver); err != nil {
			return nil, err
		}
		run.Timestamp = time.Unix(ts, 0)
		run.Duration = time.Duration(durMs) * time.Millisecond
		run.CatalogVersion = uint64(ver)
		if err := json.Unmarshal([]byte(cards), &run.Cards); err != nil {
			return nil, fmt.Errorf("decode cards: %w", err)
		}
		if err := json.Unmarshal([]byte(members), &run.Memberships); err != nil {
			return nil, fmt.Errorf("decode memberships: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
