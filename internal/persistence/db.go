// Package persistence provides SQLite-based simulation storage. The
// source of truth is the snapshot document; relational tables for
// policies and the log exist so history stays queryable.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/statehouse/internal/engine"
)

// DB wraps a SQLite connection for simulation persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		turn INTEGER PRIMARY KEY,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		sponsor TEXT NOT NULL,
		party TEXT NOT NULL,
		scope TEXT NOT NULL,
		state_name TEXT,
		status TEXT NOT NULL,
		proposed_turn INTEGER NOT NULL,
		resolved_turn INTEGER NOT NULL,
		effect_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS log_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sim_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_log_turn ON log_events(turn);
	CREATE INDEX IF NOT EXISTS idx_policies_status ON policies(status);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot stores a full document keyed by turn, replacing any
// earlier snapshot of the same turn, and refreshes the policy table.
func (db *DB) SaveSnapshot(doc *engine.Document) error {
	data, err := engine.MarshalSnapshot(doc)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT OR REPLACE INTO snapshots (turn, year, month, doc) VALUES (?, ?, ?, ?)",
		doc.Turn, doc.Year, doc.Month, string(data),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM policies"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO policies
		(id, title, sponsor, party, scope, state_name, status,
		 proposed_turn, resolved_turn, effect_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range doc.Policies {
		p := &doc.Policies[i]
		effectJSON, _ := json.Marshal(p.Effect)
		_, err := stmt.Exec(
			p.ID, p.Title, p.Sponsor, string(p.Party), string(p.Scope),
			p.StateName, string(p.Status), p.ProposedTurn, p.ResolvedTurn,
			string(effectJSON),
		)
		if err != nil {
			return fmt.Errorf("insert policy %s: %w", p.ID, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO sim_meta (key, value) VALUES ('last_turn', ?)",
		fmt.Sprintf("%d", doc.Turn),
	); err != nil {
		return err
	}

	return tx.Commit()
}

// AppendLog writes new log events. Append-only; callers pass only the
// events produced since the previous save.
func (db *DB) AppendLog(events []engine.LogEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO log_events (turn, year, month, category, description) VALUES (?, ?, ?, ?, ?)",
			e.Turn, e.Year, e.Month, e.Category, e.Description,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadLatest returns the most recent snapshot document, or nil when the
// database holds none.
func (db *DB) LoadLatest() (*engine.Document, error) {
	var raw string
	err := db.conn.Get(&raw, "SELECT doc FROM snapshots ORDER BY turn DESC LIMIT 1")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return engine.UnmarshalSnapshot([]byte(raw))
}

// LoadTurn returns the snapshot stored for one turn.
func (db *DB) LoadTurn(turn uint64) (*engine.Document, error) {
	var raw string
	if err := db.conn.Get(&raw, "SELECT doc FROM snapshots WHERE turn = ?", turn); err != nil {
		return nil, fmt.Errorf("snapshot turn %d: %w", turn, err)
	}
	return engine.UnmarshalSnapshot([]byte(raw))
}

// Turns lists every stored snapshot turn in ascending order.
func (db *DB) Turns() ([]uint64, error) {
	var turns []uint64
	err := db.conn.Select(&turns, "SELECT turn FROM snapshots ORDER BY turn ASC")
	return turns, err
}

// Prune deletes all snapshots except the most recent n.
func (db *DB) Prune(keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := db.conn.Exec(
		`DELETE FROM snapshots WHERE turn NOT IN
		 (SELECT turn FROM snapshots ORDER BY turn DESC LIMIT ?)`, keep)
	return err
}

// SaveMeta stores a key-value pair in simulation metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO sim_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM sim_meta WHERE key = ?", key)
	return value, err
}

// RecentLog returns the most recent N log events.
func (db *DB) RecentLog(limit int) ([]engine.LogEvent, error) {
	var events []engine.LogEvent
	err := db.conn.Select(&events,
		"SELECT turn, year, month, category, description FROM log_events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// SaveState persists the whole simulation: snapshot, policies, and the
// log events produced since lastLogged.
func (db *DB) SaveState(sim *engine.Simulation, lastLogged int) (int, error) {
	doc := sim.Export()
	slog.Info("saving simulation",
		"turn", doc.Turn, "year", doc.Year, "month", doc.Month,
		"policies", len(doc.Policies))

	if err := db.SaveSnapshot(doc); err != nil {
		return lastLogged, fmt.Errorf("save snapshot: %w", err)
	}
	if lastLogged > len(doc.Log) {
		// The in-memory log was truncated; persist everything we have.
		lastLogged = 0
	}
	if err := db.AppendLog(doc.Log[lastLogged:]); err != nil {
		return lastLogged, fmt.Errorf("save log: %w", err)
	}
	return len(doc.Log), nil
}
