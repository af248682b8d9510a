package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/paperdesk/ledger"
)

// SchemaVersion changes when the snapshot JSON layout changes.
// DemoGeneration changes when the seeded demo account changes shape.
// Either bump moves the snapshot key, which invalidates whatever an older
// build left behind; stale rows are purged, never migrated.
const (
	SchemaVersion  = 2
	DemoGeneration = 1
)

// SnapshotKey is the single row key the current build reads and writes.
func SnapshotKey() string {
	return fmt.Sprintf("account.v%d.g%d", SchemaVersion, DemoGeneration)
}

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	saved_at DATETIME NOT NULL
);
`

type SQLite struct {
	db  *sql.DB
	key string
}

// NewSQLite opens (creating if needed) the snapshot db and drops any rows
// written under a different key, so legacy snapshots cannot resurface.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot schema: %w", err)
	}

	s := &SQLite{db: db, key: SnapshotKey()}
	if _, err := db.Exec(`DELETE FROM snapshots WHERE key != ?`, s.key); err != nil {
		db.Close()
		return nil, fmt.Errorf("purge legacy snapshots: %w", err)
	}
	return s, nil
}

// Load returns the stored snapshot, or (nil, nil) when there is nothing
// usable. A row that fails to decode is deleted rather than half-migrated.
func (s *SQLite) Load() (*ledger.AccountState, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM snapshots WHERE key = ?`, s.key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var state ledger.AccountState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		_, _ = s.db.Exec(`DELETE FROM snapshots WHERE key = ?`, s.key)
		return nil, nil
	}
	return &state, nil
}

func (s *SQLite) Save(state ledger.AccountState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO snapshots (key, data, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		s.key, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
