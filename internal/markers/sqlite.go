package markers

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS markers (
	path         TEXT PRIMARY KEY,
	mtime_ns     INTEGER NOT NULL,
	processed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps a sql.DB with marker-specific operations. Modification times are
// stored at nanosecond precision so the strict-greater comparison against
// on-disk mtimes is exact.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite marker database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("markers: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("markers: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("markers: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Get returns the recorded modification time for path, or the zero time if
// the path has never been processed.
func (db *DB) Get(path string) (time.Time, error) {
	var ns int64
	err := db.conn.QueryRow(`SELECT mtime_ns FROM markers WHERE path = ?`, path).Scan(&ns)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("markers: get %s: %w", path, err)
	}
	return time.Unix(0, ns), nil
}

// Put inserts or replaces the marker for path.
func (db *DB) Put(path string, mtime, processedAt time.Time) error {
	_, err := db.conn.Exec(`
		INSERT INTO markers (path, mtime_ns, processed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime_ns     = excluded.mtime_ns,
			processed_at = excluded.processed_at
	`, path, mtime.UnixNano(), processedAt.UTC())
	if err != nil {
		return fmt.Errorf("markers: put %s: %w", path, err)
	}
	return nil
}

// All returns every stored marker ordered by path.
func (db *DB) All() ([]Marker, error) {
	rows, err := db.conn.Query(`SELECT path, mtime_ns, processed_at FROM markers ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("markers: all: %w", err)
	}
	defer rows.Close()

	var out []Marker
	for rows.Next() {
		var m Marker
		var ns int64
		if err := rows.Scan(&m.Path, &ns, &m.ProcessedAt); err != nil {
			return nil, err
		}
		m.ModTime = time.Unix(0, ns)
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count returns the number of stored markers.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM markers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("markers: count: %w", err)
	}
	return n, nil
}

// Prune deletes markers whose path no longer satisfies exists. This bounds
// marker growth for long-running deployments where source files rotate.
func (db *DB) Prune(exists func(path string) bool) (int, error) {
	all, err := db.All()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, m := range all {
		if exists(m.Path) {
			continue
		}
		if _, err := db.conn.Exec(`DELETE FROM markers WHERE path = ?`, m.Path); err != nil {
			return removed, fmt.Errorf("markers: prune %s: %w", m.Path, err)
		}
		removed++
	}
	return removed, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
