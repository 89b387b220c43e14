// Package history keeps a sqlite journal of capture attempts.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Dicklesworthstone/picam/pkg/model"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultLimit is how many captures Recent returns when asked for zero
const DefaultLimit = 20

// DB handles capture journal persistence
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates the journal at the given path
func OpenDB(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// The worker and the UI may write concurrently; sqlite wants one writer.
	db.SetMaxOpenConns(1)

	hdb := &DB{db: db}
	if err := hdb.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS captures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		format TEXT NOT NULL,
		quality INTEGER NOT NULL,
		profile TEXT DEFAULT '',
		brightness INTEGER NOT NULL,
		sharpness INTEGER NOT NULL,
		contrast INTEGER NOT NULL,
		saturation INTEGER NOT NULL,
		iso INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		error TEXT DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_captures_started ON captures(started_at);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Record inserts a capture and sets its ID
func (d *DB) Record(c *model.Capture) error {
	p := c.Params
	result, err := d.db.Exec(`
		INSERT INTO captures (path, format, quality, profile, brightness, sharpness, contrast, saturation, iso, started_at, finished_at, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.Path, c.Format, c.Quality, c.Profile, p.Brightness, p.Sharpness, p.Contrast, p.Saturation, p.ISO, c.StartedAt, c.FinishedAt, c.Error)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// Recent returns the latest captures, newest first
func (d *DB) Recent(limit int) ([]model.Capture, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := d.db.Query(`
		SELECT id, path, format, quality, profile, brightness, sharpness, contrast, saturation, iso, started_at, finished_at, error
		FROM captures
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captures []model.Capture
	for rows.Next() {
		var c model.Capture
		p := &c.Params
		if err := rows.Scan(&c.ID, &c.Path, &c.Format, &c.Quality, &c.Profile,
			&p.Brightness, &p.Sharpness, &p.Contrast, &p.Saturation, &p.ISO,
			&c.StartedAt, &c.FinishedAt, &c.Error); err != nil {
			return nil, err
		}
		p.Quality = c.Quality
		captures = append(captures, c)
	}
	return captures, rows.Err()
}

// Durations returns the elapsed seconds of every successful capture
func (d *DB) Durations() ([]float64, error) {
	rows, err := d.db.Query(`
		SELECT started_at, finished_at FROM captures WHERE error = '' ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var c model.Capture
		if err := rows.Scan(&c.StartedAt, &c.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, c.Duration().Seconds())
	}
	return out, rows.Err()
}

// Counts returns total and failed capture counts
func (d *DB) Counts() (total, failed int, err error) {
	err = d.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0) FROM captures
	`).Scan(&total, &failed)
	return total, failed, err
}
