// Package runlog keeps a local SQLite history of conversion runs. It is an
// operator convenience: recording failures never invalidate a script that
// was already produced.
package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type DB struct {
	db *sql.DB
}

// Run is one recorded conversion.
type Run struct {
	ID             string
	StartedAt      time.Time
	StructurePath  string
	ColorMapDigest string

	Cols   int
	Rows   int
	Depths int

	Bricks   int
	ByColor  map[string]int
	Unmapped int

	OutputPath string
	FeedScale  float64
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		structure_path TEXT NOT NULL,
		colormap_digest TEXT NOT NULL,
		cols INTEGER NOT NULL,
		rows INTEGER NOT NULL,
		depths INTEGER NOT NULL,
		bricks INTEGER NOT NULL,
		by_color TEXT NOT NULL,
		unmapped INTEGER NOT NULL,
		output_path TEXT NOT NULL,
		feed_scale REAL NOT NULL
	);`)
	return err
}

// Record inserts one run row. A missing ID gets a fresh UUID.
func (d *DB) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	byColor, err := json.Marshal(r.ByColor)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, structure_path, colormap_digest,
			cols, rows, depths, bricks, by_color, unmapped, output_path, feed_scale)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.StructurePath, r.ColorMapDigest,
		r.Cols, r.Rows, r.Depths, r.Bricks, string(byColor), r.Unmapped, r.OutputPath, r.FeedScale)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns the newest n runs, newest first.
func (d *DB) Recent(ctx context.Context, n int) ([]Run, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, started_at, structure_path, colormap_digest,
			cols, rows, depths, bricks, by_color, unmapped, output_path, feed_scale
		 FROM runs ORDER BY started_at DESC LIMIT ?;`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, byColor string
		if err := rows.Scan(&r.ID, &started, &r.StructurePath, &r.ColorMapDigest,
			&r.Cols, &r.Rows, &r.Depths, &r.Bricks, &byColor, &r.Unmapped,
			&r.OutputPath, &r.FeedScale); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		if err := json.Unmarshal([]byte(byColor), &r.ByColor); err != nil {
			return nil, fmt.Errorf("run %s: by_color: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) Close() error {
	return d.db.Close()
}
