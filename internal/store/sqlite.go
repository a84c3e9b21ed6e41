// Package store loads scan input: two-body aspect records and body
// longitudes. A SQLite database serves long-lived input; TOML fixtures
// serve hand-written scenarios and seed the database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/syzygy/internal/edge"
	"github.com/papapumpkin/syzygy/internal/ephemeris"
	"github.com/papapumpkin/syzygy/internal/sky"
)

// timeLayout is fixed-width so timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05Z"

const schema = `
CREATE TABLE IF NOT EXISTS aspects (
    id       TEXT PRIMARY KEY,
    bodies   TEXT NOT NULL,
    aspects  TEXT NOT NULL,
    phase    TEXT NOT NULL DEFAULT '',
    start_at TEXT NOT NULL,
    end_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS aspects_start ON aspects(start_at);

CREATE TABLE IF NOT EXISTS longitudes (
    at      TEXT NOT NULL,
    body    TEXT NOT NULL,
    degrees REAL NOT NULL,
    PRIMARY KEY (at, body)
);
`

// DB is the SQLite input store.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, enables WAL mode and a busy
// timeout, and creates the schema if needed.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite has a single writer; one connection avoids SQLITE_BUSY
	// between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// PutAspects upserts records by ID in a single transaction. Records are
// stored verbatim, malformed ones included, so extraction can report them.
func (d *DB) PutAspects(ctx context.Context, records []edge.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx for aspects: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const q = `
		INSERT INTO aspects (id, bodies, aspects, phase, start_at, end_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			bodies   = excluded.bodies,
			aspects  = excluded.aspects,
			phase    = excluded.phase,
			start_at = excluded.start_at,
			end_at   = excluded.end_at`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("store: prepare aspect upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID,
			strings.Join(r.Bodies, ","), strings.Join(r.Aspects, ","), r.Phase,
			formatTime(r.Start), formatTime(r.End)); err != nil {
			return fmt.Errorf("store: put aspect %q: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit aspects: %w", err)
	}
	return nil
}

// LoadAspects returns the records whose interval overlaps [from, to],
// ordered by start.
func (d *DB) LoadAspects(ctx context.Context, from, to time.Time) ([]edge.Record, error) {
	const q = `
		SELECT id, bodies, aspects, phase, start_at, end_at
		FROM aspects
		WHERE start_at <= ? AND end_at >= ?
		ORDER BY start_at, id`
	rows, err := d.db.QueryContext(ctx, q, formatTime(to), formatTime(from))
	if err != nil {
		return nil, fmt.Errorf("store: query aspects: %w", err)
	}
	defer rows.Close()

	var out []edge.Record
	for rows.Next() {
		var r edge.Record
		var bodies, aspects, start, end string
		if err := rows.Scan(&r.ID, &bodies, &aspects, &r.Phase, &start, &end); err != nil {
			return nil, fmt.Errorf("store: scan aspect: %w", err)
		}
		r.Bodies = splitList(bodies)
		r.Aspects = splitList(aspects)
		if r.Start, err = time.Parse(timeLayout, start); err != nil {
			return nil, fmt.Errorf("store: aspect %q start: %w", r.ID, err)
		}
		if r.End, err = time.Parse(timeLayout, end); err != nil {
			return nil, fmt.Errorf("store: aspect %q end: %w", r.ID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate aspects: %w", err)
	}
	return out, nil
}

// PutLongitudes upserts samples in a single transaction.
func (d *DB) PutLongitudes(ctx context.Context, samples []ephemeris.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx for longitudes: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const q = `
		INSERT INTO longitudes (at, body, degrees) VALUES (?, ?, ?)
		ON CONFLICT(at, body) DO UPDATE SET degrees = excluded.degrees`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("store: prepare longitude upsert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx, formatTime(s.At), s.Body.String(), sky.Normalize(s.Degrees)); err != nil {
			return fmt.Errorf("store: put longitude %s at %s: %w", s.Body, formatTime(s.At), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit longitudes: %w", err)
	}
	return nil
}

// LoadLongitudes returns every sample in [from, to] as a lookup table.
// Rows naming unknown bodies are an error.
func (d *DB) LoadLongitudes(ctx context.Context, from, to time.Time) (*ephemeris.Table, error) {
	const q = `SELECT at, body, degrees FROM longitudes WHERE at >= ? AND at <= ?`
	rows, err := d.db.QueryContext(ctx, q, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("store: query longitudes: %w", err)
	}
	defer rows.Close()

	tbl := ephemeris.NewTable()
	for rows.Next() {
		var at, name string
		var deg float64
		if err := rows.Scan(&at, &name, &deg); err != nil {
			return nil, fmt.Errorf("store: scan longitude: %w", err)
		}
		ts, err := time.Parse(timeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("store: longitude time %q: %w", at, err)
		}
		body, err := sky.ParseBody(name)
		if err != nil {
			return nil, fmt.Errorf("store: longitude at %s: %w", at, err)
		}
		tbl.Set(ts, body, deg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate longitudes: %w", err)
	}
	return tbl, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
