// Package store keeps timelines of gridded record sets in a SQLite file.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"wxmap/internal/field"
)

// ErrNotFound is returned by Load when no record exists at the time.
var ErrNotFound = errors.New("store: no record at that time")

const schema = `
CREATE TABLE IF NOT EXISTS fields (
	time INTEGER NOT NULL,
	field TEXT NOT NULL,
	ni INTEGER NOT NULL,
	nj INTEGER NOT NULL,
	lon0 REAL NOT NULL,
	lat0 REAL NOT NULL,
	dlon REAL NOT NULL,
	dlat REAL NOT NULL,
	vals BLOB NOT NULL,
	PRIMARY KEY (time, field)
);
CREATE INDEX IF NOT EXISTS idx_fields_time ON fields(time);
`

// Store is an open timeline database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one connection, so ":memory:" stays a single database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating fields table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Put stores every grid of rec, replacing fields already stored at its time.
func (s *Store) Put(ctx context.Context, rec *field.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer tx.Rollback()

	for _, id := range field.IDs() {
		f, ok := rec.Field(id)
		if !ok {
			continue
		}
		g, ok := f.(*field.Grid)
		if !ok {
			return fmt.Errorf("store: field %s is not a stored grid", id)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO fields (time, field, ni, nj, lon0, lat0, dlon, dlat, vals)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.Time.Unix(), id.String(), g.Ni, g.Nj, g.Lon0, g.Lat0, g.DLon, g.DLat, encode(g.Vals))
		if err != nil {
			return fmt.Errorf("store: inserting %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// Times lists the stored record times in ascending order.
func (s *Store) Times(ctx context.Context) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT time FROM fields ORDER BY time`)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var sec int64
		if err := rows.Scan(&sec); err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		out = append(out, time.Unix(sec, 0).UTC())
	}
	return out, rows.Err()
}

// Load returns the record set stored at t.
func (s *Store) Load(ctx context.Context, t time.Time) (*field.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT field, ni, nj, lon0, lat0, dlon, dlat, vals
		FROM fields WHERE time = ?`, t.Unix())
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	defer rows.Close()

	rec := field.NewRecord(t.UTC())
	for rows.Next() {
		var (
			name string
			g    field.Grid
			blob []byte
		)
		if err := rows.Scan(&name, &g.Ni, &g.Nj, &g.Lon0, &g.Lat0, &g.DLon, &g.DLat, &blob); err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		id, ok := field.ParseID(name)
		if !ok {
			continue
		}
		if g.Vals, err = decode(blob, g.Ni*g.Nj); err != nil {
			return nil, fmt.Errorf("store: %s: %w", name, err)
		}
		rec.Fields[id] = &g
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if len(rec.Fields) == 0 {
		return nil, ErrNotFound
	}
	return rec, nil
}

// LoadAll returns every stored record set in time order.
func (s *Store) LoadAll(ctx context.Context) ([]*field.Record, error) {
	times, err := s.Times(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*field.Record, 0, len(times))
	for _, t := range times {
		rec, err := s.Load(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func encode(vals []float64) []byte {
	b := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(v))
	}
	return b
}

func decode(b []byte, n int) ([]float64, error) {
	if len(b) != 8*n {
		return nil, fmt.Errorf("have %d bytes, want %d", len(b), 8*n)
	}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return vals, nil
}
