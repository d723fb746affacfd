// Package store provides persistent storage backends.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/shiftboard/core/availability"
	"github.com/kilianp07/shiftboard/core/factory"
	"github.com/kilianp07/shiftboard/core/storage"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS availability (
        employee_key TEXT PRIMARY KEY,
        employee TEXT NOT NULL,
        version TEXT NOT NULL,
        document TEXT NOT NULL,
        saved_at INTEGER
    );`,
	`CREATE TABLE IF NOT EXISTS schedule (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        version TEXT NOT NULL,
        feed TEXT NOT NULL,
        saved_at INTEGER
    );`,
}

// SQLiteStore persists availability snapshots and the schedule feed in a
// SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			if cerr := db.Close(); cerr != nil {
				return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
			}
			return nil, err
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetAvailability(ctx context.Context, employee string) (availability.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT employee, version, document, saved_at FROM availability WHERE employee_key = ?`,
		storage.EmployeeKey(employee))
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return availability.Snapshot{}, fmt.Errorf("availability %q: %w", employee, storage.ErrNotFound)
	}
	return snap, err
}

func (s *SQLiteStore) PutAvailability(ctx context.Context, snap availability.Snapshot) error {
	doc, err := json.Marshal(snap.Document)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO availability (employee_key, employee, version, document, saved_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(employee_key) DO UPDATE SET
            employee = excluded.employee,
            version = excluded.version,
            document = excluded.document,
            saved_at = excluded.saved_at`,
		storage.EmployeeKey(snap.Employee), snap.Employee, snap.Version, string(doc), snap.SavedAt.UnixMilli())
	return err
}

func (s *SQLiteStore) ListAvailability(ctx context.Context) ([]availability.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT employee, version, document, saved_at FROM availability ORDER BY employee_key`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []availability.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(r scanner) (availability.Snapshot, error) {
	var (
		snap  availability.Snapshot
		doc   string
		saved int64
	)
	if err := r.Scan(&snap.Employee, &snap.Version, &doc, &saved); err != nil {
		return availability.Snapshot{}, err
	}
	if err := json.Unmarshal([]byte(doc), &snap.Document); err != nil {
		return availability.Snapshot{}, fmt.Errorf("unmarshal document: %w", err)
	}
	snap.SavedAt = time.UnixMilli(saved).UTC()
	return snap, nil
}

func (s *SQLiteStore) GetSchedule(ctx context.Context) (storage.Schedule, error) {
	var (
		sc    storage.Schedule
		feed  string
		saved int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT version, feed, saved_at FROM schedule WHERE id = 1`).
		Scan(&sc.Version, &feed, &saved)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Schedule{}, fmt.Errorf("schedule: %w", storage.ErrNotFound)
	}
	if err != nil {
		return storage.Schedule{}, err
	}
	if err := json.Unmarshal([]byte(feed), &sc.Feed); err != nil {
		return storage.Schedule{}, fmt.Errorf("unmarshal feed: %w", err)
	}
	sc.SavedAt = time.UnixMilli(saved).UTC()
	return sc, nil
}

func (s *SQLiteStore) PutSchedule(ctx context.Context, sc storage.Schedule) error {
	feed, err := json.Marshal(sc.Feed)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO schedule (id, version, feed, saved_at) VALUES (1, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET version = excluded.version, feed = excluded.feed, saved_at = excluded.saved_at`,
		sc.Version, string(feed), sc.SavedAt.UnixMilli())
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func init() {
	_ = storage.RegisterStore("sqlite", func(conf map[string]any) (storage.Store, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "shiftboard.db"
		}
		return NewSQLiteStore(c.Path)
	})
}
