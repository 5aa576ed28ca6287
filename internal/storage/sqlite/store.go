// Package sqlite keeps run history in an embedded database file for single-host
// deployments that do not run MySQL.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"hotel_reputation/internal/domain"
)

//go:embed schema.sql
var Schema string

const (
	upsertRunSQL = `
INSERT INTO runs (id, source, run_date, status, scored, total, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
  status      = excluded.status,
  scored      = excluded.scored,
  total       = excluded.total,
  finished_at = excluded.finished_at`

	upsertMissSQL = `
INSERT INTO extraction_misses (source, hotel, run_date, reason)
VALUES (?, ?, ?, ?)
ON CONFLICT (source, hotel, run_date) DO UPDATE SET
  reason  = excluded.reason,
  seen_at = unixepoch()`

	listRunsSQL = `
SELECT id, source, run_date, status, scored, total, started_at, finished_at
FROM runs WHERE source = ?
ORDER BY started_at DESC, id DESC
LIMIT ?`

	listMissesSQL = `
SELECT source, hotel, run_date, reason
FROM extraction_misses WHERE source = ? AND run_date = ?
ORDER BY hotel`
)

type Store struct{ db *sql.DB }

// Open opens (or creates) the database at dsn and applies the schema.
// Use ":memory:" for a throwaway store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer at a time; also keeps ":memory:" on a single connection
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) RecordRun(ctx context.Context, r domain.RunRecord) error {
	_, err := s.db.ExecContext(ctx, upsertRunSQL,
		r.ID, r.Source, string(r.Date), string(r.Status), r.Scored, r.Total,
		r.StartedAt.UnixMilli(), r.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) LogMiss(ctx context.Context, m domain.Miss) error {
	_, err := s.db.ExecContext(ctx, upsertMissSQL, m.Source, string(m.Hotel), string(m.Date), m.Reason)
	return err
}

func (s *Store) ListRuns(ctx context.Context, source string, limit int) ([]domain.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, listRunsSQL, source, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.RunRecord{}
	for rows.Next() {
		var (
			r                 domain.RunRecord
			date, status      string
			started, finished int64
		)
		if err := rows.Scan(&r.ID, &r.Source, &date, &status, &r.Scored, &r.Total, &started, &finished); err != nil {
			return nil, err
		}
		r.Date, r.Status = domain.DateColumn(date), domain.RunStatus(status)
		r.StartedAt, r.FinishedAt = time.UnixMilli(started).UTC(), time.UnixMilli(finished).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListMisses(ctx context.Context, source string, date domain.DateColumn) ([]domain.Miss, error) {
	rows, err := s.db.QueryContext(ctx, listMissesSQL, source, string(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Miss{}
	for rows.Next() {
		var m domain.Miss
		var hotel, d string
		if err := rows.Scan(&m.Source, &hotel, &d, &m.Reason); err != nil {
			return nil, err
		}
		m.Hotel, m.Date = domain.HotelKey(hotel), domain.DateColumn(d)
		out = append(out, m)
	}
	return out, rows.Err()
}
