package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"hotel_reputation/internal/domain"
)

// Repo stores run history in MySQL.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) RecordRun(ctx context.Context, run domain.RunRecord) error {
	_, err := r.db.ExecContext(ctx, upsertRunSQL,
		run.ID,
		run.Source,
		string(run.Date),
		string(run.Status),
		run.Scored,
		run.Total,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

func (r *Repo) LogMiss(ctx context.Context, m domain.Miss) error {
	_, err := r.db.ExecContext(ctx, upsertMissSQL, m.Source, string(m.Hotel), string(m.Date), m.Reason)
	return err
}

func (r *Repo) ListRuns(ctx context.Context, source string, limit int) ([]domain.RunRecord, error) {
	rows, err := r.db.QueryContext(ctx, listRunsSQL, source, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.RunRecord{}
	for rows.Next() {
		var (
			rec          domain.RunRecord
			date, status string
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &date, &status, &rec.Scored, &rec.Total, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, err
		}
		rec.Date = domain.DateColumn(date)
		rec.Status = domain.RunStatus(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repo) ListMisses(ctx context.Context, source string, date domain.DateColumn) ([]domain.Miss, error) {
	rows, err := r.db.QueryContext(ctx, listMissesSQL, source, string(date))
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
