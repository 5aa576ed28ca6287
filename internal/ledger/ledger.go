// Package ledger holds one source's hotel × date score table and its derived average.
package ledger

import (
	"fmt"
	"math"

	"hotel_reputation/internal/domain"
)

const (
	HotelColumn   = "Hotel"
	AverageColumn = "Average Score"
)

type row struct {
	hotel   domain.HotelKey
	scores  map[domain.DateColumn]float64
	extra   map[string]string // non-date columns, kept verbatim
	average *float64
}

func newRow(k domain.HotelKey) *row {
	return &row{hotel: k, scores: map[domain.DateColumn]float64{}, extra: map[string]string{}}
}

// Ledger is not safe for concurrent use; a run owns it from Load to Save.
type Ledger struct {
	path    string
	columns []string // file order, Hotel and Average excluded
	rows    []*row
	index   map[domain.HotelKey]int
}

// New returns an empty ledger seeded with hotels and a null average.
func New(path string, seed []domain.HotelKey) *Ledger {
	l := &Ledger{path: path, index: map[domain.HotelKey]int{}}
	for _, h := range seed {
		_ = l.EnsureRow(h)
	}
	return l
}

func (l *Ledger) Path() string { return l.path }

func (l *Ledger) Hotels() []domain.HotelKey {
	out := make([]domain.HotelKey, len(l.rows))
	for i, r := range l.rows {
		out[i] = r.hotel
	}
	return out
}

// Dates lists the score columns in file order.
func (l *Ledger) Dates() []domain.DateColumn {
	var out []domain.DateColumn
	for _, c := range l.columns {
		if domain.IsDateColumn(c) {
			out = append(out, domain.DateColumn(c))
		}
	}
	return out
}

func (l *Ledger) HasRow(k domain.HotelKey) bool {
	_, ok := l.index[domain.NormalizeHotelKey(string(k))]
	return ok
}

func (l *Ledger) HasColumn(d domain.DateColumn) bool {
	for _, c := range l.columns {
		if c == string(d) {
			return true
		}
	}
	return false
}

// EnsureRow inserts an all-null row for k if absent.
func (l *Ledger) EnsureRow(k domain.HotelKey) error {
	k = domain.NormalizeHotelKey(string(k))
	if k == "" {
		return fmt.Errorf("ledger: empty hotel key")
	}
	if _, ok := l.index[k]; ok {
		return nil
	}
	l.index[k] = len(l.rows)
	l.rows = append(l.rows, newRow(k))
	return nil
}

// EnsureColumn appends a null date column if absent.
func (l *Ledger) EnsureColumn(d domain.DateColumn) error {
	if !domain.IsDateColumn(string(d)) {
		return fmt.Errorf("ledger: %q is not a YYYY-MM-DD column", d)
	}
	if l.HasColumn(d) {
		return nil
	}
	l.columns = append(l.columns, string(d))
	return nil
}

func (l *Ledger) lookup(k domain.HotelKey, d domain.DateColumn) (*row, error) {
	k = domain.NormalizeHotelKey(string(k))
	i, ok := l.index[k]
	if !ok {
		return nil, &NotFoundError{Hotel: k, Date: d, Row: true}
	}
	if !l.HasColumn(d) {
		return nil, &NotFoundError{Hotel: k, Date: d}
	}
	return l.rows[i], nil
}

// SetCell overwrites one score. Row and column must already exist.
func (l *Ledger) SetCell(k domain.HotelKey, d domain.DateColumn, v float64) error {
	r, err := l.lookup(k, d)
	if err != nil {
		return err
	}
	r.scores[d] = v
	return nil
}

// Cell returns the score and whether it is present.
func (l *Ledger) Cell(k domain.HotelKey, d domain.DateColumn) (float64, bool, error) {
	r, err := l.lookup(k, d)
	if err != nil {
		return 0, false, err
	}
	v, ok := r.scores[d]
	return v, ok, nil
}

func (l *Ledger) Average(k domain.HotelKey) *float64 {
	i, ok := l.index[domain.NormalizeHotelKey(string(k))]
	if !ok || l.rows[i].average == nil {
		return nil
	}
	v := *l.rows[i].average
	return &v
}

// RecomputeAverage sets every row's average to the mean of its present date cells,
// rounded to 2 decimals; rows without scores get a null average.
func (l *Ledger) RecomputeAverage() {
	dates := l.Dates()
	for _, r := range l.rows {
		var sum float64
		var n int
		for _, d := range dates {
			if v, ok := r.scores[d]; ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			r.average = nil
			continue
		}
		avg := round2(sum / float64(n))
		r.average = &avg
	}
}

// Scored counts non-null cells under d.
func (l *Ledger) Scored(d domain.DateColumn) int {
	n := 0
	for _, r := range l.rows {
		if _, ok := r.scores[d]; ok {
			n++
		}
	}
	return n
}

func (l *Ledger) View(source string) domain.LedgerView {
	v := domain.LedgerView{Source: source, Dates: l.Dates()}
	for _, r := range l.rows {
		rv := domain.LedgerRowView{Hotel: r.hotel, Scores: make(map[domain.DateColumn]float64, len(r.scores))}
		for d, s := range r.scores {
			rv.Scores[d] = s
		}
		if r.average != nil {
			a := *r.average
			rv.Average = &a
		}
		v.Rows = append(v.Rows, rv)
	}
	return v
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }
