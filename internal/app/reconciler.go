package app

import (
	"fmt"
	"slices"

	"hotel_reputation/internal/domain"
	"hotel_reputation/internal/ledger"
)

// RangeError rejects a manual value outside the source scale.
type RangeError struct {
	Value float64
	Scale domain.Range
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("score %v outside %s", e.Value, e.Scale)
}

// RunResult summarizes one ApplyRun.
type RunResult struct {
	Written []domain.HotelKey
	Dropped []domain.HotelKey // present but out of range
	Absent  []domain.HotelKey
}

// Reconciler merges resolved scores into a ledger and persists it.
type Reconciler struct {
	scale domain.Range
}

func NewReconciler(scale domain.Range) *Reconciler {
	return &Reconciler{scale: scale}
}

// ApplyRun writes one run date. Every hotel gets a row and the date gets a column even
// when nothing was resolved; cells are set only for present, in-range values.
// Averages are recomputed once and the ledger is saved to its own path.
func (r *Reconciler) ApplyRun(l *ledger.Ledger, date domain.DateColumn, scores map[domain.HotelKey]*float64) (RunResult, error) {
	var res RunResult
	if err := l.EnsureColumn(date); err != nil {
		return res, err
	}

	keys := make([]domain.HotelKey, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if err := l.EnsureRow(k); err != nil {
			return res, err
		}
		v := scores[k]
		switch {
		case v == nil:
			res.Absent = append(res.Absent, k)
		case !r.scale.Contains(*v):
			res.Dropped = append(res.Dropped, k)
		default:
			if err := l.SetCell(k, date, *v); err != nil {
				return res, err
			}
			res.Written = append(res.Written, k)
		}
	}

	l.RecomputeAverage()
	if err := ledger.Save(l, l.Path()); err != nil {
		return res, err
	}
	return res, nil
}

// Override replaces one cell by hand and returns the previous value (nil when the
// cell was missing). Out-of-scale values are refused before the ledger is touched.
func (r *Reconciler) Override(l *ledger.Ledger, hotel domain.HotelKey, date domain.DateColumn, v float64) (*float64, error) {
	if !r.scale.Contains(v) {
		return nil, &RangeError{Value: v, Scale: r.scale}
	}
	if err := l.EnsureRow(hotel); err != nil {
		return nil, err
	}
	if err := l.EnsureColumn(date); err != nil {
		return nil, err
	}

	var prev *float64
	if old, ok, err := l.Cell(hotel, date); err != nil {
		return nil, err
	} else if ok {
		prev = &old
	}

	if err := l.SetCell(hotel, date, v); err != nil {
		return nil, err
	}
	l.RecomputeAverage()
	if err := ledger.Save(l, l.Path()); err != nil {
		return nil, err
	}
	return prev, nil
}
