package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"hotel_reputation/internal/domain"
)

const Separator = ';'

// Load reads the ledger at path. A missing file yields a fresh ledger seeded with hotels.
func Load(path string, seed []domain.HotelKey) (*Ledger, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(path, seed), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer f.Close()

	l, err := Read(f)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return nil, err
	}
	l.path = path
	return l, nil
}

// Read parses a ledger table. Hotel keys are trimmed and duplicates keep the first row.
func Read(r io.Reader) (*Ledger, error) {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.FieldsPerRecord = -1

	recs, err := cr.ReadAll()
	if err != nil {
		return nil, &FormatError{Reason: "unreadable table", Err: err}
	}
	if len(recs) == 0 {
		return nil, &FormatError{Reason: "missing " + HotelColumn + " column"}
	}

	header := recs[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	hotelIdx, avgIdx := -1, -1
	l := &Ledger{index: map[domain.HotelKey]int{}}
	colIdx := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		switch {
		case h == HotelColumn && hotelIdx < 0:
			hotelIdx = i
		case h == AverageColumn && avgIdx < 0:
			avgIdx = i
		default:
			if _, dup := colIdx[h]; dup || h == HotelColumn || h == AverageColumn {
				return nil, &FormatError{Reason: fmt.Sprintf("duplicate column %q", h)}
			}
			colIdx[h] = i
			l.columns = append(l.columns, h)
		}
	}
	if hotelIdx < 0 {
		return nil, &FormatError{Reason: "missing " + HotelColumn + " column"}
	}

	for n, rec := range recs[1:] {
		if len(rec) > len(header) {
			return nil, &FormatError{Reason: fmt.Sprintf("line %d has %d fields, header has %d", n+2, len(rec), len(header))}
		}
		field := func(i int) string {
			if i < 0 || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		k := domain.NormalizeHotelKey(field(hotelIdx))
		if k == "" {
			continue
		}
		if _, seen := l.index[k]; seen {
			continue
		}
		rw := newRow(k)
		for _, c := range l.columns {
			raw := field(colIdx[c])
			if !domain.IsDateColumn(c) {
				if raw != "" {
					rw.extra[c] = raw
				}
				continue
			}
			v, ok, err := parseCell(raw)
			if err != nil {
				return nil, &FormatError{Reason: fmt.Sprintf("hotel %q column %s", k, c), Err: err}
			}
			if ok {
				rw.scores[domain.DateColumn(c)] = v
			}
		}
		if v, ok, err := parseCell(field(avgIdx)); err == nil && ok {
			rw.average = &v
		}
		l.index[k] = len(l.rows)
		l.rows = append(l.rows, rw)
	}
	return l, nil
}

func parseCell(raw string) (float64, bool, error) {
	if raw == "" || strings.EqualFold(raw, "nan") {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%q is not a number", raw)
	}
	if math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("%q is not finite", raw)
	}
	return v, true, nil
}

// Save writes the whole table to path. The file is replaced in one rename, so the
// last Save wins; concurrent writers for the same source are not reconciled.
func Save(l *Ledger, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, l); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace ledger %s: %w", path, err)
	}
	l.path = path
	return nil
}

// Write emits Hotel;<columns...>;Average Score with one row per hotel.
func Write(w io.Writer, l *Ledger) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator

	header := make([]string, 0, len(l.columns)+2)
	header = append(header, HotelColumn)
	header = append(header, l.columns...)
	header = append(header, AverageColumn)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range l.rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, string(r.hotel))
		for _, c := range l.columns {
			if !domain.IsDateColumn(c) {
				rec = append(rec, r.extra[c])
				continue
			}
			if v, ok := r.scores[domain.DateColumn(c)]; ok {
				rec = append(rec, FormatScore(v))
			} else {
				rec = append(rec, "")
			}
		}
		if r.average != nil {
			rec = append(rec, FormatScore(*r.average))
		} else {
			rec = append(rec, "")
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func FormatScore(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
