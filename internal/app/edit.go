package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"hotel_reputation/internal/adapters/observability"
	"hotel_reputation/internal/domain"
	"hotel_reputation/internal/ledger"
)

// UnknownHotelError refuses edits to hotels that are neither in the catalog nor
// already in the ledger, so a typo never creates a new row.
type UnknownHotelError struct {
	Hotel      domain.HotelKey
	Suggestion domain.HotelKey // empty when nothing is close
}

func (e *UnknownHotelError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown hotel %q (did you mean %q?)", e.Hotel, e.Suggestion)
	}
	return fmt.Sprintf("unknown hotel %q", e.Hotel)
}

func (e *UnknownHotelError) Is(target error) bool { return target == domain.ErrNotFound }

// OverrideResult describes a manual correction after it was saved.
type OverrideResult struct {
	Source   string
	Hotel    domain.HotelKey
	Date     domain.DateColumn
	Previous *float64
	Value    float64
	Average  *float64
}

// EditService applies manual corrections to a source ledger.
type EditService struct {
	catalog domain.Catalog
	dataDir string
	queries *QueryService // optional, for cache invalidation
}

func NewEditService(cat domain.Catalog, dataDir string, q *QueryService) *EditService {
	return &EditService{catalog: cat, dataDir: dataDir, queries: q}
}

// KnownHotels lists catalog hotels followed by any extra rows already in the ledger.
func (s *EditService) KnownHotels(source string) ([]domain.HotelKey, error) {
	src, ok := s.catalog.Source(source)
	if !ok {
		return nil, &UnknownSourceError{Name: source}
	}
	l, err := ledger.Load(LedgerPath(s.dataDir, src), s.catalog.Hotels)
	if err != nil {
		return nil, err
	}
	return knownHotels(s.catalog.Hotels, l), nil
}

func knownHotels(catalog []domain.HotelKey, l *ledger.Ledger) []domain.HotelKey {
	out := slices.Clone(catalog)
	for _, h := range l.Hotels() {
		if !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	return out
}

// Override sets one cell through the reconciler and returns what it replaced.
func (s *EditService) Override(ctx context.Context, source string, hotel domain.HotelKey, date domain.DateColumn, value float64) (OverrideResult, error) {
	src, ok := s.catalog.Source(source)
	if !ok {
		return OverrideResult{}, &UnknownSourceError{Name: source}
	}
	hotel = domain.NormalizeHotelKey(string(hotel))

	l, err := ledger.Load(LedgerPath(s.dataDir, src), s.catalog.Hotels)
	if err != nil {
		return OverrideResult{}, err
	}
	if !s.catalog.HasHotel(hotel) && !l.HasRow(hotel) {
		sug, _ := SuggestHotel(string(hotel), knownHotels(s.catalog.Hotels, l))
		return OverrideResult{}, &UnknownHotelError{Hotel: hotel, Suggestion: sug}
	}

	prev, err := NewReconciler(src.Scale).Override(l, hotel, date, value)
	if err != nil {
		return OverrideResult{}, err
	}
	observability.ObserveLedgerWrite(src.Name, "override")
	if s.queries != nil {
		s.queries.Invalidate(ctx, src.Name)
	}

	ev := log.Info().Str("source", src.Name).Str("hotel", string(hotel)).Str("date", string(date)).Float64("value", value)
	if prev != nil {
		ev = ev.Float64("previous", *prev)
	}
	ev.Msg("manual override saved")

	return OverrideResult{
		Source:   src.Name,
		Hotel:    hotel,
		Date:     date,
		Previous: prev,
		Value:    value,
		Average:  l.Average(hotel),
	}, nil
}
