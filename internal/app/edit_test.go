package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hotel_reputation/internal/app"
	"hotel_reputation/internal/domain"
)

func TestEditService_OverrideInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "booking_scores.csv", "Hotel;2025-09-13;Average Score\nHotel A;8.5;8.5\nHotel B;;\n")
	cache := &fakeCache{}
	q := app.NewQueryService(testCatalog(), dir, nil, cache, time.Minute)
	ed := app.NewEditService(testCatalog(), dir, q)
	ctx := context.Background()

	_, err := q.GetLedger(ctx, "booking")
	require.NoError(t, err)

	res, err := ed.Override(ctx, "booking", "Hotel B", day1, 7.5)
	require.NoError(t, err)
	require.Nil(t, res.Previous)
	require.Equal(t, 7.5, *res.Average)
	require.Contains(t, cache.dels, "ledger:booking")

	c, err := q.GetCell(ctx, "booking", "Hotel B", day1)
	require.NoError(t, err)
	require.False(t, c.Missing)
	require.Equal(t, 7.5, *c.Value)

	res, err = ed.Override(ctx, "booking", "Hotel A", day1, 9)
	require.NoError(t, err)
	require.Equal(t, 8.5, *res.Previous)
}

func TestEditService_UnknownHotelSuggests(t *testing.T) {
	cat := domain.Catalog{
		Hotels:  []domain.HotelKey{"PortoBay Falésia", "Vidamar Resort Hotel Algarve"},
		Sources: []domain.Source{{Name: "booking", Scale: ten}},
	}
	ed := app.NewEditService(cat, t.TempDir(), nil)

	_, err := ed.Override(context.Background(), "booking", "Portobay Falesia", day1, 8)
	var ue *app.UnknownHotelError
	require.True(t, errors.As(err, &ue))
	require.Equal(t, domain.HotelKey("PortoBay Falésia"), ue.Suggestion)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditService_LedgerOnlyHotelIsEditable(t *testing.T) {
	dir := t.TempDir()
	writeLedger(t, dir, "booking_scores.csv", "Hotel;2025-09-13;Average Score\nRetired Hotel;6.1;6.1\n")
	ed := app.NewEditService(testCatalog(), dir, nil)

	res, err := ed.Override(context.Background(), "booking", "Retired Hotel", day1, 6.4)
	require.NoError(t, err)
	require.Equal(t, 6.1, *res.Previous)
}

func TestEditService_RangeError(t *testing.T) {
	ed := app.NewEditService(testCatalog(), t.TempDir(), nil)
	_, err := ed.Override(context.Background(), "google", "Hotel A", day1, 6)
	var re *app.RangeError
	require.ErrorAs(t, err, &re)
}

func TestSuggestHotel(t *testing.T) {
	known := []domain.HotelKey{"NAU São Rafael Atlântico", "NAU Salgados Dunas Suites", "Regency Salgados Hotel & Spa"}

	got, ok := app.SuggestHotel("nau salgados dunas", known)
	require.True(t, ok)
	require.Equal(t, domain.HotelKey("NAU Salgados Dunas Suites"), got)

	_, ok = app.SuggestHotel("Completely Different Place", known)
	require.False(t, ok)

	_, ok = app.SuggestHotel("  ", known)
	require.False(t, ok)
}
