package ledger_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"hotel_reputation/internal/domain"
	"hotel_reputation/internal/ledger"
)

const (
	d1 = domain.DateColumn("2025-09-13")
	d2 = domain.DateColumn("2025-09-20")
	d3 = domain.DateColumn("2025-09-27")
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "scores.csv")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_MissingFileIsSeeded(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope.csv")
	l, err := ledger.Load(p, []domain.HotelKey{"PortoBay Falésia", "Vidamar Resort Hotel Algarve"})
	require.NoError(t, err)
	require.Equal(t, []domain.HotelKey{"PortoBay Falésia", "Vidamar Resort Hotel Algarve"}, l.Hotels())
	require.Empty(t, l.Dates())
	require.Nil(t, l.Average("PortoBay Falésia"))

	var buf bytes.Buffer
	require.NoError(t, ledger.Write(&buf, l))
	require.Equal(t, "Hotel;Average Score\nPortoBay Falésia;\nVidamar Resort Hotel Algarve;\n", buf.String())
}

func TestLoad_MissingHotelColumnIsFormatError(t *testing.T) {
	body := "Name;2025-09-13\nA;4.5\n"
	p := writeFile(t, body)

	_, err := ledger.Load(p, nil)
	var fe *ledger.FormatError
	require.True(t, errors.As(err, &fe), "got %v", err)
	require.Equal(t, p, fe.Path)

	// the file is left untouched
	got, _ := os.ReadFile(p)
	require.Equal(t, body, string(got))
}

func TestLoad_EmptyFileIsFormatError(t *testing.T) {
	p := writeFile(t, "")
	_, err := ledger.Load(p, nil)
	var fe *ledger.FormatError
	require.ErrorAs(t, err, &fe)
}

func TestLoad_NonNumericScoreIsFormatError(t *testing.T) {
	p := writeFile(t, "Hotel;2025-09-13\nA;excellent\n")
	_, err := ledger.Load(p, nil)
	var fe *ledger.FormatError
	require.ErrorAs(t, err, &fe)
}

func TestLoad_CollapsesDuplicateKeysKeepingFirst(t *testing.T) {
	p := writeFile(t, "Hotel;2025-09-13;Average Score\n"+
		"Hotel A;4.5;4.5\n"+
		" Hotel A ;3;3\n"+
		"Hotel B;;\n")

	l, err := ledger.Load(p, nil)
	require.NoError(t, err)
	require.Equal(t, []domain.HotelKey{"Hotel A", "Hotel B"}, l.Hotels())

	v, ok, err := l.Cell(" Hotel A", d1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4.5, v)

	_, ok, err = l.Cell("Hotel B", d1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEnsureRowAndColumn_Idempotent(t *testing.T) {
	l := ledger.New("x.csv", nil)
	require.NoError(t, l.EnsureRow("Hotel A"))
	require.NoError(t, l.EnsureRow(" Hotel A"))
	require.NoError(t, l.EnsureColumn(d1))
	require.NoError(t, l.EnsureColumn(d1))

	require.Len(t, l.Hotels(), 1)
	require.True(t, l.HasRow("Hotel A "))
	require.False(t, l.HasRow("Hotel B"))
	require.Equal(t, []domain.DateColumn{d1}, l.Dates())

	require.Error(t, l.EnsureRow("   "))
	require.Error(t, l.EnsureColumn("Average Score"))
	require.Error(t, l.EnsureColumn("20-09-2025"))
}

func TestSetCell_RequiresEnsuredRowAndColumn(t *testing.T) {
	l := ledger.New("x.csv", []domain.HotelKey{"Hotel A"})

	err := l.SetCell("Hotel A", d1, 4.0)
	require.ErrorIs(t, err, domain.ErrNotFound)
	var nf *ledger.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.False(t, nf.Row)

	require.NoError(t, l.EnsureColumn(d1))
	err = l.SetCell("Hotel Z", d1, 4.0)
	require.ErrorAs(t, err, &nf)
	require.True(t, nf.Row)

	require.NoError(t, l.SetCell("Hotel A", d1, 4.0))
}

func TestRecomputeAverage_SkipsNullCells(t *testing.T) {
	l := ledger.New("x.csv", []domain.HotelKey{"Hotel A", "Hotel B"})
	for _, d := range []domain.DateColumn{d1, d2, d3} {
		require.NoError(t, l.EnsureColumn(d))
	}
	require.NoError(t, l.SetCell("Hotel A", d1, 4.5))
	require.NoError(t, l.SetCell("Hotel A", d3, 3.8))

	l.RecomputeAverage()
	require.Equal(t, 4.15, *l.Average("Hotel A"))
	require.Nil(t, l.Average("Hotel B"))

	// stable on repeat
	l.RecomputeAverage()
	l.RecomputeAverage()
	require.Equal(t, 4.15, *l.Average("Hotel A"))
}

func TestRecomputeAverage_IgnoresNonDateColumns(t *testing.T) {
	p := writeFile(t, "Hotel;Notes;2025-09-13;2025-09-20;Average Score\n"+
		"A;9;4;5;1\n")
	l, err := ledger.Load(p, nil)
	require.NoError(t, err)
	require.Equal(t, 1.0, *l.Average("A")) // as stored until recomputed

	l.RecomputeAverage()
	require.Equal(t, 4.5, *l.Average("A"))

	var buf bytes.Buffer
	require.NoError(t, ledger.Write(&buf, l))
	require.Equal(t, "Hotel;Notes;2025-09-13;2025-09-20;Average Score\nA;9;4;5;4.5\n", buf.String())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data", "booking_scores.csv")
	l := ledger.New(p, []domain.HotelKey{"Ananea Castelo Suites Hotel", "PortoBay Falésia", "NAU São Rafael Atlântico"})
	require.NoError(t, l.EnsureColumn(d1))
	require.NoError(t, l.EnsureColumn(d2))
	require.NoError(t, l.SetCell("Ananea Castelo Suites Hotel", d1, 9.1))
	require.NoError(t, l.SetCell("Ananea Castelo Suites Hotel", d2, 9.2))
	require.NoError(t, l.SetCell("PortoBay Falésia", d2, 8.65))
	l.RecomputeAverage()
	require.NoError(t, ledger.Save(l, p))

	back, err := ledger.Load(p, nil)
	require.NoError(t, err)
	if diff := cmp.Diff(l.View("booking"), back.View("booking")); diff != "" {
		t.Fatalf("round trip mismatch (-saved +loaded):\n%s", diff)
	}

	back.RecomputeAverage()
	if diff := cmp.Diff(l.View("booking"), back.View("booking")); diff != "" {
		t.Fatalf("average not stable after reload (-saved +recomputed):\n%s", diff)
	}
}

func TestSetCell_PureOverwrite(t *testing.T) {
	p := filepath.Join(t.TempDir(), "scores.csv")
	l := ledger.New(p, []domain.HotelKey{"Hotel A"})
	require.NoError(t, l.EnsureColumn(d1))
	require.NoError(t, l.SetCell("Hotel A", d1, 8.6))
	require.NoError(t, l.SetCell("Hotel A", d1, 9.0))
	l.RecomputeAverage()
	require.NoError(t, ledger.Save(l, p))

	v, _, err := l.Cell("Hotel A", d1)
	require.NoError(t, err)
	require.Equal(t, 9.0, v)

	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "Hotel;2025-09-13;Average Score\nHotel A;9;9\n", string(raw))
}
