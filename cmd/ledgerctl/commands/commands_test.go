package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hotel_reputation/internal/app"
)

const catalogYAML = `
hotels:
  - PortoBay Falésia
  - Regency Salgados Hotel & Spa
sources:
  - name: booking
    min: 0
    max: 10
  - name: holidaycheck
    min: 0
    max: 6
`

func setup(t *testing.T, ledgers map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sources.yaml"), []byte(catalogYAML), 0o644))
	for name, body := range ledgers {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	t.Setenv("SOURCES_FILE", filepath.Join(dir, "sources.yaml"))
	t.Setenv("DATA_DIR", dir)
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := execute(context.Background(), strings.NewReader(stdin), &out, &errOut, args)
	return out.String(), err
}

func TestSources(t *testing.T) {
	setup(t, nil)
	out, err := runCLI(t, "", "sources")
	require.NoError(t, err)
	require.Contains(t, out, "booking")
	require.Contains(t, out, "[0,6]")
}

func TestShow(t *testing.T) {
	setup(t, map[string]string{
		"booking_scores.csv": "Hotel;2025-09-13;Average Score\nPortoBay Falésia;8.5;8.5\nRegency Salgados Hotel & Spa;;\n",
	})
	out, err := runCLI(t, "", "show", "booking")
	require.NoError(t, err)
	require.Contains(t, out, "2025-09-13")
	require.Contains(t, out, "8.5")
	require.Contains(t, out, "Regency Salgados Hotel & Spa")
}

func TestEdit_PromptsWhenValueOmitted(t *testing.T) {
	dir := setup(t, nil)

	out, err := runCLI(t, "7.9\n", "edit", "booking", "PortoBay Falésia", "2025-09-13")
	require.NoError(t, err)
	require.Contains(t, out, "missing")
	require.Contains(t, out, "saved 7.9 (average 7.9)")

	b, err := os.ReadFile(filepath.Join(dir, "booking_scores.csv"))
	require.NoError(t, err)
	require.Contains(t, string(b), "PortoBay Falésia;7.9;7.9")

	out, err = runCLI(t, "", "edit", "booking", "PortoBay Falésia", "2025-09-13", "8,1")
	require.NoError(t, err)
	require.Contains(t, out, "current 7.9")
	require.Contains(t, out, "saved 8.1")
}

func TestEdit_EmptyInputLeavesCellUnchanged(t *testing.T) {
	dir := setup(t, nil)
	out, err := runCLI(t, "\n", "edit", "booking", "PortoBay Falésia", "2025-09-13")
	require.NoError(t, err)
	require.Contains(t, out, "unchanged")
	_, err = os.Stat(filepath.Join(dir, "booking_scores.csv"))
	require.True(t, os.IsNotExist(err))
}

func TestEdit_RejectsOutOfRange(t *testing.T) {
	setup(t, nil)
	_, err := runCLI(t, "", "edit", "holidaycheck", "PortoBay Falésia", "2025-09-13", "7")
	var re *app.RangeError
	require.ErrorAs(t, err, &re)
}

func TestEdit_SuggestsKnownHotel(t *testing.T) {
	setup(t, nil)
	_, err := runCLI(t, "", "edit", "booking", "Portobay Falesia", "2025-09-13", "8")
	var ue *app.UnknownHotelError
	require.ErrorAs(t, err, &ue)
	require.EqualValues(t, "PortoBay Falésia", ue.Suggestion)
}

func TestValidate(t *testing.T) {
	setup(t, map[string]string{
		"booking_scores.csv":      "Hotel;2025-09-13;Average Score\nPortoBay Falésia;8.5;8.5\n",
		"holidaycheck_scores.csv": "Hotel;2025-09-13;Average Score\nPortoBay Falésia;;\n",
	})

	out, err := runCLI(t, "", "validate", "--date", "2025-09-13")
	require.NoError(t, err)
	require.Contains(t, out, "ok")
	require.Contains(t, out, "warning")

	_, err = runCLI(t, "", "validate", "--date", "2025-09-20", "booking")
	require.True(t, errors.Is(err, errRunsFailed))
}
