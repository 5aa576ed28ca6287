package scoring

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"hotel_reputation/internal/domain"
)

var ErrNotFinite = errors.New("score is not finite")

// ParseScore applies the single decimal rule (comma is a period). Anything else that
// does not parse, including thousands separators, is rejected rather than guessed.
func ParseScore(raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	return v, nil
}

// Rank orders candidates by rank, then by value, both descending.
func Rank(cands []domain.Candidate) []domain.Candidate {
	out := slices.Clone(cands)
	slices.SortStableFunc(out, func(a, b domain.Candidate) int {
		if a.Rank != b.Rank {
			return b.Rank - a.Rank
		}
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		}
		return 0
	})
	return out
}

// Best returns the winning candidate. Among equal ranks the larger value wins.
func Best(cands []domain.Candidate) (domain.Candidate, bool) {
	if len(cands) == 0 {
		return domain.Candidate{}, false
	}
	return Rank(cands)[0], true
}

// Resolve returns the accepted score, or false when nothing was found.
func Resolve(cands []domain.Candidate) (float64, bool) {
	c, ok := Best(cands)
	return c.Value, ok
}
