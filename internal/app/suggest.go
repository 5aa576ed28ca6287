package app

import (
	"strings"

	"github.com/antzucaro/matchr"

	"hotel_reputation/internal/domain"
)

const suggestThreshold = 0.8

// SuggestHotel returns the known hotel whose name is closest to name by
// Jaro-Winkler similarity, if any is close enough.
func SuggestHotel(name string, known []domain.HotelKey) (domain.HotelKey, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return "", false
	}
	var (
		best  domain.HotelKey
		score float64
	)
	for _, k := range known {
		s := matchr.JaroWinkler(q, strings.ToLower(string(k)), false)
		if s > score {
			best, score = k, s
		}
	}
	if score < suggestThreshold {
		return "", false
	}
	return best, true
}
