package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// HotelKey is a hotel's display name as stored in the ledger's Hotel column.
// Two keys are the same hotel when they are equal after trimming whitespace.
type HotelKey string

func NormalizeHotelKey(s string) HotelKey { return HotelKey(strings.TrimSpace(s)) }

func (k HotelKey) String() string { return string(k) }

// DateColumn is a run date in YYYY-MM-DD form.
type DateColumn string

var dateColumnRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsDateColumn reports whether a header has the shape of a score column.
func IsDateColumn(header string) bool { return dateColumnRe.MatchString(header) }

// ParseDateColumn validates user input; shape and calendar date must both hold.
func ParseDateColumn(s string) (DateColumn, error) {
	s = strings.TrimSpace(s)
	if !IsDateColumn(s) {
		return "", fmt.Errorf("date must be YYYY-MM-DD, got %q", s)
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateColumn(s), nil
}

func DateColumnOf(t time.Time) DateColumn { return DateColumn(t.Format(time.DateOnly)) }

func (d DateColumn) String() string { return string(d) }
