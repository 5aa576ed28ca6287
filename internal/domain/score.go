package domain

import (
	"fmt"
	"math"
)

// Range is the inclusive validity domain of a source's scores (0–5, 0–6, 0–10, ...).
type Range struct {
	Min float64
	Max float64
}

func (r Range) Contains(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string { return fmt.Sprintf("[%g,%g]", r.Min, r.Max) }

// Strategy names the extraction strategy that produced a candidate.
type Strategy string

const (
	StrategyMetadata Strategy = "metadata"
	StrategyMarkup   Strategy = "markup"
	StrategyText     Strategy = "text"
	StrategyScript   Strategy = "script"
)

// Candidate is a provisional score found in a payload.
type Candidate struct {
	Value    float64
	Rank     int
	Strategy Strategy
	Detail   string // matched field, selector or pattern
}
