// Package scoring turns a fetched page or API document into ranked score candidates
// and resolves them into a single value.
package scoring

import (
	"hotel_reputation/internal/domain"
)

// Static confidence ranks. Metadata and script hits are adjusted by context.
const (
	rankMetadata = 4
	rankMarkup   = 5
	rankText     = 3
	rankScript   = 2

	bonusScale            = 6
	penaltyScale          = -6
	penaltyClassification = -4
	bonusReviews          = 2
	penaltySingleReview   = -4
)

// Hit is a raw value found by a strategy, before normalization and range filtering.
type Hit struct {
	Raw    string
	Rank   int
	Detail string
}

// Strategy scans a whole payload independently of the others.
type Strategy struct {
	Name domain.Strategy
	Find func(p *Payload, scale domain.Range) []Hit
}

type Extractor struct {
	strategies []Strategy
}

// New builds the default pipeline: metadata, markup (with the source's selectors),
// free text, embedded script.
func New(selectors []string) *Extractor {
	return NewWith(
		MetadataStrategy(),
		MarkupStrategy(selectors),
		TextStrategy(),
		ScriptStrategy(),
	)
}

func NewWith(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Extract runs every strategy and keeps the hits that parse and fall inside scale.
// The result is unordered; an empty result means nothing usable was found.
func (e *Extractor) Extract(payload string, scale domain.Range) []domain.Candidate {
	if payload == "" {
		return nil
	}
	p := NewPayload(payload)
	var out []domain.Candidate
	for _, s := range e.strategies {
		for _, h := range s.Find(p, scale) {
			v, err := ParseScore(h.Raw)
			if err != nil || !scale.Contains(v) {
				continue
			}
			out = append(out, domain.Candidate{Value: v, Rank: h.Rank, Strategy: s.Name, Detail: h.Detail})
		}
	}
	return out
}
