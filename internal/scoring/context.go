package scoring

import (
	"math"
	"regexp"
	"strings"

	"hotel_reputation/internal/domain"
)

// number matches digit groups joined by '.' or ','; more than one separator fails ParseScore.
const number = `(\d+(?:[.,]\d+)*)`

var (
	bestFields  = []string{"bestRating", "best", "outOf", "scale", "maxRating"}
	countFields = []string{"reviewCount", "ratingCount", "userRatingCount", "num_reviews", "review_count", "reviewsCount"}

	classificationWords = []string{"classification", "starrating", "star_rating", "hotelclass", "stars"}

	// keys whose objects hold one guest's verdict, not the property's aggregate
	singleReviewKeys = []string{"review", "reviews", "reviewrating"}

	bestHintRe    = regexp.MustCompile(`"(?:` + strings.Join(bestFields, "|") + `)"\s*:\s*"?` + number)
	countFieldRe  = regexp.MustCompile(`"(?:` + strings.Join(countFields, "|") + `)"\s*:`)
	objectKeyRe   = regexp.MustCompile(`"([^"\\]+)"\s*:\s*\[?\s*\{`)
	typeReviewRe  = regexp.MustCompile(`"@type"\s*:\s*"Review"`)
	typeAggregate = "AggregateRating"
)

func containsAny(s string, words []string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// scaleAdjust compares a best-possible-value hint with the source scale.
func scaleAdjust(hint string, scale domain.Range) int {
	v, err := ParseScore(hint)
	if err != nil {
		return 0
	}
	if math.Abs(v-scale.Max) < 1e-9 {
		return bonusScale
	}
	return penaltyScale
}

// windowAdjust scores a script hit from the text around it. Each side is cut at the
// nearest object boundary so sibling objects do not leak their keywords.
func windowAdjust(before, after string, scale domain.Range) int {
	if i := strings.LastIndexByte(before, '}'); i >= 0 {
		before = before[i+1:]
	}
	if i := strings.IndexByte(after, '}'); i >= 0 {
		after = after[:i]
	}

	adj := 0
	if m := bestHintRe.FindStringSubmatch(after); m != nil {
		adj += scaleAdjust(m[1], scale)
	} else if ms := bestHintRe.FindAllStringSubmatch(before, -1); len(ms) > 0 {
		adj += scaleAdjust(ms[len(ms)-1][1], scale)
	}
	if containsAny(before, classificationWords) {
		adj += penaltyClassification
	}

	var keys []string
	if ms := objectKeyRe.FindAllStringSubmatch(before, -1); len(ms) > 0 {
		keys = []string{ms[len(ms)-1][1]}
	}
	typ := ""
	switch {
	case strings.Contains(before, `"`+typeAggregate+`"`):
		typ = typeAggregate
	case typeReviewRe.MatchString(before):
		typ = "Review"
	}
	hasCount := countFieldRe.MatchString(before) || countFieldRe.MatchString(after)
	return adj + reviewAdjust(keys, typ, hasCount)
}

// reviewAdjust ranks what kind of rating object a hit sits in, given its key path,
// its @type and whether a count field is present. Aggregate context earns a bonus;
// a single guest review is penalized so it never outranks the property score.
func reviewAdjust(keys []string, typ string, hasCount bool) int {
	last := ""
	if len(keys) > 0 {
		last = keys[len(keys)-1]
	}
	if hasCount || strings.EqualFold(last, "aggregateRating") || strings.EqualFold(typ, typeAggregate) {
		return bonusReviews
	}
	if strings.EqualFold(typ, "Review") {
		return penaltySingleReview
	}
	for _, k := range keys {
		for _, w := range singleReviewKeys {
			if strings.EqualFold(k, w) {
				return penaltySingleReview
			}
		}
	}
	return 0
}
