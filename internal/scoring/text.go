package scoring

import (
	"regexp"
	"strconv"
	"sync"

	"hotel_reputation/internal/domain"
)

// TextStrategy matches rating phrases in the visible text, most specific first.
// Only the first match of each pattern is taken. Patterns are compiled once per scale.
func TextStrategy() Strategy {
	var (
		mu       sync.Mutex
		compiled = map[float64][]*regexp.Regexp{}
	)
	patterns := func(scale domain.Range) []*regexp.Regexp {
		mu.Lock()
		defer mu.Unlock()
		res, ok := compiled[scale.Max]
		if !ok {
			res = textPatterns(scale)
			compiled[scale.Max] = res
		}
		return res
	}

	return Strategy{
		Name: domain.StrategyText,
		Find: func(p *Payload, scale domain.Range) []Hit {
			text := p.Text()
			if text == "" {
				return nil
			}
			var hits []Hit
			for _, re := range patterns(scale) {
				if m := re.FindStringSubmatch(text); m != nil {
					hits = append(hits, Hit{Raw: m[1], Rank: rankText, Detail: re.String()})
				}
			}
			return hits
		},
	}
}

func textPatterns(scale domain.Range) []*regexp.Regexp {
	top := regexp.QuoteMeta(strconv.FormatFloat(scale.Max, 'f', -1, 64))
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + number + `\s*out of\s*` + top + `\b`),
		regexp.MustCompile(number + `\s*/\s*` + top + `\b`),
		regexp.MustCompile(`(?i)guest rating\D{0,20}?` + number),
		regexp.MustCompile(`(?i)(?:score|rating)\D{0,10}?` + number),
	}
}
