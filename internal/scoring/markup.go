package scoring

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hotel_reputation/internal/domain"
)

// DefaultSelectors cover review-score widgets found on the supported page sources.
var DefaultSelectors = []string{
	"[data-testid='review-score-component']",
	"div.uitk-text.uitk-type-900.uitk-text-default-theme",
	"[aria-label*='score']",
}

// MarkupStrategy reads the first number inside each element matching a selector.
func MarkupStrategy(selectors []string) Strategy {
	if len(selectors) == 0 {
		selectors = DefaultSelectors
	}
	return Strategy{
		Name: domain.StrategyMarkup,
		Find: func(p *Payload, _ domain.Range) []Hit {
			doc := p.Doc()
			if doc == nil {
				return nil
			}
			var hits []Hit
			for _, sel := range selectors {
				doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
					text := strings.Join(strings.Fields(s.Text()), " ")
					if text == "" {
						text = s.AttrOr("aria-label", "")
					}
					if m := leadingNumberRe.FindString(text); m != "" {
						hits = append(hits, Hit{Raw: m, Rank: rankMarkup, Detail: sel})
					}
				})
			}
			return hits
		},
	}
}
