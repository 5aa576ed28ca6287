package scoring

import (
	"regexp"
	"strings"

	"hotel_reputation/internal/domain"
)

const scriptWindow = 160

var (
	unescaper = strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\/`, `/`)

	scriptRatingRe = regexp.MustCompile(`"(ratingValue|reviewScore(?:WithDescription)?|averageRating|guestRating|overallRating|rating)"\s*:\s*"?` + number)
)

// ScriptStrategy scans inline scripts for rating keys, including JSON that was
// embedded as an escaped string. Each hit is ranked from the text around it.
func ScriptStrategy() Strategy {
	return Strategy{Name: domain.StrategyScript, Find: findScript}
}

func findScript(p *Payload, scale domain.Range) []Hit {
	var hits []Hit
	for _, src := range p.Scripts() {
		s := unescaper.Replace(src)
		for _, loc := range scriptRatingRe.FindAllStringSubmatchIndex(s, -1) {
			before := s[max(0, loc[0]-scriptWindow):loc[0]]
			after := s[loc[1]:min(len(s), loc[1]+scriptWindow)]
			hits = append(hits, Hit{
				Raw:    s[loc[4]:loc[5]],
				Rank:   rankScript + windowAdjust(before, after, scale),
				Detail: s[loc[2]:loc[3]],
			})
		}
	}
	return hits
}
