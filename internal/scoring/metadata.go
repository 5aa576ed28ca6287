package scoring

import (
	"encoding/json"
	"regexp"
	"slices"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"hotel_reputation/internal/domain"
)

var (
	ratingFields = []string{"ratingValue", "rating", "reviewScore", "averageRating", "overallRating"}

	leadingNumberRe = regexp.MustCompile(number)
)

// MetadataStrategy reads canonical rating fields from JSON documents and ranks each
// hit from its enclosing object: scale hint, classification path, review context.
func MetadataStrategy() Strategy {
	return Strategy{Name: domain.StrategyMetadata, Find: findMetadata}
}

func findMetadata(p *Payload, scale domain.Range) []Hit {
	var hits []Hit
	for _, block := range p.Blocks() {
		v, ok := decodeLenient(block)
		if !ok {
			continue
		}
		walkJSON(v, "", func(path string, obj map[string]any) {
			hits = append(hits, objectHits(path, obj, scale)...)
		})
	}
	return hits
}

// decodeLenient decodes strictly first and falls back to a repaired document.
func decodeLenient(s string) (any, bool) {
	if v, err := decodeJSON(s); err == nil {
		return v, true
	}
	fixed, err := jsonrepair.JSONRepair(s)
	if err != nil {
		return nil, false
	}
	v, err := decodeJSON(fixed)
	return v, err == nil
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// walkJSON visits every object with its dotted key path, keys in sorted order.
func walkJSON(v any, path string, visit func(path string, obj map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		visit(path, t)
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			walkJSON(t[k], joinPath(path, k), visit)
		}
	case []any:
		for _, item := range t {
			walkJSON(item, path, visit)
		}
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func objectHits(path string, obj map[string]any, scale domain.Range) []Hit {
	var hits []Hit
	for _, f := range ratingFields {
		raw, ok := scalarNumber(obj[f])
		if !ok {
			continue
		}
		hits = append(hits, Hit{
			Raw:    raw,
			Rank:   rankMetadata + objectAdjust(path, obj, scale),
			Detail: joinPath(path, f),
		})
	}
	return hits
}

func objectAdjust(path string, obj map[string]any, scale domain.Range) int {
	adj := 0
	for _, f := range bestFields {
		if hint, ok := scalarNumber(obj[f]); ok {
			adj += scaleAdjust(hint, scale)
			break
		}
	}
	if containsAny(path, classificationWords) {
		adj += penaltyClassification
	}
	hasCount := false
	for _, f := range countFields {
		if _, ok := obj[f]; ok {
			hasCount = true
			break
		}
	}
	typ, _ := obj["@type"].(string)
	var keys []string
	if path != "" {
		keys = strings.Split(path, ".")
	}
	return adj + reviewAdjust(keys, typ, hasCount)
}
