package domain

import "strings"

// Source is one review provider's configuration record.
type Source struct {
	Name      string
	Ledger    string // ledger file path
	Scale     Range
	Selectors []string
	Request   RequestTemplate
	Targets   map[HotelKey]string // hotel -> url, id or query; "" means not listed
}

// RequestTemplate describes how to fetch one hotel's payload.
// "{target}" in URL and Body is replaced by the hotel's target; an empty URL means
// the target itself is the URL.
type RequestTemplate struct {
	Method  string
	URL     string
	Body    string
	Headers map[string]string

	// Retried in order when a page answers "not found".
	FallbackHosts []string
	DropParams    []string
}

// Catalog is the fixed hotel list plus every configured source.
type Catalog struct {
	Hotels  []HotelKey
	Sources []Source
}

func (c Catalog) Source(name string) (Source, bool) {
	for _, s := range c.Sources {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Source{}, false
}

func (c Catalog) HasHotel(k HotelKey) bool {
	for _, h := range c.Hotels {
		if h == k {
			return true
		}
	}
	return false
}
