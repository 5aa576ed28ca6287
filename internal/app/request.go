package app

import (
	"encoding/json"
	"net/url"
	"slices"
	"strings"

	"hotel_reputation/internal/domain"
)

const targetToken = "{target}"

// BuildRequests expands a source's request template for one hotel target. The first
// request is the primary one; the rest are fallbacks tried on "not found".
func BuildRequests(tpl domain.RequestTemplate, target string) []domain.FetchRequest {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil
	}

	primary := target
	if tpl.URL != "" {
		primary = strings.ReplaceAll(tpl.URL, targetToken, url.PathEscape(target))
	}
	body := ""
	if tpl.Body != "" {
		body = strings.ReplaceAll(tpl.Body, targetToken, jsonEscape(target))
	}

	var urls []string
	add := func(u string) {
		if u != "" && !slices.Contains(urls, u) {
			urls = append(urls, u)
		}
	}
	add(primary)
	stripped := dropParams(primary, tpl.DropParams)
	add(stripped)
	for _, h := range tpl.FallbackHosts {
		add(withHost(primary, h))
		add(withHost(stripped, h))
	}

	out := make([]domain.FetchRequest, 0, len(urls))
	for _, u := range urls {
		out = append(out, domain.FetchRequest{Method: tpl.Method, URL: u, Body: body, Headers: tpl.Headers})
	}
	return out
}

func jsonEscape(s string) string {
	b, _ := json.Marshal(s)
	return string(b[1 : len(b)-1])
}

func dropParams(raw string, names []string) string {
	if len(names) == 0 {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for _, n := range names {
		if q.Has(n) {
			q.Del(n)
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func withHost(raw, host string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || host == "" {
		return ""
	}
	u.Host = host
	return u.String()
}
