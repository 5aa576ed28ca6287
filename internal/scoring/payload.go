package scoring

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Payload is one fetched document, parsed at most once and shared by all strategies.
type Payload struct {
	raw    string
	isJSON bool

	parsed  bool
	doc     *goquery.Document
	text    string
	scripts []string // inline JavaScript
	blocks  []string // embedded JSON documents
}

func NewPayload(raw string) *Payload {
	t := strings.TrimSpace(raw)
	return &Payload{raw: raw, isJSON: strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[")}
}

// Doc is nil for JSON payloads.
func (p *Payload) Doc() *goquery.Document {
	p.parse()
	return p.doc
}

// Text is the visible text with scripts and styles removed and whitespace collapsed.
func (p *Payload) Text() string {
	p.parse()
	return p.text
}

func (p *Payload) Scripts() []string {
	p.parse()
	return p.scripts
}

// Blocks returns the structured-data documents: the whole payload when it is JSON,
// otherwise every script typed as JSON (ld+json, application/json).
func (p *Payload) Blocks() []string {
	p.parse()
	if p.isJSON {
		return []string{p.raw}
	}
	return p.blocks
}

func (p *Payload) parse() {
	if p.parsed {
		return
	}
	p.parsed = true
	if p.isJSON || strings.TrimSpace(p.raw) == "" {
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.raw))
	if err != nil {
		return
	}
	p.doc = doc

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		typ := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "")))
		body := s.Text()
		switch {
		case strings.Contains(typ, "json"):
			p.blocks = append(p.blocks, body)
		case typ == "" || strings.Contains(typ, "javascript") || typ == "module":
			p.scripts = append(p.scripts, body)
		}
	})

	var b strings.Builder
	for _, n := range doc.Nodes {
		visibleText(n, &b)
	}
	p.text = strings.Join(strings.Fields(b.String()), " ")
}

func visibleText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visibleText(c, b)
	}
}
