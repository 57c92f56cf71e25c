package shop

import (
	"net/url"
	"strings"
)

const (
	searchBase    = "https://www.amazon.com/s"
	fallbackTreat = "pet treats"
)

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Linker struct {
	Tag string
}

func NewLinker(tag string) *Linker { return &Linker{Tag: strings.TrimSpace(tag)} }

// Search builds a marketplace search URL carrying the affiliate tag.
func (l *Linker) Search(query string) string {
	q := url.Values{}
	q.Set("k", query)
	if l.Tag != "" {
		q.Set("tag", l.Tag)
	}
	return searchBase + "?" + q.Encode()
}

// CTALinks returns one link per toy idea followed by a treat link.
func (l *Linker) CTALinks(toys []string, treat string) []Link {
	out := make([]Link, 0, len(toys)+1)
	for _, t := range toys {
		out = append(out, Link{Label: t, URL: l.Search(t)})
	}
	treat = strings.TrimSpace(treat)
	if treat == "" {
		treat = fallbackTreat
	}
	out = append(out, Link{Label: "Buy " + treat, URL: l.Search(treat)})
	return out
}
