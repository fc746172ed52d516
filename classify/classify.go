package classify

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/vyomadl/vyoma-dl/pkg/enums/linktype"
)

// Links holds resource URLs per type in page order. Every type is present,
// possibly empty.
type Links map[linktype.LinkType][]string

func (l Links) Get(t linktype.LinkType) []string { return l[t] }

func (l Links) Count(t linktype.LinkType) int { return len(l[t]) }

func (l Links) Total() int {
	n := 0
	for _, urls := range l {
		n += len(urls)
	}
	return n
}

// All returns every url in document, audio, video order.
func (l Links) All() []string {
	out := make([]string, 0, l.Total())
	for _, t := range linktype.Values() {
		out = append(out, l[t]...)
	}
	return out
}

// Classify collects anchors carrying a link type class. An anchor with
// several such classes is listed under each. Relative hrefs resolve
// against base; absolute ones are kept verbatim.
func Classify(page io.Reader, base *url.URL) (Links, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	links := make(Links, len(linktype.Values()))
	for _, t := range linktype.Values() {
		links[t] = []string{}
	}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		for _, t := range linktype.Values() {
			if s.HasClass(string(t)) {
				links[t] = append(links[t], resolve(base, href))
			}
		}
	})
	return links, nil
}

// ClassifyHTML is Classify over an in-memory page.
func ClassifyHTML(page []byte, base *url.URL) (Links, error) {
	return Classify(bytes.NewReader(page), base)
}

func resolve(base *url.URL, href string) string {
	u, err := url.Parse(href)
	if err != nil || u.IsAbs() || base == nil {
		return href
	}
	return base.ResolveReference(u).String()
}
