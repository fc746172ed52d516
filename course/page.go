package course

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type pageInfo struct {
	description string
	hasHeader   bool
	headerHref  string
	title       string
	teacher     string

	// form holds every named input of the subscription form, nil when the
	// page has none.
	form url.Values
}

func parsePage(page []byte) (*pageInfo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse course page: %w", err)
	}
	info := &pageInfo{}

	if desc := doc.Find("div.course-description").First(); desc.Length() > 0 {
		info.description, err = goquery.OuterHtml(desc)
		if err != nil {
			return nil, fmt.Errorf("render course description: %w", err)
		}
	}

	if header := doc.Find("header.course-header").First(); header.Length() > 0 {
		info.hasHeader = true
		info.headerHref, _ = header.Find("a").First().Attr("href")
		info.title = strings.TrimSpace(header.Find("h5 b").First().Text())
		info.teacher = strings.TrimSpace(header.Find("a.author").First().Text())
	}

	form := doc.Find(`input[name="course_id"]`).First().Closest("form")
	if form.Length() > 0 {
		info.form = url.Values{}
		form.Find("input").Each(func(_ int, s *goquery.Selection) {
			name, ok := s.Attr("name")
			if !ok || name == "" {
				return
			}
			info.form.Set(name, s.AttrOr("value", ""))
		})
	}
	return info, nil
}
