package webscraper

import (
	"bytes"
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Anchor is one <a href> found on a page.
type Anchor struct {
	Href string // attribute value as written, trimmed
	URL  string // resolved against the page, fragment removed
	Text string
}

// Anchors parses body and yields every anchor with an href, resolved
// against base. Each range re-parses body; malformed markup is
// tolerated and hrefs that are not valid URL references are dropped.
func Anchors(body []byte, base string) iter.Seq[Anchor] {
	return func(yield func(Anchor) bool) {
		baseURL, err := url.Parse(base)
		if err != nil {
			return
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return
		}
		doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			href = strings.TrimSpace(href)
			ref, err := url.Parse(href)
			if err != nil {
				return true
			}
			resolved := baseURL.ResolveReference(ref)
			resolved.Fragment = ""
			resolved.RawFragment = ""
			return yield(Anchor{
				Href: href,
				URL:  resolved.String(),
				Text: anchorText(s),
			})
		})
	}
}

// ExtractLinks yields (absolute URL, anchor text) pairs for body.
func ExtractLinks(body []byte, base string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for a := range Anchors(body, base) {
			if !yield(a.URL, a.Text) {
				return
			}
		}
	}
}

func anchorText(s *goquery.Selection) string {
	text := strings.Join(strings.Fields(s.Text()), " ")
	if text == "" {
		return NoAnchorText
	}
	return text
}
