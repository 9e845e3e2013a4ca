package webscraper

import (
	"net/url"
	"path"
	"strings"

	"github.com/yingtu35/broken-link-finder/pkg/domain"
)

// Decision tells the engine what to do with a discovered link.
type Decision int

const (
	Skip     Decision = iota // drop without any request
	Recurse                  // same registrable domain: crawl it
	Validate                 // other domain: check it once
)

func (d Decision) String() string {
	switch d {
	case Recurse:
		return "recurse"
	case Validate:
		return "validate"
	}
	return "skip"
}

// SkipReason explains a Skip decision.
type SkipReason string

const (
	SkipNone              SkipReason = ""
	SkipJavaScript        SkipReason = "javascript"
	SkipMailto            SkipReason = "mailto"
	SkipTel               SkipReason = "tel"
	SkipFragment          SkipReason = "fragment"
	SkipUnsupportedScheme SkipReason = "unsupported_scheme"
	SkipExtension         SkipReason = "excluded_extension"
	SkipMonitored         SkipReason = "monitored_domain"
)

var hrefSkipPrefixes = []struct {
	prefix string
	reason SkipReason
}{
	{"javascript:", SkipJavaScript},
	{"mailto:", SkipMailto},
	{"tel:", SkipTel},
	{"#", SkipFragment},
}

type Classifier struct {
	excluded  map[string]struct{}
	monitored string
}

// NewClassifier builds a classifier skipping the given path extensions
// (with or without leading dot) and treating monitoredDomain as the
// rate-limited third party. monitoredDomain may be any host of that
// domain; it is reduced to its registrable domain.
func NewClassifier(excludedExt []string, monitoredDomain string) *Classifier {
	excluded := make(map[string]struct{}, len(excludedExt))
	for _, ext := range excludedExt {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext != "" {
			excluded[ext] = struct{}{}
		}
	}
	return &Classifier{
		excluded:  excluded,
		monitored: domain.HostDomain(monitoredDomain),
	}
}

// Classify decides how a link found on a page of baseDomain is handled.
// latched reports whether the monitored domain is being skipped.
func (c *Classifier) Classify(a Anchor, baseDomain string, latched bool) (Decision, SkipReason) {
	lowerHref := strings.ToLower(a.Href)
	for _, p := range hrefSkipPrefixes {
		if strings.HasPrefix(lowerHref, p.prefix) {
			return Skip, p.reason
		}
	}

	u, err := url.Parse(a.URL)
	if err != nil {
		return Skip, SkipUnsupportedScheme
	}
	if scheme := strings.ToLower(u.Scheme); (scheme != "http" && scheme != "https") || u.Host == "" {
		return Skip, SkipUnsupportedScheme
	}
	if c.excludedPath(u.Path) {
		return Skip, SkipExtension
	}

	linkDomain := domain.RegistrableDomain(a.URL)
	if latched && c.monitored != "" && linkDomain == c.monitored {
		return Skip, SkipMonitored
	}
	if linkDomain != "" && linkDomain == baseDomain {
		return Recurse, SkipNone
	}
	return Validate, SkipNone
}

// IsMonitored reports whether rawURL belongs to the monitored domain.
func (c *Classifier) IsMonitored(rawURL string) bool {
	return domain.IsSameDomain(c.monitored, rawURL)
}

func (c *Classifier) excludedPath(p string) bool {
	if len(c.excluded) == 0 {
		return false
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
	if ext == "" {
		return false
	}
	_, ok := c.excluded[ext]
	return ok
}
