package webscraper

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
)

// DiscoverSeeds reads <base>/robots.txt and returns the values of its
// Sitemap, Allow and Disallow directives resolved against baseURL. When
// robots.txt is missing, unreachable or has no such values the base URL
// is the only seed and fromRobots is false.
func DiscoverSeeds(ctx context.Context, f *fetcher, baseURL string) (seeds []string, fromRobots bool) {
	fallback := []string{baseURL}

	base, err := url.Parse(baseURL)
	if err != nil {
		return fallback, false
	}
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})

	resp, err := f.Get(ctx, robotsURL.String(), true)
	if err != nil || resp.Status != http.StatusOK {
		return fallback, false
	}

	for _, value := range ParseRobotsSeeds(resp.Body) {
		ref, err := url.Parse(value)
		if err != nil {
			continue
		}
		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""
		resolved.RawFragment = ""
		seeds = append(seeds, resolved.String())
	}
	if len(seeds) == 0 {
		return fallback, false
	}
	return seeds, true
}

// ParseRobotsSeeds returns the raw values of Sitemap, Allow and Disallow
// lines, sitemaps first, then allows, then disallows. Directive names
// are case-insensitive; comments and empty values are ignored.
func ParseRobotsSeeds(payload []byte) []string {
	var sitemaps, allows, disallows []string

	scanner := bufio.NewScanner(bytes.NewReader(payload))
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields := strings.Fields(value)
		if len(fields) == 0 {
			continue
		}
		value = fields[0]

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "sitemap":
			sitemaps = append(sitemaps, value)
		case "allow":
			allows = append(allows, value)
		case "disallow":
			disallows = append(disallows, value)
		}
	}

	out := make([]string, 0, len(sitemaps)+len(allows)+len(disallows))
	out = append(out, sitemaps...)
	out = append(out, allows...)
	return append(out, disallows...)
}
