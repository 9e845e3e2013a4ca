package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yingtu35/broken-link-finder/internal/webscraper"
)

func TestConsoleBrokenLine(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, true)

	c.Broken(webscraper.BrokenLink{URL: "https://ex.com/dead", Status: 404, Source: "https://ex.com/", Text: "broken"})

	assert.Equal(t,
		"[BROKEN] https://ex.com/dead (Status: 404)\n\t Found on: https://ex.com/\n\t Link text: broken\n",
		buf.String())
}

func TestConsoleProgressHiddenWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)
	c.Progress(1)
	c.Progress(2)
	assert.Empty(t, buf.String())
}

func TestConsoleProgressRewritesLine(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, true)
	c.live = true

	c.Progress(1)
	c.Progress(2)
	c.Broken(webscraper.BrokenLink{URL: "u", Status: 500, Source: "s", Text: "t"})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\rLinks checked: 1\rLinks checked: 2\n[BROKEN] u (Status: 500)"), out)
}

func TestConsoleProgressNeverGoesBackwards(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, true)
	c.live = true

	c.Progress(5)
	c.Progress(3)
	c.Progress(5)
	c.Progress(6)

	assert.Equal(t, "\rLinks checked: 5\rLinks checked: 6", buf.String())
}

func TestConsoleSeverityColors(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, false)
	c.setProfile(termenv.ANSI)

	c.Broken(webscraper.BrokenLink{URL: "a", Status: 404, Source: "s", Text: "t"})
	notFound := buf.String()
	buf.Reset()
	c.Broken(webscraper.BrokenLink{URL: "a", Status: 500, Source: "s", Text: "t"})
	other := buf.String()

	assert.Contains(t, notFound, "\x1b[")
	assert.Contains(t, other, "\x1b[")
	assert.NotEqual(t, notFound, other, "404 and other statuses use different colors")
}

func TestConsoleSeeds(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, true)

	c.Seeds([]string{"https://ex.com/a", "https://ex.com/b"}, true)
	c.Seeds([]string{"https://ex.com/"}, false)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Found URLs in robots.txt: https://ex.com/a, https://ex.com/b", lines[0])
	assert.Equal(t, "No relevant URLs found in robots.txt for https://ex.com/. Starting crawl from the base URL.", lines[1])
}

func TestConsoleMonitoredNotice(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, true)
	c.MonitoredSkipped("https://m.facebook.com/share", 400)
	assert.Equal(t,
		"Facebook link https://m.facebook.com/share returned 400 error. Stopping checks for Facebook links.\n",
		buf.String())
}

func TestConsoleSummary(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, true)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c.Summary(&webscraper.Report{
		LinksChecked: 12,
		Broken: []webscraper.BrokenLink{
			{URL: "https://ex.com/dead", Status: 404, Source: "https://ex.com/", Text: "broken"},
			{URL: "https://other.org/x", Status: 500, Source: "https://ex.com/a", Text: "[No text]"},
		},
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
	})

	out := buf.String()
	assert.Contains(t, out, "Crawl Completed.\n")
	assert.Contains(t, out, "Total links checked: 12\n")
	assert.Contains(t, out, "Total broken links found: 2\n")
	assert.Contains(t, out, "Elapsed: 1.5s\n")
	assert.Contains(t, out, "Broken links summary:\n")
	assert.NotContains(t, out, "interrupted")

	var rows []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "https://ex.com/dead") || strings.Contains(line, "https://other.org/x") {
			rows = append(rows, strings.Join(strings.Fields(line), " "))
		}
	}
	assert.Equal(t, []string{
		"https://ex.com/dead 404 https://ex.com/ broken",
		"https://other.org/x 500 https://ex.com/a [No text]",
	}, rows)
}

func TestConsoleSummaryInterruptedWithoutBroken(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, true)
	c.Summary(&webscraper.Report{LinksChecked: 3, Interrupted: true, MonitoredSkipped: true})

	out := buf.String()
	assert.Contains(t, out, "Crawl Completed.")
	assert.Contains(t, out, "interrupted")
	assert.Contains(t, out, "Total broken links found: 0")
	assert.Contains(t, out, "monitored domain were skipped")
	assert.NotContains(t, out, "Broken links summary")
}

func TestConsoleConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, true)
	c.live = true

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Progress(int64(i))
			c.Broken(webscraper.BrokenLink{URL: "u", Status: 404, Source: "s", Text: "t"})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, strings.Count(buf.String(), "[BROKEN] u (Status: 404)\n"))
}

func TestHostLabel(t *testing.T) {
	assert.Equal(t, "Facebook", hostLabel("https://www.facebook.com/x"))
	assert.Equal(t, "Linkedin", hostLabel("https://linkedin.com"))
	assert.Equal(t, "Monitored", hostLabel("not a url"))
}
