// Package ui renders crawl progress and the final broken-link report on
// the console.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rodaine/table"
	"github.com/yingtu35/broken-link-finder/internal/webscraper"
	"github.com/yingtu35/broken-link-finder/pkg/domain"
)

// Console writes crawl events to an output stream. It implements
// webscraper.Notifier and is safe for concurrent use by crawl workers.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	live     bool // out is a terminal: progress is rewritten in place
	renderer *lipgloss.Renderer
	st       styles

	progressOpen bool
	lastProgress int64
}

var _ webscraper.Notifier = (*Console)(nil)

// New returns a Console writing to out. Colors are used only when out is
// a terminal and noColor is false.
func New(out io.Writer, noColor bool) *Console {
	live := isTerminal(out)
	r := newRenderer(out, live && !noColor)
	return &Console{
		out:      out,
		live:     live,
		renderer: r,
		st:       newStyles(r),
	}
}

func (c *Console) setProfile(p termenv.Profile) {
	c.renderer.SetColorProfile(p)
	c.st = newStyles(c.renderer)
}

// Seeds announces where the crawl starts.
func (c *Console) Seeds(seeds []string, fromRobots bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fromRobots {
		c.println(fmt.Sprintf("Found URLs in robots.txt: %s", strings.Join(seeds, ", ")))
		return
	}
	base := ""
	if len(seeds) > 0 {
		base = seeds[0]
	}
	c.println(fmt.Sprintf("No relevant URLs found in robots.txt for %s. Starting crawl from the base URL.", base))
}

// Progress shows the running page counter. It is only drawn on a
// terminal so redirected output stays line oriented. Workers report out
// of order, so a value below the one on screen is dropped.
func (c *Console) Progress(checked int64) {
	if !c.live {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if checked <= c.lastProgress {
		return
	}
	c.lastProgress = checked
	fmt.Fprintf(c.out, "\rLinks checked: %d", checked)
	c.progressOpen = true
}

func (c *Console) Broken(link webscraper.BrokenLink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	style := c.st.severity(link.Status)
	c.println(style.Render(fmt.Sprintf("[BROKEN] %s (Status: %d)", link.URL, link.Status)))
	c.println(style.Render("\t Found on: " + link.Source))
	c.println(style.Render("\t Link text: " + link.Text))
}

func (c *Console) MonitoredSkipped(url string, status int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	host := hostLabel(url)
	c.println(c.st.notice.Render(fmt.Sprintf("%s link %s returned %d error. Stopping checks for %s links.", host, url, status, host)))
}

// Summary prints the closing block of a run.
func (c *Console) Summary(r *webscraper.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.println("")
	c.println(c.st.title.Render("Crawl Completed."))
	if r.Interrupted {
		c.println(c.st.muted.Render("The crawl was interrupted; results are partial."))
	}
	c.println(fmt.Sprintf("Total links checked: %d", r.LinksChecked))
	c.println(fmt.Sprintf("Total broken links found: %d", len(r.Broken)))
	if r.MonitoredSkipped {
		c.println(c.st.notice.Render("Links to the monitored domain were skipped after it answered 400."))
	}
	c.println(c.st.muted.Render(fmt.Sprintf("Elapsed: %s", r.Duration().Round(time.Millisecond))))

	if len(r.Broken) == 0 {
		return
	}
	c.println("")
	c.println("Broken links summary:")

	tbl := table.New("URL", "Status", "Found on", "Link text").
		WithWriter(c.out).
		WithWidthFunc(lipgloss.Width).
		WithHeaderFormatter(func(format string, vals ...interface{}) string {
			for i, v := range vals {
				vals[i] = c.st.title.Render(fmt.Sprint(v))
			}
			return fmt.Sprintf(format, vals...)
		})
	for _, link := range r.Broken {
		style := c.st.severity(link.Status)
		tbl.AddRow(style.Render(link.URL), style.Render(fmt.Sprint(link.Status)), link.Source, link.Text)
	}
	tbl.Print()
}

// println ends an open progress line first so event output never lands
// on top of the counter. Callers hold c.mu.
func (c *Console) println(s string) {
	if c.progressOpen {
		fmt.Fprintln(c.out)
		c.progressOpen = false
	}
	fmt.Fprintln(c.out, s)
}

// hostLabel turns https://m.facebook.com/x into "Facebook".
func hostLabel(raw string) string {
	name, _, _ := strings.Cut(domain.RegistrableDomain(raw), ".")
	if name == "" {
		return "Monitored"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
