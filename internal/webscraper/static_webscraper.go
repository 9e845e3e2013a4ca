package webscraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yingtu35/broken-link-finder/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// StaticHunter crawls plain HTML pages without rendering JavaScript.
type StaticHunter struct {
	opts       Options
	fetch      *fetcher
	classifier *Classifier
	validator  *Validator
	notify     Notifier
	record     Recorder
	log        *slog.Logger
}

var _ WebScraper = (*StaticHunter)(nil)

func NewStaticHunter(opts Options) *StaticHunter {
	opts = opts.withDefaults()
	f := newFetcher(opts)
	c := NewClassifier(opts.ExcludedExtensions, opts.MonitoredDomain)
	return &StaticHunter{
		opts:       opts,
		fetch:      f,
		classifier: c,
		validator:  newValidator(f, c, opts),
		notify:     opts.Notifier,
		record:     opts.Recorder,
		log:        opts.Logger,
	}
}

// ValidateBaseURL checks that raw is an absolute http(s) URL with a host
// and returns it trimmed.
func ValidateBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	protocol, err := domain.GetProtocol(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if !strings.HasPrefix(strings.ToLower(raw), protocol+"://") || (protocol != "http" && protocol != "https") {
		return "", fmt.Errorf("%w: URL must start with http:// or https://, got %q", ErrMalformedInput, raw)
	}
	if !domain.IsHTTPURL(raw) {
		return "", fmt.Errorf("%w: URL %q has no host", ErrMalformedInput, raw)
	}
	return raw, nil
}

func (h *StaticHunter) Hunt(ctx context.Context, baseURL string) (*Report, error) {
	base, err := ValidateBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	seeds, fromRobots := DiscoverSeeds(ctx, h.fetch, base)
	h.notify.Seeds(seeds, fromRobots)
	h.log.Debug("seeds discovered", "count", len(seeds), "robots", fromRobots)

	report, err := h.Crawl(ctx, seeds, domain.RegistrableDomain(base))
	if report != nil {
		report.BaseURL = base
		report.SeedsFromRobots = fromRobots
	}
	return report, err
}

// Crawl visits every page reachable from seeds within baseDomain and
// validates the links leading elsewhere. Each URL is fetched for
// recursion at most once. When ctx is cancelled no new page is started
// and the partial report is returned together with ctx.Err().
func (h *StaticHunter) Crawl(ctx context.Context, seeds []string, baseDomain string) (*Report, error) {
	state := NewCrawlState()
	report := &Report{
		RunID:      uuid.NewString(),
		BaseDomain: baseDomain,
		Seeds:      append([]string(nil), seeds...),
		StartedAt:  time.Now(),
	}

	work := newFrontier()
	roots := make([]job, 0, len(seeds))
	for _, seed := range seeds {
		roots = append(roots, job{url: seed})
	}
	h.enqueueAll(work, state, roots)

	stop := context.AfterFunc(ctx, work.close)
	defer stop()

	// A worker only fails with the crawl's own cancellation, so the first
	// error is ctx.Err() and the remaining workers drain a closed frontier.
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < h.opts.Workers; i++ {
		g.Go(func() error {
			for {
				j, ok := work.pop()
				if !ok {
					return ctx.Err()
				}
				h.visit(gctx, work, state, j, baseDomain)
				work.done()
			}
		})
	}
	err := g.Wait()

	report.FinishedAt = time.Now()
	report.LinksChecked = state.Checked()
	report.Broken = state.Broken()
	report.MonitoredSkipped = state.MonitoredLatched()
	report.Interrupted = err != nil
	return report, err
}

// enqueueAll marks jobs visited in document order and pushes the new ones
// in reverse so the stack pops them in that order. A link to a page that
// is already visited is still counted against it: if the page is dead the
// link is reported without another request.
func (h *StaticHunter) enqueueAll(work *frontier, state *CrawlState, jobs []job) {
	fresh := make([]job, 0, len(jobs))
	for _, j := range jobs {
		j.url = visitKey(j.url)
		if j.url == "" {
			continue
		}
		if state.MarkVisited(j.url) {
			fresh = append(fresh, j)
			continue
		}
		if j.source == "" {
			continue
		}
		if link, ok := state.Refer(j.url, j.source, j.text); ok {
			h.validator.Record(link, state)
		}
	}
	for i := len(fresh) - 1; i >= 0; i-- {
		work.push(fresh[i])
	}
}

func (h *StaticHunter) visit(ctx context.Context, work *frontier, state *CrawlState, j job, baseDomain string) {
	if work.isClosed() || ctx.Err() != nil {
		return
	}
	pageURL := j.url
	h.notify.Progress(state.IncChecked())

	resp, err := h.fetch.Get(ctx, pageURL, true)
	if err != nil {
		h.log.Debug("page unreachable", "url", pageURL, "error", err)
		h.record.PageFetched(false)
		state.SettlePage(pageURL, nil)
		return
	}
	if resp.Status != http.StatusOK {
		h.log.Debug("page not crawled", "url", pageURL, "status", resp.Status)
		h.record.PageFetched(false)
		var dead *deadPage
		if h.validator.Reportable(pageURL, resp.Status) {
			dead = &deadPage{status: resp.Status, finalURL: resp.FinalURL}
		}
		held := state.SettlePage(pageURL, dead)
		// The page is not reported; the links that led here are.
		if j.source != "" {
			h.validator.Judge(pageURL, resp, j.source, j.text, state)
		}
		for _, r := range held {
			h.validator.Judge(pageURL, resp, r.source, r.text, state)
		}
		return
	}
	h.record.PageFetched(true)
	state.SettlePage(pageURL, nil)

	var next []job
	for a := range Anchors(resp.Body, resp.FinalURL) {
		decision, reason := h.classifier.Classify(a, baseDomain, state.MonitoredLatched())
		switch decision {
		case Recurse:
			next = append(next, job{url: a.URL, source: pageURL, text: a.Text})
		case Validate:
			h.validator.Validate(ctx, a.URL, pageURL, a.Text, state)
		default:
			h.record.LinkSkipped(reason)
		}
	}
	h.enqueueAll(work, state, next)
}

// visitKey is the visited-set identity of a URL: absolute, without
// fragment, with "/" for an empty path. Unparsable input yields "".
func visitKey(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() {
		return ""
	}
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return u.String()
}
