// Package webscraper crawls every page of one registrable domain and
// validates each hyperlink it finds, collecting the broken ones.
package webscraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

var (
	// ErrMalformedInput is returned for a base URL that cannot start a crawl.
	ErrMalformedInput = errors.New("malformed input")
	// ErrTransientFetch wraps network errors, timeouts and redirect overflow.
	ErrTransientFetch = errors.New("transient fetch failure")
	// ErrRedirectCap is returned by the client when a response redirects
	// more often than allowed.
	ErrRedirectCap = errors.New("redirect cap exceeded")
)

type WebScraper interface {
	// Hunt discovers seeds for baseURL and crawls its registrable domain.
	Hunt(ctx context.Context, baseURL string) (*Report, error)
	// Crawl traverses from seeds, recursing only into baseDomain.
	Crawl(ctx context.Context, seeds []string, baseDomain string) (*Report, error)
}

// Options configures a hunter. Zero values select the defaults.
type Options struct {
	Workers           int
	Timeout           time.Duration
	MaxRedirects      int
	RequestsPerSecond float64 // 0 disables rate limiting
	UserAgent         string

	// ExcludedExtensions are path extensions (without dot) that are
	// skipped. nil selects DefaultExcludedExtensions, an empty non-nil
	// slice excludes nothing.
	ExcludedExtensions []string

	// MonitoredDomain is the rate-limiting third party whose links stop
	// being checked once it answers 400.
	MonitoredDomain string

	Client   *http.Client
	Notifier Notifier
	Recorder Recorder
	Logger   *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxRedirects <= 0 {
		o.MaxRedirects = DefaultMaxRedirects
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.ExcludedExtensions == nil {
		o.ExcludedExtensions = DefaultExcludedExtensions
	}
	if o.MonitoredDomain == "" {
		o.MonitoredDomain = DefaultMonitoredDomain
	}
	if o.Notifier == nil {
		o.Notifier = nopNotifier{}
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// BrokenLink is one link whose target answered with an error status.
type BrokenLink struct {
	URL    string `json:"url" csv:"URL"`
	Status int    `json:"status" csv:"Status"`
	Source string `json:"source" csv:"Found On"`
	Text   string `json:"text" csv:"Link Text"`
}

// Report is the outcome of one crawl run.
type Report struct {
	RunID            string
	BaseURL          string
	BaseDomain       string
	Seeds            []string
	SeedsFromRobots  bool
	LinksChecked     int64
	Broken           []BrokenLink
	MonitoredSkipped bool
	Interrupted      bool
	StartedAt        time.Time
	FinishedAt       time.Time
}

func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Notifier receives crawl events as they happen. Implementations must
// be safe for concurrent use.
type Notifier interface {
	Seeds(seeds []string, fromRobots bool)
	Progress(checked int64)
	Broken(link BrokenLink)
	MonitoredSkipped(url string, status int)
}

// Recorder receives counters for instrumentation.
type Recorder interface {
	PageFetched(ok bool)
	LinkValidated(outcome Outcome, status int)
	LinkSkipped(reason SkipReason)
}

type nopNotifier struct{}

func (nopNotifier) Seeds([]string, bool) {}
func (nopNotifier) Progress(int64) {}
func (nopNotifier) Broken(BrokenLink) {}
func (nopNotifier) MonitoredSkipped(string, int) {}

type nopRecorder struct{}

func (nopRecorder) PageFetched(bool) {}
func (nopRecorder) LinkValidated(Outcome, int) {}
func (nopRecorder) LinkSkipped(SkipReason) {}
