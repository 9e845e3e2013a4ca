package webscraper

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yingtu35/broken-link-finder/pkg/domain"
	"golang.org/x/sync/singleflight"
)

// Outcome classifies the result of validating one link.
type Outcome int

const (
	OutcomeHealthy     Outcome = iota // 2xx or 3xx
	OutcomeBroken                     // recorded as a BrokenLink
	OutcomeIgnored                    // error status excluded by policy
	OutcomeSkipped                    // no request was made
	OutcomeUnreachable                // transient failure, swallowed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHealthy:
		return "healthy"
	case OutcomeBroken:
		return "broken"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeUnreachable:
		return "unreachable"
	}
	return "unknown"
}

// Verdict is the result of Validator.Validate.
type Verdict struct {
	Outcome  Outcome
	Status   int
	FinalURL string
	Err      error
}

// Validator checks single links and records the broken ones.
type Validator struct {
	fetch      *fetcher
	classifier *Classifier
	notify     Notifier
	record     Recorder
	log        *slog.Logger

	// inflight collapses concurrent requests to the same monitored URL.
	inflight singleflight.Group
}

func newValidator(f *fetcher, c *Classifier, opts Options) *Validator {
	return &Validator{
		fetch:      f,
		classifier: c,
		notify:     opts.Notifier,
		record:     opts.Recorder,
		log:        opts.Logger,
	}
}

// Validate requests target once and applies the reporting policy:
// 403 is ignored everywhere, 400 is ignored on the monitored domain and
// latches it off, anything else outside [200,400) is recorded as broken
// with source and text. Transport failures are swallowed.
func (v *Validator) Validate(ctx context.Context, target, source, text string, state *CrawlState) Verdict {
	verdict := v.validate(ctx, target, source, text, state)
	v.record.LinkValidated(verdict.Outcome, verdict.Status)
	return verdict
}

func (v *Validator) validate(ctx context.Context, target, source, text string, state *CrawlState) Verdict {
	monitored := v.classifier.IsMonitored(target)
	if monitored && state.MonitoredLatched() {
		return Verdict{Outcome: OutcomeSkipped}
	}
	if !domain.IsHTTPURL(target) {
		return Verdict{Outcome: OutcomeSkipped}
	}

	var (
		resp *Response
		err  error
	)
	if monitored {
		var val any
		val, err, _ = v.inflight.Do(target, func() (any, error) {
			return v.fetch.Get(ctx, target, false)
		})
		if err == nil {
			resp = val.(*Response)
		}
	} else {
		resp, err = v.fetch.Get(ctx, target, false)
	}
	if err != nil {
		v.log.Debug("link unreachable", "url", target, "source", source, "error", err)
		return Verdict{Outcome: OutcomeUnreachable, Err: err}
	}
	return v.assess(target, resp, source, text, state)
}

// Judge applies the reporting policy to a response fetched by the
// crawler itself for a link found on source.
func (v *Validator) Judge(target string, resp *Response, source, text string, state *CrawlState) Verdict {
	verdict := v.assess(target, resp, source, text, state)
	v.record.LinkValidated(verdict.Outcome, verdict.Status)
	return verdict
}

func (v *Validator) assess(target string, resp *Response, source, text string, state *CrawlState) Verdict {
	verdict := Verdict{Status: resp.Status, FinalURL: resp.FinalURL}
	switch {
	case v.Reportable(target, resp.Status):
		verdict.Outcome = OutcomeBroken
		link := BrokenLink{URL: resp.FinalURL, Status: resp.Status, Source: source, Text: text}
		state.AddBroken(link)
		v.notify.Broken(link)
	case resp.Status < 200 || resp.Status >= 400:
		verdict.Outcome = OutcomeIgnored
		if resp.Status == http.StatusBadRequest && v.classifier.IsMonitored(target) && state.LatchMonitored() {
			v.log.Info("monitored domain answered 400, skipping its links", "url", target)
			v.notify.MonitoredSkipped(target, resp.Status)
		}
	default:
		verdict.Outcome = OutcomeHealthy
	}
	return verdict
}

// Reportable reports whether status from target is recorded as broken:
// outside [200,400), except 403 anywhere and 400 on the monitored domain.
func (v *Validator) Reportable(target string, status int) bool {
	switch {
	case status >= 200 && status < 400:
		return false
	case status == http.StatusForbidden:
		return false
	case status == http.StatusBadRequest && v.classifier.IsMonitored(target):
		return false
	}
	return true
}

// Record adds a broken link whose target was already judged dead.
func (v *Validator) Record(link BrokenLink, state *CrawlState) {
	state.AddBroken(link)
	v.notify.Broken(link)
	v.record.LinkValidated(OutcomeBroken, link.Status)
}
