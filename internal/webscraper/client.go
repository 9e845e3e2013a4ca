package webscraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Response is what the crawler keeps of an HTTP response.
type Response struct {
	Status   int
	FinalURL string // after redirects
	Body     []byte // only filled when requested
}

// fetcher issues the GET requests of a crawl with fixed headers, a
// per-request timeout and a redirect cap.
type fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
}

func newFetcher(opts Options) *fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	// Copy so the caller's client keeps its own redirect policy.
	c := *client
	c.CheckRedirect = redirectPolicy(opts.MaxRedirects)

	f := &fetcher{
		client:    &c,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return f
}

// redirectPolicy follows up to maxRedirects hops and fails the request
// on the next one.
func redirectPolicy(maxRedirects int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return fmt.Errorf("%w: more than %d redirects", ErrRedirectCap, maxRedirects)
		}
		return nil
	}
}

// Get fetches rawURL. When readBody is set up to MaxBodySize bytes of
// the body are returned. Every failure is wrapped in ErrTransientFetch.
func (f *fetcher) Get(ctx context.Context, rawURL string, readBody bool) (*Response, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransientFetch, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrTransientFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Connection", "keep-alive")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransientFetch, err)
	}
	defer resp.Body.Close()

	out := &Response{Status: resp.StatusCode, FinalURL: rawURL}
	if resp.Request != nil && resp.Request.URL != nil {
		out.FinalURL = resp.Request.URL.String()
	}

	if !readBody {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, drainSize)
		return out, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransientFetch, err)
	}
	out.Body = body
	return out, nil
}
