package webscraper

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

type route struct {
	status   int
	body     string
	location string
}

// fakeWeb serves canned responses keyed by full URL so tests can use
// real registrable domains. Unknown hosts fail like a DNS error, unknown
// paths on known hosts answer 404.
type fakeWeb struct {
	mu      sync.Mutex
	routes  map[string]route
	hosts   map[string]bool
	hits    map[string]int
	headers []http.Header
}

func newFakeWeb() *fakeWeb {
	return &fakeWeb{
		routes: make(map[string]route),
		hosts:  make(map[string]bool),
		hits:   make(map[string]int),
	}
}

func (w *fakeWeb) add(rawURL string, r route) *fakeWeb {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.routes[rawURL] = r
	if i := strings.Index(rawURL, "://"); i >= 0 {
		host := rawURL[i+3:]
		if j := strings.IndexByte(host, '/'); j >= 0 {
			host = host[:j]
		}
		w.hosts[host] = true
	}
	return w
}

func (w *fakeWeb) page(rawURL, html string) *fakeWeb {
	return w.add(rawURL, route{status: http.StatusOK, body: html})
}

func (w *fakeWeb) status(rawURL string, code int) *fakeWeb {
	return w.add(rawURL, route{status: code})
}

func (w *fakeWeb) redirect(rawURL, to string) *fakeWeb {
	return w.add(rawURL, route{status: http.StatusFound, location: to})
}

func (w *fakeWeb) hitCount(rawURL string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hits[rawURL]
}

// hostHits sums the requests made to host.
func (w *fakeWeb) hostHits(host string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	total := 0
	for u, n := range w.hits {
		if strings.Contains(u, "://"+host+"/") || strings.HasSuffix(u, "://"+host) {
			total += n
		}
	}
	return total
}

func (w *fakeWeb) totalHits() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	total := 0
	for _, n := range w.hits {
		total += n
	}
	return total
}

func (w *fakeWeb) RoundTrip(req *http.Request) (*http.Response, error) {
	key := req.URL.String()

	w.mu.Lock()
	w.hits[key]++
	w.headers = append(w.headers, req.Header.Clone())
	r, ok := w.routes[key]
	knownHost := w.hosts[req.URL.Host]
	w.mu.Unlock()

	if !knownHost {
		return nil, errors.New("dial tcp: lookup " + req.URL.Host + ": no such host")
	}
	if !ok {
		r = route{status: http.StatusNotFound, body: "not found"}
	}

	resp := &http.Response{
		StatusCode: r.status,
		Status:     http.StatusText(r.status),
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(r.body)),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "text/html; charset=utf-8")
	if r.location != "" {
		resp.Header.Set("Location", r.location)
	}
	return resp, nil
}

func (w *fakeWeb) client() *http.Client {
	return &http.Client{Transport: w, Timeout: time.Second}
}

// recordingNotifier captures events for assertions.
type recordingNotifier struct {
	mu         sync.Mutex
	seeds      []string
	fromRobots bool
	progress   []int64
	broken     []BrokenLink
	latched    []string
}

func (n *recordingNotifier) Seeds(seeds []string, fromRobots bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seeds = append([]string(nil), seeds...)
	n.fromRobots = fromRobots
}

func (n *recordingNotifier) Progress(checked int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress = append(n.progress, checked)
}

func (n *recordingNotifier) Broken(link BrokenLink) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broken = append(n.broken, link)
}

func (n *recordingNotifier) MonitoredSkipped(url string, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.latched = append(n.latched, url)
}

func newTestHunter(t *testing.T, web *fakeWeb, mutate func(*Options)) (*StaticHunter, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	opts := Options{
		Workers:  1,
		Client:   web.client(),
		Timeout:  time.Second,
		Notifier: notifier,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewStaticHunter(opts), notifier
}
