package webscraper

import (
	"sync"
	"sync/atomic"
)

// CrawlState is owned by a single Crawl call and shared by its workers.
type CrawlState struct {
	visitedMu sync.Mutex
	visited   map[string]struct{}

	// deadUrls remembers internal pages whose status was reported as
	// broken. pending holds extra links to pages not yet settled.
	deadUrls map[string]deadPage
	settled  map[string]struct{}
	pending  map[string][]referrer

	checked       atomic.Int64
	skipMonitored atomic.Bool

	brokenMu sync.Mutex
	broken   []BrokenLink
}

func NewCrawlState() *CrawlState {
	return &CrawlState{
		visited:  make(map[string]struct{}),
		deadUrls: make(map[string]deadPage),
		settled:  make(map[string]struct{}),
		pending:  make(map[string][]referrer),
	}
}

type deadPage struct {
	status   int
	finalURL string
}

type referrer struct {
	source string
	text   string
}

// MarkVisited adds u to the visited set and reports whether it was new.
func (s *CrawlState) MarkVisited(u string) bool {
	s.visitedMu.Lock()
	defer s.visitedMu.Unlock()
	if _, ok := s.visited[u]; ok {
		return false
	}
	s.visited[u] = struct{}{}
	return true
}

func (s *CrawlState) Visited(u string) bool {
	s.visitedMu.Lock()
	defer s.visitedMu.Unlock()
	_, ok := s.visited[u]
	return ok
}

func (s *CrawlState) VisitedCount() int {
	s.visitedMu.Lock()
	defer s.visitedMu.Unlock()
	return len(s.visited)
}

// Refer records one more link from source to the already visited page u.
// If u is known to be dead the BrokenLink for this link is returned.
// If u has not been settled yet the link is held until SettlePage.
func (s *CrawlState) Refer(u, source, text string) (BrokenLink, bool) {
	s.visitedMu.Lock()
	defer s.visitedMu.Unlock()
	if d, ok := s.deadUrls[u]; ok {
		return BrokenLink{URL: d.finalURL, Status: d.status, Source: source, Text: text}, true
	}
	if _, ok := s.settled[u]; !ok {
		s.pending[u] = append(s.pending[u], referrer{source: source, text: text})
	}
	return BrokenLink{}, false
}

// SettlePage marks u as fetched. A non-nil dead stores its verdict for
// later referrers. The links held for u are returned in arrival order.
func (s *CrawlState) SettlePage(u string, dead *deadPage) []referrer {
	s.visitedMu.Lock()
	defer s.visitedMu.Unlock()
	s.settled[u] = struct{}{}
	if dead != nil {
		s.deadUrls[u] = *dead
	}
	held := s.pending[u]
	delete(s.pending, u)
	return held
}

func (s *CrawlState) IncChecked() int64 { return s.checked.Add(1) }

func (s *CrawlState) Checked() int64 { return s.checked.Load() }

// LatchMonitored sets the monitored-domain latch. It returns true only
// for the call that flipped it.
func (s *CrawlState) LatchMonitored() bool {
	return s.skipMonitored.CompareAndSwap(false, true)
}

func (s *CrawlState) MonitoredLatched() bool { return s.skipMonitored.Load() }

func (s *CrawlState) AddBroken(link BrokenLink) {
	s.brokenMu.Lock()
	s.broken = append(s.broken, link)
	s.brokenMu.Unlock()
}

// Broken returns a copy of the broken links in the order they were found.
func (s *CrawlState) Broken() []BrokenLink {
	s.brokenMu.Lock()
	defer s.brokenMu.Unlock()
	return append([]BrokenLink(nil), s.broken...)
}
