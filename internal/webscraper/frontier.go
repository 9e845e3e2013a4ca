package webscraper

import "sync"

// job is a page waiting to be crawled together with the link that led
// to it. Seeds have no source.
type job struct {
	url    string
	source string
	text   string
}

// frontier is the LIFO work stack shared by the crawl workers. pending
// counts queued plus in-flight URLs; the crawl is over when it drops to
// zero or the frontier is closed.
type frontier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	stack   []job
	pending int
	closed  bool
}

func newFrontier() *frontier {
	f := &frontier{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *frontier) push(j job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.stack = append(f.stack, j)
	f.pending++
	f.cond.Signal()
}

// pop blocks until a job is available. It returns false once the work
// is exhausted or the frontier was closed.
func (f *frontier) pop() (job, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.stack) == 0 && f.pending > 0 && !f.closed {
		f.cond.Wait()
	}
	if f.closed || len(f.stack) == 0 {
		return job{}, false
	}
	j := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return j, true
}

// done marks a popped job as fully processed.
func (f *frontier) done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending--
	if f.pending <= 0 {
		f.cond.Broadcast()
	}
}

// close stops handing out work; queued URLs are dropped.
func (f *frontier) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.cond.Broadcast()
}

func (f *frontier) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
