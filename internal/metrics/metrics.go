// Package metrics exposes crawl counters for Prometheus scraping.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yingtu35/broken-link-finder/internal/webscraper"
)

const namespace = "linkfinder"

var _ webscraper.Recorder = (*Recorder)(nil)

// Recorder counts crawl events on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	pagesTotal     *prometheus.CounterVec
	linksValidated *prometheus.CounterVec
	linksSkipped   *prometheus.CounterVec
	brokenLinks    prometheus.Gauge
	linksChecked   prometheus.Gauge
	crawlDuration  prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		pagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Pages fetched for link extraction, by result.",
		}, []string{"result"}),
		linksValidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_validated_total",
			Help:      "Links validated, by outcome and status class.",
		}, []string{"outcome", "status_class"}),
		linksSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_skipped_total",
			Help:      "Links dropped without a request, by reason.",
		}, []string{"reason"}),
		brokenLinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "broken_links",
			Help:      "Broken links recorded by the last finished crawl.",
		}),
		linksChecked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "links_checked",
			Help:      "Pages checked by the last finished crawl.",
		}),
		crawlDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "crawl_duration_seconds",
			Help:      "Wall time of the last finished crawl.",
		}),
	}
	r.registry.MustRegister(
		r.pagesTotal,
		r.linksValidated,
		r.linksSkipped,
		r.brokenLinks,
		r.linksChecked,
		r.crawlDuration,
	)
	return r
}

func (r *Recorder) PageFetched(ok bool) {
	result := "failed"
	if ok {
		result = "ok"
	}
	r.pagesTotal.WithLabelValues(result).Inc()
}

func (r *Recorder) LinkValidated(outcome webscraper.Outcome, status int) {
	r.linksValidated.WithLabelValues(outcome.String(), statusClass(status)).Inc()
}

func (r *Recorder) LinkSkipped(reason webscraper.SkipReason) {
	r.linksSkipped.WithLabelValues(string(reason)).Inc()
}

// Finish publishes the totals of a finished crawl.
func (r *Recorder) Finish(report *webscraper.Report) {
	r.brokenLinks.Set(float64(len(report.Broken)))
	r.linksChecked.Set(float64(report.LinksChecked))
	r.crawlDuration.Set(report.Duration().Seconds())
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// statusClass maps 404 to "4xx"; no response is "none".
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "none"
	}
	return strconv.Itoa(status/100) + "xx"
}

// Server serves /metrics until Close is called.
type Server struct {
	srv  *http.Server
	ln   net.Listener
	log  *slog.Logger
	once sync.Once
	done chan struct{}
}

// Serve listens on addr and starts serving r in the background. Listen
// errors are returned immediately.
func Serve(addr string, r *Recorder, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	s := &Server{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
		},
		ln:   ln,
		log:  logger,
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics server stopped", "error", err)
		}
	}()
	return s, nil
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

func (s *Server) Close() error {
	var err error
	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = s.srv.Shutdown(ctx)
		<-s.done
	})
	return err
}
