package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/yingtu35/broken-link-finder/internal/config"
	"github.com/yingtu35/broken-link-finder/internal/export"
	"github.com/yingtu35/broken-link-finder/internal/metrics"
	"github.com/yingtu35/broken-link-finder/internal/ui"
	"github.com/yingtu35/broken-link-finder/internal/webscraper"
)

const prompt = "Enter the base URL to crawl (e.g., https://example.com), Note - Please try HTTP if HTTPS shows no results: "

// CLI is the command line of the finder. Flags left at their zero value
// keep the setting from the config file.
type CLI struct {
	URL string `arg:"" optional:"" help:"Base URL to crawl. Prompted for when omitted."`

	Config          string        `help:"YAML config file." type:"path"`
	Workers         int           `help:"Concurrent page fetchers."`
	Timeout         time.Duration `help:"Per-request timeout."`
	MaxRedirects    int           `name:"max-redirects" help:"Redirect hops followed per request."`
	Rate            float64       `help:"Maximum requests per second, 0 for unlimited."`
	UserAgent       string        `name:"user-agent" help:"User-Agent header sent with every request."`
	ExcludeExt      []string      `name:"exclude-ext" sep:"," help:"Link extensions never fetched, replacing the defaults."`
	MonitoredDomain string        `name:"monitored-domain" help:"Domain skipped once it answers 400."`
	NoColor         bool          `name:"no-color" help:"Disable colored output."`
	LogLevel        string        `name:"log-level" help:"debug, info, warn or error."`
	ExportCSV       string        `name:"export-csv" help:"Write broken links to this CSV file."`
	ExportJSON      string        `name:"export-json" help:"Write the report to this JSON file."`
	MetricsAddr     string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address."`
}

// apply layers the flags that were set over cfg.
func (c *CLI) apply(cfg *config.Config) {
	if c.Workers != 0 {
		cfg.Workers = c.Workers
	}
	if c.Timeout != 0 {
		cfg.Timeout = c.Timeout
	}
	if c.MaxRedirects != 0 {
		cfg.MaxRedirects = c.MaxRedirects
	}
	if c.Rate != 0 {
		cfg.RequestsPerSecond = c.Rate
	}
	if c.UserAgent != "" {
		cfg.UserAgent = c.UserAgent
	}
	if len(c.ExcludeExt) > 0 {
		cfg.ExcludedExtensions = c.ExcludeExt
	}
	if c.MonitoredDomain != "" {
		cfg.MonitoredDomain = c.MonitoredDomain
	}
	if c.NoColor {
		cfg.NoColor = true
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.ExportCSV != "" {
		cfg.Export.CSV = c.ExportCSV
	}
	if c.ExportJSON != "" {
		cfg.Export.JSON = c.ExportJSON
	}
	if c.MetricsAddr != "" {
		cfg.MetricsAddr = c.MetricsAddr
	}
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("app"),
		kong.Description("Crawl a website and report its broken links."),
		kong.UsageOnError(),
	)

	ctx, cancel := signalContext(5 * time.Second)
	code := run(ctx, &cli, os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, cli *CLI, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	cli.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	target := cli.URL
	if target == "" {
		fmt.Fprint(stdout, prompt)
		target, err = readLine(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "error: read URL: %v\n", err)
			return 1
		}
	}
	target, err = webscraper.ValidateBaseURL(target)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	console := ui.New(stdout, cfg.NoColor)
	recorder := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		srv, err := metrics.Serve(cfg.MetricsAddr, recorder, logger)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		defer srv.Close()
		logger.Info("serving metrics", "addr", srv.Addr())
	}

	opts := cfg.Options()
	opts.Notifier = console
	opts.Recorder = recorder
	opts.Logger = logger

	hunter := webscraper.NewStaticHunter(opts)
	report, huntErr := hunter.Hunt(ctx, target)
	if report == nil {
		fmt.Fprintf(stderr, "error: %v\n", huntErr)
		return 1
	}

	console.Summary(report)
	recorder.Finish(report)

	code := 0
	if err := exportReport(report, cfg.Export); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		code = 1
	}
	if errors.Is(huntErr, context.Canceled) || report.Interrupted {
		return 130
	}
	return code
}

func exportReport(report *webscraper.Report, dst config.Export) error {
	if dst.CSV != "" {
		if err := export.NewCSVExporter().Export(report, dst.CSV); err != nil {
			return err
		}
	}
	if dst.JSON != "" {
		if err := export.NewJsonExporter().Export(report, dst.JSON); err != nil {
			return err
		}
	}
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// signalContext is cancelled on SIGINT or SIGTERM. A second signal
// within gracePeriod exits immediately.
func signalContext(gracePeriod time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, "Interrupt received, finishing with a partial report...")
			cancel()
			select {
			case <-sigs:
				os.Exit(1)
			case <-time.After(gracePeriod):
			}
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
