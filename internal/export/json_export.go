package export

import (
	"fmt"
	"os"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/yingtu35/broken-link-finder/internal/webscraper"
)

// Record is the JSON document written for a run.
type Record struct {
	RunID            string                  `json:"run_id"`
	BaseURL          string                  `json:"base_url"`
	BaseDomain       string                  `json:"base_domain"`
	Seeds            []string                `json:"seeds"`
	SeedsFromRobots  bool                    `json:"seeds_from_robots"`
	LinksChecked     int64                   `json:"links_checked"`
	BrokenCount      int                     `json:"broken_count"`
	MonitoredSkipped bool                    `json:"monitored_skipped"`
	Interrupted      bool                    `json:"interrupted"`
	StartedAt        time.Time               `json:"started_at"`
	FinishedAt       time.Time               `json:"finished_at"`
	DurationMillis   int64                   `json:"duration_ms"`
	Broken           []webscraper.BrokenLink `json:"broken"`
}

type JsonExporter struct{}

func NewJsonExporter() Exporter {
	return &JsonExporter{}
}

func (e *JsonExporter) Export(report *webscraper.Report, filename string) error {
	filename = withExt(filename, ".json")

	data, err := json.Marshal(e.transformData(report), jsontext.WithIndent("    "))
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write json %s: %w", filename, err)
	}
	return nil
}

func (e *JsonExporter) transformData(report *webscraper.Report) Record {
	broken := make([]webscraper.BrokenLink, 0, len(report.Broken))
	seeds := make([]string, 0, len(report.Seeds))
	return Record{
		RunID:            report.RunID,
		BaseURL:          report.BaseURL,
		BaseDomain:       report.BaseDomain,
		Seeds:            append(seeds, report.Seeds...),
		SeedsFromRobots:  report.SeedsFromRobots,
		LinksChecked:     report.LinksChecked,
		BrokenCount:      len(report.Broken),
		MonitoredSkipped: report.MonitoredSkipped,
		Interrupted:      report.Interrupted,
		StartedAt:        report.StartedAt,
		FinishedAt:       report.FinishedAt,
		DurationMillis:   report.Duration().Milliseconds(),
		Broken:           append(broken, report.Broken...),
	}
}
