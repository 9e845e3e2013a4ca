package export

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/yingtu35/broken-link-finder/internal/webscraper"
)

type CSVExporter struct{}

func NewCSVExporter() Exporter {
	return &CSVExporter{}
}

// Export writes one row per broken link, in the order they were found.
func (e *CSVExporter) Export(report *webscraper.Report, filename string) error {
	filename = withExt(filename, ".csv")
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer file.Close()

	rows := e.transformData(report)
	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("write csv %s: %w", filename, err)
	}
	return file.Close()
}

func (e *CSVExporter) transformData(report *webscraper.Report) []webscraper.BrokenLink {
	rows := make([]webscraper.BrokenLink, 0, len(report.Broken))
	return append(rows, report.Broken...)
}
