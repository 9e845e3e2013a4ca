// Package export writes the broken links of a crawl to files.
package export

import (
	"path/filepath"
	"strings"

	"github.com/yingtu35/broken-link-finder/internal/webscraper"
)

type Exporter interface {
	// Export writes the report to filename. The format's extension is
	// appended when filename does not already end with it.
	Export(report *webscraper.Report, filename string) error
}

func withExt(filename, ext string) string {
	if strings.EqualFold(filepath.Ext(filename), ext) {
		return filename
	}
	return filename + ext
}
