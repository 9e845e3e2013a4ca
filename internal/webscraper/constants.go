package webscraper

import "time"

const (
	DefaultWorkers      = 4               // worker goroutines draining the frontier
	DefaultTimeout      = 5 * time.Second // per request
	DefaultMaxRedirects = 2               // hops followed before giving up
	MaxBodySize         = 5 << 20         // bytes of a page read for link extraction
	drainSize           = 64 << 10        // bytes discarded from validation responses

	DefaultMonitoredDomain = "facebook.com"
	DefaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

	NoAnchorText = "[No text]"
)

// DefaultExcludedExtensions lists link targets that are never fetched.
var DefaultExcludedExtensions = []string{
	"jpg", "jpeg", "png", "gif", "svg",
	"css", "js",
	"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx",
}
