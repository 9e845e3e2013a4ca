package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yingtu35/broken-link-finder/internal/webscraper"
)

func sampleReport() *webscraper.Report {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &webscraper.Report{
		RunID:        "run-1",
		BaseURL:      "https://ex.com/",
		BaseDomain:   "ex.com",
		Seeds:        []string{"https://ex.com/"},
		LinksChecked: 7,
		Broken: []webscraper.BrokenLink{
			{URL: "https://ex.com/dead", Status: 404, Source: "https://ex.com/", Text: "broken"},
			{URL: "https://gone.net/x", Status: 410, Source: "https://ex.com/a", Text: "Say \"hi\", then leave"},
			{URL: "https://gone.net/x", Status: 410, Source: "https://ex.com/b", Text: "[No text]"},
		},
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
	}
}

func TestCSVExport(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "report")

	require.NoError(t, NewCSVExporter().Export(sampleReport(), base))

	raw, err := os.ReadFile(base + ".csv")
	require.NoError(t, err)

	var rows []webscraper.BrokenLink
	require.NoError(t, gocsv.UnmarshalBytes(raw, &rows))
	assert.Equal(t, sampleReport().Broken, rows)
	assert.Contains(t, string(raw), "URL,Status,Found On,Link Text\n")
}

func TestCSVExportKeepsExtension(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "out.CSV")
	require.NoError(t, NewCSVExporter().Export(sampleReport(), name))
	_, err := os.Stat(name)
	assert.NoError(t, err)
}

func TestJsonExport(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "report")

	require.NoError(t, NewJsonExporter().Export(sampleReport(), base))

	raw, err := os.ReadFile(base + ".json")
	require.NoError(t, err)

	var got Record
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "ex.com", got.BaseDomain)
	assert.Equal(t, int64(7), got.LinksChecked)
	assert.Equal(t, 3, got.BrokenCount)
	assert.Equal(t, int64(2000), got.DurationMillis)
	assert.Equal(t, sampleReport().Broken, got.Broken)
	assert.True(t, got.StartedAt.Equal(sampleReport().StartedAt))
}

func TestJsonExportEmptyReport(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "empty.json")

	require.NoError(t, NewJsonExporter().Export(&webscraper.Report{}, name))

	raw, err := os.ReadFile(name)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, []any{}, doc["broken"])
	assert.Equal(t, []any{}, doc["seeds"])
}

func TestExportCreateError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no", "such", "dir", "r")
	assert.Error(t, NewCSVExporter().Export(sampleReport(), missing))
	assert.Error(t, NewJsonExporter().Export(sampleReport(), missing))
}
