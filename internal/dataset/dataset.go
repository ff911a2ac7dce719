// Package dataset discovers candidate URLs in the research dataset CSV. The
// CSV arrives in mixed encodings depending on which spreadsheet exported it,
// so reads fall back from UTF-8 to Windows-1252/Latin-1.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var (
	urlRe = regexp.MustCompile(`(?i)https?://[^\s<>"{}|\\^\[\]` + "`" + `]+`)
	pdfRe = regexp.MustCompile(`(?i)https?://[^\s<>"{}|\\^\[\]` + "`" + `]+\.pdf`)
)

// ExtractLinks returns every URL in text, deduplicated in first-seen order.
func ExtractLinks(text string) []string {
	return dedup(urlRe.FindAllString(text, -1))
}

// ExtractPDFLinks returns the URLs in text ending in .pdf, deduplicated in
// first-seen order.
func ExtractPDFLinks(text string) []string {
	return dedup(pdfRe.FindAllString(text, -1))
}

func dedup(links []string) []string {
	seen := make(map[string]bool, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// ReadFileFallback reads a file as UTF-8, decoding through Windows-1252 when
// the bytes are not valid UTF-8.
func ReadFileFallback(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := io.ReadAll(transform.NewReader(strings.NewReader(string(data)), charmap.Windows1252.NewDecoder()))
	if err != nil {
		// Latin-1 decoding cannot fail; last resort for odd byte runs.
		decoded, _ = io.ReadAll(transform.NewReader(strings.NewReader(string(data)), charmap.ISO8859_1.NewDecoder()))
	}
	return string(decoded), nil
}

// LinkRef ties one discovered URL to the dataset row it came from.
type LinkRef struct {
	Project string
	Model   string
	URL     string
}

// Stats summarizes one scan of the dataset CSV.
type Stats struct {
	TotalRows    int
	RowsWithRefs int
	TotalLinks   int
	PDFLinks     []LinkRef
	OtherLinks   []LinkRef
	Unique       []string
}

// ScanCSV walks every row of the dataset and collects the URLs found in the
// description and notes columns.
func ScanCSV(path string) (Stats, error) {
	content, err := ReadFileFallback(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open dataset: %w", err)
	}

	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return Stats{}, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var stats Stats
	seen := make(map[string]bool)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row never aborts the scan.
			continue
		}
		stats.TotalRows++

		// The large description column is unnamed in the export.
		text := field(row, "") + " " + field(row, "notes")
		links := ExtractLinks(text)
		if len(links) == 0 {
			continue
		}
		stats.RowsWithRefs++
		stats.TotalLinks += len(links)

		project := field(row, "project")
		model := field(row, "model")
		if project == "" {
			project = "unknown"
		}
		if model == "" {
			model = "unknown"
		}
		for _, l := range links {
			if !seen[l] {
				seen[l] = true
				stats.Unique = append(stats.Unique, l)
			}
			ref := LinkRef{Project: project, Model: model, URL: l}
			if strings.HasSuffix(strings.ToLower(l), ".pdf") {
				stats.PDFLinks = append(stats.PDFLinks, ref)
			} else {
				stats.OtherLinks = append(stats.OtherLinks, ref)
			}
		}
	}
	return stats, nil
}
