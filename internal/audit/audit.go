// Package audit classifies corpus files by content quality so the broken
// ones can be routed to the right repair pass: GitHub UI pages get
// re-fetched raw, paywalled abstracts get deleted, thin files get reviewed.
package audit

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/refsweep/refsweep/internal/record"
)

// Entry is one classified corpus file.
type Entry struct {
	File string
	URL  string
	Size int
}

// Result buckets every matching file in a corpus directory.
type Result struct {
	Good      []Entry
	GitHubUI  []Entry
	Paywalled []Entry
	Empty     []Entry
}

// Thin bodies under this size are broken captures, not content.
const minGoodBody = 150

var paywallHosts = []string{"ieee", "springer"}

// Classify inspects every file in dir matching pattern and buckets it by
// the Final URL and body shape.
func Classify(dir, pattern string) (Result, error) {
	if pattern == "" {
		pattern = "web_*.txt"
	}
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return Result{}, fmt.Errorf("glob: %w", err)
	}
	sort.Strings(files)

	var res Result
	for _, path := range files {
		rec, err := record.Load(path)
		if err != nil {
			res.Empty = append(res.Empty, Entry{File: filepath.Base(path)})
			continue
		}
		e := Entry{
			File: filepath.Base(path),
			URL:  rec.FinalURL,
			Size: len(strings.TrimSpace(rec.Body)),
		}
		lowerURL := strings.ToLower(rec.FinalURL)
		switch {
		case rec.FinalURL == "":
			res.Empty = append(res.Empty, e)
		case e.Size < minGoodBody && strings.Contains(lowerURL, "github"):
			res.GitHubUI = append(res.GitHubUI, e)
		case e.Size < minGoodBody && hostIn(lowerURL, paywallHosts):
			res.Paywalled = append(res.Paywalled, e)
		case e.Size < minGoodBody:
			res.Empty = append(res.Empty, e)
		case strings.Contains(rec.FinalURL, "github.com") && strings.Contains(rec.Body, "Search code"):
			res.GitHubUI = append(res.GitHubUI, e)
		default:
			res.Good = append(res.Good, e)
		}
	}
	return res, nil
}

func hostIn(url string, hosts []string) bool {
	for _, h := range hosts {
		if strings.Contains(url, h) {
			return true
		}
	}
	return false
}

// Render writes the audit report.
func (r Result) Render(w io.Writer) {
	rule := strings.Repeat("=", 80)
	fmt.Fprintln(w, "AUDITING EXTERNAL LINKS DATASET")
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "\nGOOD FILES: %d\n", len(r.Good))
	for i, e := range r.Good {
		if i == 5 {
			fmt.Fprintf(w, "  ... and %d more\n", len(r.Good)-5)
			break
		}
		fmt.Fprintf(w, "  - %-40s (%5dB)\n", e.File, e.Size)
	}

	fmt.Fprintf(w, "\nGITHUB UI ISSUES: %d\n", len(r.GitHubUI))
	for _, e := range r.GitHubUI {
		fmt.Fprintf(w, "  - %-40s (%5dB)\n", e.File, e.Size)
		fmt.Fprintf(w, "    URL: %s\n", truncate(e.URL, 70))
	}

	fmt.Fprintf(w, "\nPAYWALLED (cannot fix): %d\n", len(r.Paywalled))
	for _, e := range r.Paywalled {
		fmt.Fprintf(w, "  - %-40s\n", e.File)
		fmt.Fprintf(w, "    URL: %s\n", truncate(e.URL, 70))
	}

	fmt.Fprintf(w, "\nEMPTY/MINIMAL: %d\n", len(r.Empty))
	for _, e := range r.Empty {
		fmt.Fprintf(w, "  - %-40s (%5dB)\n", e.File, e.Size)
	}

	total := len(r.Good) + len(r.GitHubUI) + len(r.Paywalled) + len(r.Empty)
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "SUMMARY:\n")
	fmt.Fprintf(w, "  Good:      %2d\n", len(r.Good))
	fmt.Fprintf(w, "  GitHub UI: %2d (can potentially fix)\n", len(r.GitHubUI))
	fmt.Fprintf(w, "  Paywalled: %2d (delete)\n", len(r.Paywalled))
	fmt.Fprintf(w, "  Empty:     %2d (review)\n", len(r.Empty))
	fmt.Fprintf(w, "  TOTAL:     %2d\n", total)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
