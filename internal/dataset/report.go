package dataset

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

const rule = "================================================================================"

// WriteInventory persists the discovered PDF links in the corpus inventory
// format.
func WriteInventory(path string, refs []LinkRef) error {
	var b strings.Builder
	b.WriteString("PDF Links Inventory\n")
	b.WriteString(rule + "\n\n")
	for _, ref := range refs {
		fmt.Fprintf(&b, "Project: %s\n", ref.Project)
		fmt.Fprintf(&b, "Model: %s\n", ref.Model)
		fmt.Fprintf(&b, "URL: %s\n", ref.URL)
		b.WriteString(strings.Repeat("-", 80) + "\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// WriteVerificationReport persists the link-discovery summary plus the full
// sorted URL list, used to cross-check a scrape against the dataset.
func WriteVerificationReport(path string, stats Stats, scrapedFiles int) error {
	var b strings.Builder
	b.WriteString("VERIFICATION REPORT\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Total rows: %d\n", stats.TotalRows)
	fmt.Fprintf(&b, "Rows with links: %d\n", stats.RowsWithRefs)
	fmt.Fprintf(&b, "Total links: %d\n", stats.TotalLinks)
	fmt.Fprintf(&b, "PDF links: %d\n", len(stats.PDFLinks))
	fmt.Fprintf(&b, "Non-PDF links: %d\n", len(stats.OtherLinks))
	fmt.Fprintf(&b, "Scraped files: %d\n\n", scrapedFiles)

	b.WriteString("ALL LINKS FOUND\n")
	b.WriteString(rule + "\n\n")
	links := append([]string(nil), stats.Unique...)
	sort.Strings(links)
	for _, l := range links {
		b.WriteString(l + "\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
