// Package scrape downloads the web pages and PDFs referenced by the dataset
// and writes each one as a headed corpus file.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/refsweep/refsweep/internal/dataset"
	"github.com/refsweep/refsweep/internal/extract"
	"github.com/refsweep/refsweep/internal/fetch"
	"github.com/refsweep/refsweep/internal/pdftext"
	"github.com/refsweep/refsweep/internal/record"
)

// ErrSkipped marks a link that was intentionally not fetched.
var ErrSkipped = errors.New("link skipped")

// truncationFixes maps a marker found in an ellipsis-truncated URL to the
// suffix that restores the full address. The source report clips long URLs,
// so the handful of known victims get expanded here.
var truncationFixes = []struct {
	marker string
	suffix string
}{
	{"pubs.html#di", "stributed-systems/"},
	{"teaching-con", "currency.html"},
	{"two-phase.htm", "l"},
	{"EWD998", "aaa/EWD998.txt"},
}

// CleanURL strips trailing punctuation the report leaves on links and
// expands known ellipsis-truncated URLs.
func CleanURL(u string) string {
	u = strings.TrimRight(u, ";")
	// Ellipsis means the report clipped the URL; check before dot-trimming
	// would eat it. Unknown truncations pass through untouched.
	if strings.HasSuffix(u, "...") {
		for _, fix := range truncationFixes {
			if strings.Contains(u, fix.marker) {
				return strings.Replace(u, "...", fix.suffix, 1)
			}
		}
		return u
	}
	return strings.TrimRight(u, ".")
}

var unsafeChars = regexp.MustCompile(`[^\w\-]`)

// SanitizeFilename derives a filesystem-safe name from a URL: the last path
// segment, or the host when the path is bare.
func SanitizeFilename(rawURL string) string {
	name := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		name = path.Base(parsed.Path)
		if name == "" || name == "/" || name == "." {
			name = parsed.Host
		}
	}
	name = strings.TrimSuffix(name, ".pdf")
	name = unsafeChars.ReplaceAllString(name, "_")
	if len(name) > 100 {
		name = name[:100]
	}
	return name
}

// Scraper fetches links and writes them into OutDir as record files.
type Scraper struct {
	Client *fetch.Client
	OutDir string
	// Delay is the courtesy pause between successive fetches.
	Delay time.Duration
}

// Report tallies a scraping run.
type Report struct {
	Successful int
	Failed     int
	Skipped    int
}

func (r Report) Total() int { return r.Successful + r.Failed + r.Skipped }

func isVideoLink(u string) bool {
	return strings.HasPrefix(u, "https://www.youtube.com") ||
		strings.HasPrefix(u, "https://youtu.be")
}

// ScrapeLink fetches one link and writes it under OutDir. PDFs become
// pdf_<name>.txt with extracted page text; everything else becomes
// web_<name>.txt with the raw payload decoded as text. Video links and
// already-scraped files return ErrSkipped.
func (s *Scraper) ScrapeLink(ctx context.Context, rawURL string) (string, error) {
	u := CleanURL(rawURL)
	if isVideoLink(u) {
		return "", fmt.Errorf("video link: %w", ErrSkipped)
	}

	res, err := s.Client.Get(ctx, u)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", u, err)
	}

	var name, body string
	if extract.DetectKind(res.Body) == extract.KindPDF {
		text, err := pdftext.FromBytes(res.Body)
		if err != nil {
			return "", fmt.Errorf("pdf text %s: %w", u, err)
		}
		name = "pdf_" + SanitizeFilename(u) + ".txt"
		body = text
	} else {
		name = "web_" + SanitizeFilename(u) + ".txt"
		body = strings.ToValidUTF8(string(res.Body), "�")
	}

	dest := filepath.Join(s.OutDir, name)
	if _, err := os.Stat(dest); err == nil {
		return name, fmt.Errorf("already exists: %w", ErrSkipped)
	}
	rec := record.Record{SourceURL: u, FinalURL: res.FinalURL, Body: body}
	if err := rec.WriteFile(dest); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return name, nil
}

// ScrapeAll runs ScrapeLink over every link, pausing Delay between fetches
// and carrying on over individual failures.
func (s *Scraper) ScrapeAll(ctx context.Context, links []string) Report {
	if err := os.MkdirAll(s.OutDir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", s.OutDir).Msg("cannot create output dir")
		return Report{Failed: len(links)}
	}

	var rep Report
	for i, link := range links {
		if i > 0 && s.Delay > 0 {
			time.Sleep(s.Delay)
		}
		name, err := s.ScrapeLink(ctx, link)
		switch {
		case errors.Is(err, ErrSkipped):
			log.Info().Str("url", link).Msg("skipped")
			rep.Skipped++
		case err != nil:
			log.Warn().Err(err).Str("url", link).Msg("scrape failed")
			rep.Failed++
		default:
			log.Info().Str("url", link).Str("file", name).Msg("saved")
			rep.Successful++
		}
	}
	log.Info().
		Int("successful", rep.Successful).
		Int("failed", rep.Failed).
		Int("skipped", rep.Skipped).
		Msg("scrape complete")
	return rep
}

// PDFRun extends the dataset scan stats with download tallies.
type PDFRun struct {
	dataset.Stats
	Downloaded int
	Failed     int
}

// ScrapePDFLinks scans the dataset CSV for PDF links, downloads each one,
// and writes both the converted text files and a link inventory.
func (s *Scraper) ScrapePDFLinks(ctx context.Context, csvPath string) (PDFRun, error) {
	scan, err := dataset.ScanCSV(csvPath)
	if err != nil {
		return PDFRun{}, fmt.Errorf("scan dataset: %w", err)
	}
	stats := PDFRun{Stats: scan}
	if err := os.MkdirAll(s.OutDir, 0o755); err != nil {
		return stats, fmt.Errorf("create output dir: %w", err)
	}

	first := true
	for _, ref := range stats.PDFLinks {
		name := fmt.Sprintf("%s_%s_%s.txt", ref.Project, ref.Model, SanitizeFilename(ref.URL))
		dest := filepath.Join(s.OutDir, name)
		if _, err := os.Stat(dest); err == nil {
			log.Info().Str("file", name).Msg("already exists")
			stats.Downloaded++
			continue
		}
		if !first && s.Delay > 0 {
			time.Sleep(s.Delay)
		}
		first = false

		res, err := s.Client.Get(ctx, ref.URL)
		if err != nil {
			log.Warn().Err(err).Str("url", ref.URL).Msg("download failed")
			stats.Failed++
			continue
		}
		text, err := pdftext.FromBytes(res.Body)
		if err != nil {
			log.Warn().Err(err).Str("url", ref.URL).Msg("text extraction failed")
			stats.Failed++
			continue
		}
		rec := record.Record{SourceURL: ref.URL, FinalURL: res.FinalURL, Body: text}
		if err := rec.WriteFile(dest); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("write failed")
			stats.Failed++
			continue
		}
		log.Info().Str("file", name).Int("chars", len(text)).Msg("saved")
		stats.Downloaded++
	}

	invPath := filepath.Join(s.OutDir, "_pdf_inventory.txt")
	if err := dataset.WriteInventory(invPath, stats.PDFLinks); err != nil {
		return stats, fmt.Errorf("write inventory: %w", err)
	}
	return stats, nil
}
