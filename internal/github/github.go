// Package github repairs corpus records scraped from github.com pages. The
// rendered web UI buries file contents under site chrome; re-fetching the
// raw.githubusercontent.com form recovers the actual code or README.
package github

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/refsweep/refsweep/internal/fetch"
	"github.com/refsweep/refsweep/internal/record"
)

var (
	blobRe = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/blob/([^/]+)/(.+)$`)
	treeRe = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/tree/([^/]+)/(.+)$`)
	repoRe = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/?$`)
)

// RawURL converts a GitHub web URL to its raw.githubusercontent.com
// equivalent. Directory and bare-repo URLs map to their README. Returns
// false when the URL has no raw form.
func RawURL(u string) (string, bool) {
	if strings.Contains(u, "raw.githubusercontent.com") {
		return u, true
	}
	if !strings.Contains(u, "github.com") {
		return "", false
	}
	if m := blobRe.FindStringSubmatch(u); m != nil {
		return "https://raw.githubusercontent.com/" + m[1] + "/" + m[2] + "/" + m[3] + "/" + m[4], true
	}
	if m := treeRe.FindStringSubmatch(u); m != nil {
		return "https://raw.githubusercontent.com/" + m[1] + "/" + m[2] + "/" + m[3] + "/" + m[4] + "/README.md", true
	}
	if m := repoRe.FindStringSubmatch(u); m != nil {
		return "https://raw.githubusercontent.com/" + m[1] + "/" + m[2] + "/master/README.md", true
	}
	return "", false
}

// GitHub UI fragments that surround actual page content. Each pattern spans
// from a known chrome opener to its closing phrase.
var uiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)# Search code, repositories,.*?Cancel Create saved search`),
	regexp.MustCompile(`(?s)You signed (in|out).*?refresh your session\.`),
	regexp.MustCompile(`(?s)You switched accounts.*?refresh your session\.`),
	regexp.MustCompile(`(?s)Dismiss alert.*?You must be signed in`),
	regexp.MustCompile(`(?s)## Labels.*?### Development`),
	regexp.MustCompile(`(?s)## Metadata.*?### Development`),
	regexp.MustCompile(`(?s)## Folders and files.*?## History`),
	regexp.MustCompile(`(?s)## Latest commit.*?## Repository`),
	regexp.MustCompile(`(?s)No branches or pull requests.*`),
	regexp.MustCompile(`(?s)### Resources.*?### License.*?### Uh oh`),
	regexp.MustCompile(`(?s)### License.*?### Uh oh`),
	regexp.MustCompile(`(?s)### Uh oh!.*?### Stars`),
	regexp.MustCompile(`(?s)### Stars.*?## Languages`),
	regexp.MustCompile(`(?s)\(C\) \d{4} GitHub, Inc\..*`),
	regexp.MustCompile(`(?s)(You can't perform that action|You must be signed in|Do not share).*`),
}

var (
	emptyLinkRe   = regexp.MustCompile(`\[\]\(\)`)
	loadingRe     = regexp.MustCompile(`Loading\n+`)
	excessBlankRe = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// StripUI removes GitHub web chrome from an already-extracted body, leaving
// the issue/discussion/README content.
func StripUI(body string) string {
	for _, p := range uiPatterns {
		body = p.ReplaceAllString(body, "")
	}
	body = emptyLinkRe.ReplaceAllString(body, "")
	body = loadingRe.ReplaceAllString(body, "")
	body = excessBlankRe.ReplaceAllString(body, "\n\n")
	return strings.TrimSpace(body)
}

// LooksLikeUI reports whether a record body is GitHub chrome rather than
// content: either the search banner is present or the body is too short to
// be a real file.
func LooksLikeUI(body string) bool {
	return strings.Contains(body, "Search code") || len(strings.TrimSpace(body)) <= 1000
}

// Refetcher re-downloads GitHub records through their raw URLs.
type Refetcher struct {
	Client *fetch.Client
	// Delay is the courtesy pause between successive fetches.
	Delay time.Duration
	// MinContent is the smallest raw payload considered a successful fix.
	MinContent int
}

func (r *Refetcher) minContent() int {
	if r.MinContent > 0 {
		return r.MinContent
	}
	return 100
}

// FixRecord attempts to replace a GitHub UI record body with raw content.
// It reports whether the record was changed.
func (r *Refetcher) FixRecord(ctx context.Context, rec *record.Record) (bool, error) {
	target := rec.FinalURL
	if target == "" {
		target = rec.SourceURL
	}
	if !strings.Contains(target, "github.com") {
		return false, nil
	}
	if !LooksLikeUI(rec.Body) {
		return false, nil
	}
	rawURL, ok := RawURL(target)
	if !ok {
		return false, nil
	}
	return r.fixVia(ctx, rec, rawURL)
}

func (r *Refetcher) fixVia(ctx context.Context, rec *record.Record, rawURL string) (bool, error) {
	body, err := r.fetchRaw(ctx, rawURL)
	if err != nil {
		return false, err
	}
	if len(body) < r.minContent() {
		return false, nil
	}
	rec.Body = strings.TrimSpace(body)
	return true, nil
}

func (r *Refetcher) fetchRaw(ctx context.Context, url string) (string, error) {
	client := *r.Client
	client.Accept = "text/plain,*/*"
	res, err := client.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(res.Body), nil
}

// FixFiles runs FixRecord over the named files in dir, pausing Delay between
// fetches. Failures are logged per file and never abort the batch.
func (r *Refetcher) FixFiles(ctx context.Context, dir string, files []string) (fixed, failed int) {
	for i, name := range files {
		if i > 0 && r.Delay > 0 {
			time.Sleep(r.Delay)
		}
		path := filepath.Join(dir, name)
		rec, err := record.Load(path)
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("load failed")
			failed++
			continue
		}
		changed, err := r.FixRecord(ctx, &rec)
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("raw fetch failed")
			failed++
			continue
		}
		if !changed {
			continue
		}
		if err := rec.WriteFile(path); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("write failed")
			failed++
			continue
		}
		log.Info().Str("file", name).Int("bytes", len(rec.Body)).Msg("fixed from raw content")
		fixed++
	}
	return fixed, failed
}
