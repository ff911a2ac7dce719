// Package substance filters extracted bodies line by line, keeping headings,
// code, and sentence-like prose while dropping navigation and boilerplate.
// The rules are deliberately lossy heuristics; there is no oracle beyond
// spot-checking the corpus.
package substance

import (
	"regexp"
	"strings"
)

// Options tunes one filter pass. The standard preset mirrors the first
// cleanup generation; the strict preset folds in the later, harsher rules
// instead of existing as a separate pass.
type Options struct {
	// MinLineLength drops lines shorter than this many characters.
	MinLineLength int
	// ShortNavMax: lines shorter than this that contain a denylist keyword
	// are treated as boilerplate. Longer lines merely mentioning the word
	// survive.
	ShortNavMax int
	// KeepLength keeps lines longer than this even without sentence
	// punctuation.
	KeepLength int
	// MinWords requires at least this many words for prose lines. Zero
	// disables the check.
	MinWords int
	// Denylist keywords signalling navigation/legal/social chrome.
	Denylist []string
	// HardDenylist keywords dropped at any line length (share buttons,
	// social platforms).
	HardDenylist []string
	// ExcludeBareURLs drops prose lines carrying a raw URL.
	ExcludeBareURLs bool
	// CheckSymbolRatio drops lines dominated by bracket symbols relative to
	// their word count.
	CheckSymbolRatio bool
}

// Standard is the baseline substance pass.
func Standard() Options {
	return Options{
		MinLineLength: 3,
		ShortNavMax:   30,
		KeepLength:    20,
		Denylist: []string{
			"menu", "navigation", "breadcrumb", "sidebar", "footer",
			"advertisement", "subscribe", "follow us", "contact us",
			"cookie", "privacy", "terms", "sign in", "log in",
		},
	}
}

// Strict layers the sentence-level rules on top of the standard pass.
func Strict() Options {
	o := Standard()
	o.MinWords = 3
	o.ExcludeBareURLs = true
	o.CheckSymbolRatio = true
	o.HardDenylist = []string{
		"linkedin", "reddit", "facebook", "twitter", "email",
		"subscribe", "sign in", "log in", "manage cookies",
		"privacy", "cookie", "terms of use",
	}
	return o
}

var (
	symbolOnlyRe = regexp.MustCompile(`^[\s\[\]\-\*\(\)]+$`)
	letterRe     = regexp.MustCompile(`[a-zA-Z]`)
	bracketRe    = regexp.MustCompile(`[()\[\]{}]+`)

	mdLinkRe    = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	mdImageRe   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdBoldRe    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	mdBoldAltRe = regexp.MustCompile(`__([^_]+)__`)
)

// Filter reduces a body to its substantive lines under the given options.
// Headings and code lines are always kept; everything else must look like a
// sentence or carry enough length to pass.
func Filter(body string, opts Options) string {
	var kept []string
	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if len(line) < opts.MinLineLength {
			continue
		}
		// Pure symbol runs are leftover navigation artifacts like "* [] * []".
		if symbolOnlyRe.MatchString(line) {
			continue
		}

		// Headings and code survive every other rule.
		if strings.HasPrefix(line, "#") {
			kept = append(kept, cleanupMarkdown(line))
			continue
		}
		if strings.Contains(line, "```") || strings.HasPrefix(line, "def ") || strings.HasPrefix(line, "class ") {
			kept = append(kept, line)
			continue
		}

		lower := strings.ToLower(line)
		if len(line) < opts.ShortNavMax && containsAny(lower, opts.Denylist) {
			continue
		}
		if containsAny(lower, opts.HardDenylist) {
			continue
		}

		// The strict checks gate in addition to the base keep test; a line
		// must pass both.
		if opts.MinWords > 0 && !isRealSentence(line, opts) {
			continue
		}
		if !strings.ContainsAny(line, ".!?#`") && len(line) <= opts.KeepLength {
			continue
		}

		kept = append(kept, cleanupMarkdown(line))
	}
	return strings.Join(kept, "\n")
}

// isRealSentence applies the strict pass's prose checks.
func isRealSentence(line string, opts Options) bool {
	if !letterRe.MatchString(line) {
		return false
	}
	words := strings.Fields(line)
	if len(words) < opts.MinWords {
		return false
	}
	if opts.ExcludeBareURLs && strings.Contains(line, "http") && strings.Contains(line, "://") {
		return false
	}
	if opts.CheckSymbolRatio {
		symbols := len(bracketRe.FindAllString(line, -1))
		if symbols > len(words)/2 {
			return false
		}
	}
	return true
}

// cleanupMarkdown strips residual markup from a kept line: links become their
// text, images vanish, emphasis unwraps.
func cleanupMarkdown(line string) string {
	line = mdImageRe.ReplaceAllString(line, "")
	line = mdLinkRe.ReplaceAllString(line, "$1")
	line = mdBoldRe.ReplaceAllString(line, "$1")
	line = mdBoldAltRe.ReplaceAllString(line, "$1")
	return strings.TrimSpace(line)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
