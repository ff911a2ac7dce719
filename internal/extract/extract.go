// Package extract converts raw fetched bytes into readable text. The HTML
// extractor is a streaming tag walk that keeps headings, paragraphs, list
// items, and code blocks while suppressing script/style and containers whose
// class names mark them as navigation chrome.
package extract

import (
	"bytes"
	stdhtml "html"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
	// MainContent reports whether a <main> or <article> container was seen.
	// Tracked for diagnostics only; extraction is not restricted to it.
	MainContent bool
}

// Tags whose entire content is discarded.
var suppressTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"nav":      true,
	"footer":   true,
	"aside":    true,
}

// Class-name fragments marking containers whose text is navigation chrome.
var classDenylist = []string{
	"nav", "navbar", "menu", "sidebar", "footer", "header",
	"advertisement", "ad-", "breadcrumb", "pagination",
	"comments", "widget", "related",
}

var headingLevel = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

type suppressReason int

const (
	suppressByTag suppressReason = iota
	suppressByClass
)

// scope is one active suppression region. depth counts same-named nested
// elements so the scope closes on its own matching end tag.
type scope struct {
	tag    string
	reason suppressReason
	depth  int
}

type extractor struct {
	out       strings.Builder
	title     strings.Builder
	scopes    []scope
	inTitle   bool
	preDepth  int
	mainDepth int
	sawMain   bool
}

// maxTokenSize bounds a single token. Scraped pages sometimes carry inline
// data URIs of unbounded size; past this the tokenizer gives up and the
// caller falls back to a regex strip.
const maxTokenSize = 1 << 20

// FromHTML extracts readable text with structural markers from raw HTML.
// It never fails on malformed markup; tokenization errors other than EOF
// are reported so callers can fall back to a regex strip.
func FromHTML(input []byte) (Document, error) {
	e := &extractor{}
	z := html.NewTokenizer(bytes.NewReader(input))
	z.SetMaxBuf(maxTokenSize)
	var tokErr error
loop:
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				tokErr = err
			}
			break loop
		case html.TextToken:
			e.text(string(z.Text()))
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			e.start(string(name), collectAttrs(z, hasAttr))
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			e.selfClosing(string(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			e.end(string(name))
		}
	}
	doc := Document{
		Title:       strings.TrimSpace(e.title.String()),
		Text:        normalizeWhitespace(e.out.String()),
		MainContent: e.sawMain,
	}
	return doc, tokErr
}

func collectAttrs(z *html.Tokenizer, hasAttr bool) map[string]string {
	if !hasAttr {
		return nil
	}
	attrs := make(map[string]string, 4)
	for {
		key, val, more := z.TagAttr()
		attrs[string(key)] = string(val)
		if !more {
			break
		}
	}
	return attrs
}

func (e *extractor) suppressed() bool { return len(e.scopes) > 0 }

func (e *extractor) start(tag string, attrs map[string]string) {
	if e.suppressed() {
		// Track same-named nesting so the scope pops on its own end tag.
		for i := len(e.scopes) - 1; i >= 0; i-- {
			if e.scopes[i].tag == tag {
				e.scopes[i].depth++
				break
			}
		}
		return
	}

	if suppressTags[tag] {
		e.scopes = append(e.scopes, scope{tag: tag, reason: suppressByTag, depth: 1})
		return
	}
	if cls := strings.ToLower(attrs["class"]); cls != "" && containsAny(cls, classDenylist) {
		e.scopes = append(e.scopes, scope{tag: tag, reason: suppressByClass, depth: 1})
		return
	}

	switch {
	case tag == "title":
		e.inTitle = true
	case headingLevel[tag]:
		e.out.WriteString("\n### " + strings.ToUpper(tag) + "\n")
	case tag == "pre":
		e.out.WriteString("\n```\n")
		e.preDepth++
	case tag == "code":
		e.out.WriteString("`")
	case tag == "main" || tag == "article":
		e.mainDepth++
		e.sawMain = true
	case tag == "br" || tag == "hr":
		e.out.WriteString("\n")
	}
}

func (e *extractor) selfClosing(tag string) {
	if e.suppressed() {
		return
	}
	if tag == "br" || tag == "hr" {
		e.out.WriteString("\n")
	}
}

func (e *extractor) end(tag string) {
	if e.suppressed() {
		for i := len(e.scopes) - 1; i >= 0; i-- {
			if e.scopes[i].tag == tag {
				e.scopes[i].depth--
				if e.scopes[i].depth <= 0 {
					// Closing an outer scope closes anything nested in it.
					e.scopes = e.scopes[:i]
				}
				return
			}
		}
		return
	}

	switch {
	case tag == "title":
		e.inTitle = false
	case headingLevel[tag]:
		e.out.WriteString("\n")
	case tag == "pre":
		e.out.WriteString("\n```\n")
		if e.preDepth > 0 {
			e.preDepth--
		}
	case tag == "code":
		e.out.WriteString("`")
	case tag == "p" || tag == "li" || tag == "tr" || tag == "td":
		e.out.WriteString("\n")
	case tag == "main" || tag == "article":
		if e.mainDepth > 0 {
			e.mainDepth--
		}
	}
}

func (e *extractor) text(data string) {
	if e.suppressed() {
		return
	}
	if e.inTitle {
		e.title.WriteString(data)
		return
	}
	trimmed := strings.TrimSpace(stdhtml.UnescapeString(data))
	// Fragments under 3 characters are noise between tags.
	if len(trimmed) <= 2 {
		return
	}
	e.out.WriteString(trimmed + " ")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

var (
	spaceRunRe = regexp.MustCompile(` +`)
	blankRunRe = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

func normalizeWhitespace(s string) string {
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	mdLinkRe     = regexp.MustCompile(`\[.*?\]\(.*?\)`)
	newlineRunRe = regexp.MustCompile(`\n+`)
)

// StripTags is the crude fallback used when tokenization fails: drop tags
// and link syntax wholesale and squeeze newline runs.
func StripTags(input string) string {
	s := tagRe.ReplaceAllString(input, "")
	s = mdLinkRe.ReplaceAllString(s, "")
	s = newlineRunRe.ReplaceAllString(s, "\n")
	return strings.TrimSpace(stdhtml.UnescapeString(s))
}
