package extract

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// boilerplateSelector matches containers removed wholesale before text
// flattening in the fallback path.
const boilerplateSelector = "script, style, meta, noscript, iframe, nav, footer, header, aside, .sidebar, .nav"

var blockCloseTags = []string{
	"</p>", "</div>", "</li>", "</td>", "</tr>",
	"</h1>", "</h2>", "</h3>", "</h4>", "</h5>", "</h6>",
}

// ExtractReadable runs readability main-content extraction over raw HTML and
// flattens the article to plain text. When readability cannot identify an
// article it falls back to stripping boilerplate containers and flattening
// whatever remains.
func ExtractReadable(rawHTML string, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = &url.URL{}
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		text, ferr := flattenHTML(article.Content)
		if ferr == nil && text != "" {
			return text, nil
		}
	}
	return stripBoilerplate(rawHTML)
}

// flattenHTML converts an HTML fragment to text, keeping block boundaries
// as line breaks so the substance filter still sees one unit per line.
func flattenHTML(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(addBlockBreaks(fragment)))
	if err != nil {
		return "", err
	}
	return normalizeLines(doc.Text()), nil
}

// stripBoilerplate removes script/style/navigation containers from the full
// page and flattens the remainder.
func stripBoilerplate(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(addBlockBreaks(rawHTML)))
	if err != nil {
		return "", err
	}
	doc.Find(boilerplateSelector).Remove()
	text := normalizeLines(doc.Text())
	if text == "" {
		return "", errors.New("no text content")
	}
	return text, nil
}

// addBlockBreaks inserts newlines at block element boundaries; without this
// goquery's Text() runs adjacent blocks together into one line.
func addBlockBreaks(rawHTML string) string {
	replacements := make([]string, 0, len(blockCloseTags)*2)
	for _, tag := range blockCloseTags {
		replacements = append(replacements, tag, tag+"\n")
	}
	return strings.NewReplacer(replacements...).Replace(rawHTML)
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	prevEmpty := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if !prevEmpty && len(out) > 0 {
				out = append(out, "")
				prevEmpty = true
			}
			continue
		}
		out = append(out, spaceRunRe.ReplaceAllString(trimmed, " "))
		prevEmpty = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
