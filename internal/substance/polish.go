package substance

import (
	"regexp"
	"strings"
)

var (
	emphBoldStarRe  = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	emphBoldUndRe   = regexp.MustCompile(`__([^_]+)__`)
	emphItalStarRe  = regexp.MustCompile(`\*([^*]+)\*`)
	emphItalUndRe   = regexp.MustCompile(`_([^_]+)_`)
	inlineCodeRe    = regexp.MustCompile("`([^`]+)`")
	orphanBracketRe = regexp.MustCompile(`(?m)^\]\(`)
	strayPipeRe     = regexp.MustCompile(`(?m)^\|$`)
	strayRuleRe     = regexp.MustCompile(`(?m)^---$`)
	emptyHeadingRe  = regexp.MustCompile(`(?m)^#+\s*$`)
	multiSpaceRe    = regexp.MustCompile(` +`)
	multiBlankRe    = regexp.MustCompile(`\n\s*\n\s*\n\s*\n+`)
)

// Polish removes residual markdown artifacts and excess spacing from a body
// that has already been through substance filtering. Unlike Filter it keeps
// every line, only rewriting markup within them.
func Polish(body string) string {
	body = mdImageRe.ReplaceAllString(body, "")
	body = mdLinkRe.ReplaceAllString(body, "$1")
	body = emphBoldStarRe.ReplaceAllString(body, "$1")
	body = emphBoldUndRe.ReplaceAllString(body, "$1")
	body = emphItalStarRe.ReplaceAllString(body, "$1")
	body = emphItalUndRe.ReplaceAllString(body, "$1")
	body = inlineCodeRe.ReplaceAllString(body, "$1")

	body = orphanBracketRe.ReplaceAllString(body, "")
	body = strayPipeRe.ReplaceAllString(body, "")
	body = strayRuleRe.ReplaceAllString(body, "")
	body = emptyHeadingRe.ReplaceAllString(body, "")

	body = multiSpaceRe.ReplaceAllString(body, " ")
	body = multiBlankRe.ReplaceAllString(body, "\n\n")
	return strings.TrimSpace(body)
}

// Leading navigation/section-title lines that slip through extraction at the
// top of a page.
var navLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(Research areas|People|Microsoft|Labs|Other|Tech|Industries|Search|Global):.*$`),
	regexp.MustCompile(`^(Search|Tech|Industries|Global|Partners|Resources).*$`),
	regexp.MustCompile(`^(Home|About|Contact|Careers|Events).*$`),
}

// CleanupNav drops residual navigation pattern lines and trims blank
// padding from both ends of the body.
func CleanupNav(body string) string {
	lines := strings.Split(body, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if matchesAnyPattern(line, navLinePatterns) {
			continue
		}
		cleaned = append(cleaned, line)
	}
	for len(cleaned) > 0 && strings.TrimSpace(cleaned[0]) == "" {
		cleaned = cleaned[1:]
	}
	for len(cleaned) > 0 && strings.TrimSpace(cleaned[len(cleaned)-1]) == "" {
		cleaned = cleaned[:len(cleaned)-1]
	}
	return strings.Join(cleaned, "\n")
}

func matchesAnyPattern(line string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}
