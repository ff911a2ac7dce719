// Package record reads and writes the on-disk corpus file format: an
// optional two-line URL header, a separator line of '=' characters, a
// blank line, then the free-text body. Every cleanup pass re-parses this
// header and must reproduce it verbatim when rewriting.
package record

import (
	"os"
	"strings"
	"unicode"
)

const (
	sourcePrefix = "Source URL:"
	finalPrefix  = "Final URL:"

	// A line containing at least this many consecutive '=' is the separator.
	separatorMark = "=========="

	separatorWidth = 80

	// Header lines appear within the first few lines of a file.
	headerScanLimit = 10
)

// Record is one persisted corpus file. SourceURL is the URL originally
// requested; FinalURL is the URL after redirects. Either may be empty for
// files that never carried a header.
type Record struct {
	SourceURL string
	FinalURL  string
	Body      string
}

// Parse splits file content into header metadata and body. Files without a
// recognizable separator parse as body-only records.
func Parse(content string) Record {
	lines := strings.Split(content, "\n")
	var rec Record

	limit := headerScanLimit
	if len(lines) < limit {
		limit = len(lines)
	}
	bodyStart := -1
	for i := 0; i < limit; i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, sourcePrefix):
			rec.SourceURL = strings.TrimSpace(strings.TrimPrefix(line, sourcePrefix))
		case strings.HasPrefix(line, finalPrefix):
			rec.FinalURL = strings.TrimSpace(strings.TrimPrefix(line, finalPrefix))
		case strings.Contains(line, separatorMark):
			bodyStart = i + 1
		}
		if bodyStart >= 0 {
			break
		}
	}

	if bodyStart < 0 {
		rec.SourceURL = ""
		rec.FinalURL = ""
		rec.Body = content
		return rec
	}
	// The encoder emits one blank line after the separator; drop it so
	// parse/encode round-trips cleanly.
	if bodyStart < len(lines) && strings.TrimSpace(lines[bodyStart]) == "" {
		bodyStart++
	}
	if bodyStart < len(lines) {
		rec.Body = strings.Join(lines[bodyStart:], "\n")
	}
	return rec
}

// HasHeader reports whether the record carries any URL metadata.
func (r Record) HasHeader() bool {
	return r.SourceURL != "" || r.FinalURL != ""
}

// Encode renders the record in the persisted format. Records without URL
// metadata are rendered as bare body text.
func (r Record) Encode() string {
	if !r.HasHeader() {
		return r.Body
	}
	var b strings.Builder
	if r.SourceURL != "" {
		b.WriteString(sourcePrefix + " " + r.SourceURL + "\n")
	}
	if r.FinalURL != "" {
		b.WriteString(finalPrefix + " " + r.FinalURL + "\n")
	}
	b.WriteString(strings.Repeat("=", separatorWidth))
	b.WriteString("\n\n")
	b.WriteString(r.Body)
	return b.String()
}

// Load reads and parses a record file.
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	return Parse(string(data)), nil
}

// WriteFile persists the record, overwriting any existing file.
func (r Record) WriteFile(path string) error {
	return os.WriteFile(path, []byte(r.Encode()), 0o644)
}

// VisibleLen is the length of s with all whitespace runs collapsed to a
// single space. The minimum-substance threshold is measured against this.
func VisibleLen(s string) int {
	n := 0
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				n++
				inSpace = true
			}
			continue
		}
		n++
		inSpace = false
	}
	return n
}
