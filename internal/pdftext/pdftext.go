// Package pdftext extracts plain text from PDF documents page by page.
// Pages that cannot be decoded are skipped so one bad page never loses the
// rest of a document.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a document opens but no page yields text,
// typically a scanned or image-only PDF.
var ErrNoText = errors.New("no extractable text")

// FromBytes converts a PDF payload to text. Each page's text is preceded by
// a "--- Page N ---" marker so downstream passes keep page provenance.
func FromBytes(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	pages := 0
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "--- Page %d ---\n%s\n\n", i, text)
		pages++
	}
	if pages == 0 {
		return "", ErrNoText
	}
	return strings.TrimSpace(b.String()), nil
}
