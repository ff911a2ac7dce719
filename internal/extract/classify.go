package extract

import "bytes"

// Kind routes raw fetched bytes to the matching extractor.
type Kind int

const (
	// KindHTML covers everything that is not a PDF. Unrecognized binary
	// payloads degrade to text extraction; they are not corrected upstream.
	KindHTML Kind = iota
	KindPDF
)

var pdfMagic = []byte("%PDF")

// DetectKind sniffs the payload. Only the PDF magic marker is recognized.
func DetectKind(data []byte) Kind {
	if bytes.HasPrefix(data, pdfMagic) {
		return KindPDF
	}
	return KindHTML
}
