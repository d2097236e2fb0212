// Package extract converts fetched documents into plain, unnormalized text.
// Two format strategies exist behind one capability: paginated PDF extraction
// bounded to the front of the document, and paragraph-oriented markup
// extraction with boilerplate removal.
package extract

import (
	"fmt"

	"github.com/hyperifyio/paperdigest/internal/fetch"
)

// ExtractionError wraps a parse failure (corrupt PDF, broken markup) with the
// underlying cause preserved.
type ExtractionError struct {
	Format string
	Err    error
}

func (e *ExtractionError) Error() string { return fmt.Sprintf("extract %s: %v", e.Format, e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor converts a fetched document into plain text. Implementations can
// swap markup tactics without changing callers.
type Extractor interface {
	Extract(doc fetch.SourceDocument) (string, error)
}

// DocumentExtractor dispatches on the document kind: PDFs go through the
// paginated reader, everything else through the configured markup strategy.
type DocumentExtractor struct {
	// MaxPDFPages bounds how many pages of a PDF are read. Zero means
	// DefaultMaxPDFPages. Papers front-load abstract and intro; references
	// and appendices add prompt cost without value.
	MaxPDFPages int
	// Markup overrides the markup strategy. Nil means ParagraphExtractor.
	Markup Extractor
}

func (d *DocumentExtractor) Extract(doc fetch.SourceDocument) (string, error) {
	if doc.Kind == fetch.KindPDF {
		return FromPDF(doc.Body, d.MaxPDFPages)
	}
	if doc.Origin == fetch.OriginRawText {
		return string(doc.Body), nil
	}
	m := d.Markup
	if m == nil {
		m = ParagraphExtractor{}
	}
	return m.Extract(doc)
}
