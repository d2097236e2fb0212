package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxPDFPages bounds PDF extraction to the front of the paper.
const DefaultMaxPDFPages = 5

// FromPDF parses the byte stream as a paginated document and extracts text
// from at most min(maxPages, total) pages, in page order, joined with blank
// lines.
func FromPDF(b []byte, maxPages int) (string, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPDFPages
	}
	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", &ExtractionError{Format: "pdf", Err: err}
	}

	total := reader.NumPage()
	limit := PagesToRead(total, maxPages)

	parts := make([]string, 0, limit)
	for i := 1; i <= limit; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Format: "pdf", Err: fmt.Errorf("page %d: %w", i, err)}
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n"), nil
}

// PagesToRead returns how many pages of a total-page document get extracted.
func PagesToRead(total, maxPages int) int {
	if maxPages <= 0 {
		maxPages = DefaultMaxPDFPages
	}
	if total < maxPages {
		return total
	}
	return maxPages
}
