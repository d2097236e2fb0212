package export

import (
	"bufio"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// writeNotePDF renders the Markdown note as a minimal PDF: headings get a
// bold larger font, bullets keep their dash, everything else flows as
// paragraphs. Intentionally simple, not a full Markdown layout.
func writeNotePDF(markdown string, outPath string) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 11)
	doc.AddPage()

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			doc.Ln(4)
			continue
		}
		if strings.HasPrefix(s, "#") {
			i := 0
			for i < len(s) && s[i] == '#' {
				i++
			}
			text := strings.TrimSpace(s[i:])
			if text == "" {
				continue
			}
			size := 15.0
			if i >= 2 {
				size = 12.0
			}
			doc.SetFont("Helvetica", "B", size)
			doc.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
			doc.SetFont("Helvetica", "", 11)
			continue
		}
		// Bold metadata labels render as plain text in the PDF.
		s = strings.ReplaceAll(s, "**", "")
		doc.MultiCell(0, 5, s, "", "L", false)
	}
	return doc.OutputFileAndClose(outPath)
}
