// Package export is the document path of the record sink: it renders a
// validated summary into a sectioned reading note and writes it under a
// sanitized, timestamped filename so repeated runs never collide.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperifyio/paperdigest/internal/digest"
	"github.com/hyperifyio/paperdigest/internal/fetch"
)

// ExportError reports a failed note render or write.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string { return fmt.Sprintf("export %s: %v", e.Path, e.Err) }
func (e *ExportError) Unwrap() error { return e.Err }

// Writer renders reading notes into a directory.
type Writer struct {
	Dir string
	// PDF additionally renders a PDF next to the Markdown note.
	PDF bool
	// now is stubbed in tests.
	now func() time.Time
}

func (w *Writer) timeNow() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}

// Write renders the summary as a Markdown note and returns the path of the
// written file. With PDF enabled, a .pdf twin is written alongside it.
func (w *Writer) Write(s digest.Summary, origin fetch.Origin, locator string) (string, error) {
	now := w.timeNow()
	name := Filename(s.Title(), now)
	path := filepath.Join(w.Dir, name+".md")

	body := Render(s, origin, locator, now)
	if w.Dir != "" {
		if err := os.MkdirAll(w.Dir, 0o755); err != nil {
			return "", &ExportError{Path: path, Err: err}
		}
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", &ExportError{Path: path, Err: err}
	}

	if w.PDF {
		pdfPath := filepath.Join(w.Dir, name+".pdf")
		if err := writeNotePDF(body, pdfPath); err != nil {
			return "", &ExportError{Path: pdfPath, Err: err}
		}
	}
	return path, nil
}

// Render builds the sectioned note: title heading, a metadata block with
// source provenance and generation time, then one heading+body pair per
// field in the variant's declared order, with bullets for list fields.
func Render(s digest.Summary, origin fetch.Origin, locator string, now time.Time) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(s.Title())
	b.WriteString("\n\n## Document Information\n\n")
	b.WriteString("**Date:** ")
	b.WriteString(now.Format("2006-01-02 15:04:05"))
	b.WriteString("\n**Source Type:** ")
	b.WriteString(string(origin))
	if origin == fetch.OriginURL {
		b.WriteString("\n**Source URL:** ")
		b.WriteString(locator)
	}
	b.WriteString("\n")

	for _, f := range s.Variant.Fields {
		if f.Key == "title" {
			continue
		}
		b.WriteString("\n## ")
		b.WriteString(f.Heading)
		b.WriteString("\n\n")
		if f.List {
			for _, item := range s.List[f.Key] {
				b.WriteString("- ")
				b.WriteString(item)
				b.WriteString("\n")
			}
		} else {
			b.WriteString(s.Scalar[f.Key])
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Filename derives a collision-free base name from the title and a
// timestamp: only alphanumerics, space, dash and underscore survive from the
// first 50 characters of the title, spaces become underscores.
func Filename(title string, now time.Time) string {
	return fmt.Sprintf("paper_digest_%s_%s", SanitizeTitle(title), now.Format("20060102_150405"))
}

// SanitizeTitle reduces a title to a filesystem-safe fragment.
func SanitizeTitle(title string) string {
	runes := []rune(title)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	var b strings.Builder
	for _, r := range runes {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}
