package export

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/paperdigest/internal/digest"
	"github.com/hyperifyio/paperdigest/internal/fetch"
)

func noteSummary() digest.Summary {
	return digest.Summary{
		Variant: digest.ReadingNote,
		Scalar: map[string]string{
			"title":             "Adoption Drivers in Cross-Border E-Commerce",
			"field_or_topic":    "Marketing",
			"research_question": "What drives adoption?",
			"methodology":       "Survey",
			"limitations":       "Single-country sample",
			"personal_takeaway": "Trust beats discounting",
		},
		List: map[string][]string{
			"key_findings": {"Trust matters", "Price is secondary"},
		},
	}
}

func TestSanitizeTitle(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Simple Title", "Simple_Title"},
		{"Trust & Risk: A Meta-Analysis (2024)", "Trust__Risk_A_Meta-Analysis_2024"},
		{strings.Repeat("A", 60), strings.Repeat("A", 50)},
		{"under_score kept", "under_score_kept"},
		{"///", ""},
	}
	for _, tc := range cases {
		if got := SanitizeTitle(tc.in); got != tc.want {
			t.Fatalf("SanitizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFilename(t *testing.T) {
	ts := time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC)
	got := Filename("A Study", ts)
	if got != "paper_digest_A_Study_20260831_143005" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestRender_SectionsInDeclaredOrder(t *testing.T) {
	ts := time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC)
	out := Render(noteSummary(), fetch.OriginURL, "https://example.com/paper.pdf", ts)

	if !strings.HasPrefix(out, "# Adoption Drivers in Cross-Border E-Commerce\n") {
		t.Fatalf("missing title heading: %q", out[:80])
	}
	if !strings.Contains(out, "**Source Type:** url") || !strings.Contains(out, "**Source URL:** https://example.com/paper.pdf") {
		t.Fatalf("metadata block incomplete:\n%s", out)
	}
	if !strings.Contains(out, "- Trust matters\n- Price is secondary\n") {
		t.Fatalf("list field not bulleted:\n%s", out)
	}

	headings := []string{"## Field or Topic", "## Research Question", "## Methodology", "## Key Findings", "## Limitations", "## Personal Takeaway"}
	last := -1
	for _, h := range headings {
		idx := strings.Index(out, h)
		if idx < 0 {
			t.Fatalf("missing heading %q", h)
		}
		if idx < last {
			t.Fatalf("heading %q out of declared order", h)
		}
		last = idx
	}
}

func TestRender_RawTextOmitsSourceURL(t *testing.T) {
	out := Render(noteSummary(), fetch.OriginRawText, fetch.RawTextLocator, time.Now())
	if strings.Contains(out, "Source URL") {
		t.Fatalf("raw text note must not claim a source URL")
	}
	if !strings.Contains(out, "**Source Type:** raw_text") {
		t.Fatalf("missing source type")
	}
}

func TestWriter_WritesMarkdownFile(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC)
	w := &Writer{Dir: dir, now: func() time.Time { return ts }}

	path, err := w.Write(noteSummary(), fetch.OriginURL, "https://example.com/p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, "paper_digest_Adoption_Drivers_in_Cross-Border_E-Commerce_20260831_143005.md") {
		t.Fatalf("unexpected path %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading note: %v", err)
	}
	if !strings.Contains(string(b), "## Key Findings") {
		t.Fatalf("note content incomplete")
	}
}

func TestWriter_PDFTwin(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC)
	w := &Writer{Dir: dir, PDF: true, now: func() time.Time { return ts }}

	path, err := w.Write(noteSummary(), fetch.OriginURL, "https://example.com/p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pdfPath := strings.TrimSuffix(path, ".md") + ".pdf"
	info, err := os.Stat(pdfPath)
	if err != nil {
		t.Fatalf("expected PDF twin: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("empty PDF written")
	}
}
