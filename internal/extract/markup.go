package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/hyperifyio/paperdigest/internal/fetch"
)

// boilerplateSelector matches non-content containers stripped before text
// extraction.
const boilerplateSelector = "script, style, noscript, nav, footer, header, aside"

// ParagraphExtractor pulls text from paragraph-level elements only, discarding
// empty paragraphs, after removing boilerplate containers. When a page has no
// paragraph elements at all it falls back to the whole document text as a
// single block.
type ParagraphExtractor struct{}

func (ParagraphExtractor) Extract(doc fetch.SourceDocument) (string, error) {
	node, err := html.Parse(bytes.NewReader(doc.Body))
	if err != nil {
		return "", &ExtractionError{Format: "markup", Err: err}
	}
	gq := goquery.NewDocumentFromNode(node)
	gq.Find(boilerplateSelector).Remove()

	var parts []string
	gq.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		return gq.Text(), nil
	}
	return strings.Join(parts, "\n\n"), nil
}

// ReadabilityExtractor is an alternative markup tactic that runs the page
// through a readability pass instead of raw paragraph collection. Useful for
// article pages whose body text lives outside <p> elements.
type ReadabilityExtractor struct{}

func (ReadabilityExtractor) Extract(doc fetch.SourceDocument) (string, error) {
	pageURL, _ := url.Parse(doc.Locator)
	article, err := readability.FromReader(bytes.NewReader(doc.Body), pageURL)
	if err != nil {
		return "", &ExtractionError{Format: "markup", Err: err}
	}
	return article.TextContent, nil
}
