package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Origin identifies where a document's content came from.
type Origin string

const (
	OriginURL     Origin = "url"
	OriginRawText Origin = "raw_text"
)

// RawTextLocator is the locator sentinel for pasted/piped text, which has no URL.
const RawTextLocator = "raw_text"

// Kind classifies a fetched resource for extraction-strategy dispatch.
type Kind int

const (
	KindMarkup Kind = iota
	KindPDF
)

func (k Kind) String() string {
	if k == KindPDF {
		return "pdf"
	}
	return "markup"
}

// SourceDocument carries the raw fetched (or pasted) content into extraction.
// It is built once and discarded after the extractor has consumed it.
type SourceDocument struct {
	Origin      Origin
	Locator     string
	Kind        Kind
	Body        []byte
	ContentType string
}

// RawText wraps pasted text as a SourceDocument so the rest of the pipeline
// does not care whether a fetch happened.
func RawText(text string) SourceDocument {
	return SourceDocument{
		Origin:  OriginRawText,
		Locator: RawTextLocator,
		Kind:    KindMarkup,
		Body:    []byte(text),
	}
}

// FetchError reports a failed content fetch, preserving the original cause.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// DefaultUserAgent mimics a browser; several paper hosts reject obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DefaultTimeout bounds the single outbound request.
const DefaultTimeout = 30 * time.Second

// Client issues a single bounded GET per document. There is no retry and no
// cache: a failure is surfaced immediately and the caller decides whether to
// re-run the whole pipeline.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds the request. Zero means DefaultTimeout.
	Timeout time.Duration
}

func (c *Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Fetch retrieves the document at rawURL and classifies it as PDF or markup.
// The URL must be non-empty and http(s).
func (c *Client) Fetch(ctx context.Context, rawURL string) (SourceDocument, error) {
	if strings.TrimSpace(rawURL) == "" {
		return SourceDocument{}, &FetchError{URL: rawURL, Err: fmt.Errorf("empty URL")}
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return SourceDocument{}, &FetchError{URL: rawURL, Err: err}
	}
	if !isHTTPScheme(req.URL) {
		return SourceDocument{}, &FetchError{URL: rawURL, Err: fmt.Errorf("unsupported URL scheme %q", req.URL.Scheme)}
	}
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return SourceDocument{}, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SourceDocument{}, &FetchError{URL: rawURL, Err: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return SourceDocument{}, &FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}

	contentType := resp.Header.Get("Content-Type")
	return SourceDocument{
		Origin:      OriginURL,
		Locator:     rawURL,
		Kind:        DetectKind(rawURL, contentType),
		Body:        body,
		ContentType: contentType,
	}, nil
}

// DetectKind classifies a resource as PDF or markup. The declared Content-Type
// is authoritative when present; the extension is a fallback heuristic for
// servers that declare nothing useful.
func DetectKind(rawURL, contentType string) Kind {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/pdf"):
		return KindPDF
	case strings.Contains(ct, "html"), strings.Contains(ct, "xml"):
		return KindMarkup
	}
	if u, err := url.Parse(rawURL); err == nil {
		if strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
			return KindPDF
		}
	}
	return KindMarkup
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
