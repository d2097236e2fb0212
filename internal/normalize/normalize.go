// Package normalize prepares extracted text for the summarization prompt:
// whitespace collapsing, a hard length cap with an explicit truncation
// marker, and a minimum-length validity gate.
package normalize

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxChars caps prompt size. The front matter of a paper is enough for
// a structured summary; anything past this adds token cost without signal.
const DefaultMaxChars = 10000

// TruncationMarker is appended verbatim when text is cut at the cap, so
// downstream consumers can tell the content is lossy.
const TruncationMarker = "... [truncated]"

// MinChars is the validity gate. Shorter input must never reach the model;
// it would waste a call on content that cannot be summarized.
const MinChars = 100

// Text is normalized content ready for the structured extractor. Length
// counts characters, not bytes.
type Text struct {
	Content   string
	Length    int
	Truncated bool
}

// InsufficientContentError means the normalized text is empty or below the
// minimum usable length.
type InsufficientContentError struct {
	Length int
}

func (e *InsufficientContentError) Error() string {
	return fmt.Sprintf("extracted text too short (%d chars, need %d): the content may be inaccessible", e.Length, MinChars)
}

// Clean collapses whitespace runs to single spaces, trims, truncates at
// maxChars characters (appending the truncation marker), and applies the
// minimum-length gate to the final text. maxChars <= 0 means DefaultMaxChars.
// Cleaning already-clean text under the cap returns it unchanged.
func Clean(s string, maxChars int) (Text, error) {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	collapsed := strings.Join(strings.Fields(norm.NFC.String(s)), " ")

	truncated := false
	if utf8.RuneCountInString(collapsed) > maxChars {
		runes := []rune(collapsed)
		collapsed = string(runes[:maxChars]) + TruncationMarker
		truncated = true
	}

	length := utf8.RuneCountInString(collapsed)
	if length < MinChars {
		return Text{}, &InsufficientContentError{Length: length}
	}

	return Text{Content: collapsed, Length: length, Truncated: truncated}, nil
}
