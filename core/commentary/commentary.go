// Package commentary renders commentary entries stored either as RTF or as
// light HTML into plain text.
//
// The storage format is not recorded in commentary databases, so the body is
// sniffed once when a row is read and carried as a Body from then on.
package commentary

import (
	"html"
	"regexp"
	"strings"

	"github.com/FocuswithJustin/OpenWord/core/rtf"
)

// Kind is the storage format of a commentary body.
type Kind int

const (
	// KindHTML is light HTML: <br> line breaks, a few inline tags, entities.
	KindHTML Kind = iota
	// KindRTF is an RTF fragment or document.
	KindRTF
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRTF:
		return "rtf"
	case KindHTML:
		return "html"
	default:
		return "unknown"
	}
}

// Body is a commentary text tagged with its storage format.
type Body struct {
	kind Kind
	raw  string
}

// Classify decides the storage format of a commentary text. Text whose first
// non-space character is '{' or '\' is RTF; everything else is HTML.
func Classify(text string) Body {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, `\`) {
		return Body{kind: KindRTF, raw: text}
	}
	return Body{kind: KindHTML, raw: text}
}

// NewBody tags text with a known kind without sniffing it.
func NewBody(kind Kind, text string) Body {
	return Body{kind: kind, raw: text}
}

// Kind returns the storage format.
func (b Body) Kind() Kind { return b.kind }

// Raw returns the stored text.
func (b Body) Raw() string { return b.raw }

// Text renders the body to plain text.
func (b Body) Text() string {
	if b.kind == KindRTF {
		return rtf.Decode(b.raw)
	}
	return StripHTML(b.raw)
}

// Render classifies and renders a commentary text in one step.
func Render(text string) string {
	return Classify(text).Text()
}

var (
	lineBreaks = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTags   = regexp.MustCompile(`<[^>]*>`)
)

// StripHTML converts light HTML to plain text: every <br> variant becomes a
// newline, remaining tags are removed, entities are decoded and the result is
// trimmed. Lexicon definitions use the same markup.
func StripHTML(text string) string {
	text = lineBreaks.ReplaceAllString(text, "\n")
	text = htmlTags.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	return strings.TrimSpace(text)
}

// Item is one commentary entry for a verse range, tagged with the display
// name of the source it came from.
type Item struct {
	Source     string
	Chapter    int
	VerseStart int
	VerseEnd   int
	Body       Body
}

// IsRange reports whether the entry covers more than one verse.
func (i Item) IsRange() bool {
	return i.VerseEnd > i.VerseStart
}
