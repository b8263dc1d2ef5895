// Package markup turns raw verse text into plain text plus offset-addressed
// style spans and Strong's code annotations.
//
// Verse text in MyBible-style translations carries inline tags (<J>words of
// Jesus</J>, <i>supplied words</i>, <pb/> page breaks) and Strong's codes in
// braces directly after the word they describe:
//
//	In the beginning{H7225} God{H430} created{H1254}
//
// Annotate strips both and records where they applied in the output text.
// Offsets are rune offsets into AnnotatedText.Text, so a presentation layer can
// map a tap position straight to an annotation.
package markup

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Style is a presentation attribute applied to a span of output text.
type Style string

const (
	// StyleAlternateColor marks text rendered in an alternate color (<J>).
	StyleAlternateColor Style = "alternate-color"
	// StyleEmphasis marks italic text (<i>).
	StyleEmphasis Style = "emphasis"
)

// StyleSpan applies a Style to the half-open rune range [Start, End).
// Style spans may overlap.
type StyleSpan struct {
	Start int   `json:"start"`
	End   int   `json:"end"`
	Style Style `json:"style"`
}

// Annotation attaches a raw Strong's code to the half-open rune range
// [Start, End) of the output text. Annotations never overlap.
type Annotation struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Code  string `json:"code"`
}

// Contains reports whether a rune offset falls inside the annotation.
func (a Annotation) Contains(offset int) bool {
	return offset >= a.Start && offset < a.End
}

// AnnotatedText is the result of Annotate.
type AnnotatedText struct {
	Text        string       `json:"text"`
	Styles      []StyleSpan  `json:"styles,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`

	runes []rune
}

// Len returns the length of Text in runes.
func (t *AnnotatedText) Len() int {
	return len(t.textRunes())
}

// Slice returns the output text in the rune range [start, end), clamped to the
// text bounds.
func (t *AnnotatedText) Slice(start, end int) string {
	r := t.textRunes()
	if start < 0 {
		start = 0
	}
	if end > len(r) {
		end = len(r)
	}
	if start >= end {
		return ""
	}
	return string(r[start:end])
}

// Word returns the output text covered by an annotation.
func (t *AnnotatedText) Word(a Annotation) string {
	return t.Slice(a.Start, a.End)
}

// AnnotationAt returns the annotation whose range contains the rune offset.
func (t *AnnotatedText) AnnotationAt(offset int) (Annotation, bool) {
	i := sort.Search(len(t.Annotations), func(i int) bool {
		return t.Annotations[i].End > offset
	})
	if i < len(t.Annotations) && t.Annotations[i].Contains(offset) {
		return t.Annotations[i], true
	}
	return Annotation{}, false
}

// StylesAt returns the styles applied at a rune offset, outermost first.
func (t *AnnotatedText) StylesAt(offset int) []Style {
	var styles []Style
	for _, s := range t.Styles {
		if offset >= s.Start && offset < s.End {
			styles = append(styles, s.Style)
		}
	}
	return styles
}

// textRunes does not cache, so a decoded AnnotatedText stays safe for
// concurrent readers.
func (t *AnnotatedText) textRunes() []rune {
	if t.runes != nil {
		return t.runes
	}
	return []rune(t.Text)
}

var (
	pageBreaks = regexp.MustCompile(`^(\s*<pb/>)+`)
	tokens     = regexp.MustCompile(`(<[^>]+>)|(\{[^}]+\})`)
)

// tagStyles maps recognized tags to the style they open or close.
var tagStyles = map[string]struct {
	style Style
	open  bool
}{
	"<J>":  {StyleAlternateColor, true},
	"</J>": {StyleAlternateColor, false},
	"<i>":  {StyleEmphasis, true},
	"</i>": {StyleEmphasis, false},
}

// Annotate strips inline tags and Strong's code groups from raw verse text.
//
// A leading run of <pb/> markers is dropped. Recognized tags open and close
// style spans; other tags are dropped. A close tag without a matching open tag
// is ignored, and tags still open at the end are closed at the end of the text.
// A {CODE} group annotates the word immediately before it; when no word
// precedes the group (start of text, a bare verse number, trailing
// punctuation) the group is dropped. Annotate never fails.
func Annotate(raw string) *AnnotatedText {
	text := pageBreaks.ReplaceAllString(raw, "")

	a := &annotator{stack: newStyleStack()}
	last := 0
	for _, loc := range tokens.FindAllStringIndex(text, -1) {
		a.write(text[last:loc[0]])
		token := text[loc[0]:loc[1]]
		if token[0] == '{' {
			a.annotate(token[1 : len(token)-1])
		} else {
			a.tag(token)
		}
		last = loc[1]
	}
	a.write(text[last:])

	return a.finish()
}

// StripTags returns raw verse text without tags and code groups, the plain
// text used for copying and for quoting a verse elsewhere.
func StripTags(raw string) string {
	return tokens.ReplaceAllString(raw, "")
}

type annotator struct {
	out         []rune
	stack       *styleStack
	styles      []StyleSpan
	annotations []Annotation
}

func (a *annotator) write(s string) {
	if s == "" {
		return
	}
	a.out = append(a.out, []rune(s)...)
}

func (a *annotator) tag(tag string) {
	ts, ok := tagStyles[tag]
	if !ok {
		return
	}
	if ts.open {
		a.stack.Push(ts.style, len(a.out))
		return
	}
	if start, ok := a.stack.Pop(ts.style); ok {
		a.addStyle(start, len(a.out), ts.style)
	}
}

func (a *annotator) addStyle(start, end int, style Style) {
	if start >= end {
		return
	}
	a.styles = append(a.styles, StyleSpan{Start: start, End: end, Style: style})
}

func (a *annotator) annotate(code string) {
	start, end := precedingWord(a.out)
	if start >= end || !hasLetter(a.out[start:end]) {
		return
	}

	if n := len(a.annotations); n > 0 {
		prev := &a.annotations[n-1]
		if end <= prev.End {
			// Several groups after one word form a compound code.
			prev.Code += code
			return
		}
		if start < prev.End {
			start = prev.End
		}
	}
	a.annotations = append(a.annotations, Annotation{Start: start, End: end, Code: code})
}

func (a *annotator) finish() *AnnotatedText {
	end := len(a.out)
	for {
		open, ok := a.stack.PopAny()
		if !ok {
			break
		}
		a.addStyle(open.start, end, open.style)
	}
	sort.SliceStable(a.styles, func(i, j int) bool {
		return a.styles[i].Start < a.styles[j].Start
	})

	return &AnnotatedText{
		Text:        string(a.out),
		Styles:      a.styles,
		Annotations: a.annotations,
		runes:       a.out,
	}
}

// precedingWord finds the word that ends at the end of out, skipping trailing
// whitespace. The word stops at whitespace or word punctuation.
func precedingWord(out []rune) (start, end int) {
	i := len(out) - 1
	for i >= 0 && unicode.IsSpace(out[i]) {
		i--
	}
	end = i + 1
	for i >= 0 && !unicode.IsSpace(out[i]) && !isWordPunct(out[i]) {
		i--
	}
	return i + 1, end
}

func isWordPunct(r rune) bool {
	return strings.ContainsRune(",.;:!?", r)
}

func hasLetter(rs []rune) bool {
	for _, r := range rs {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
