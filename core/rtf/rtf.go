// Package rtf provides pure Go RTF to plain text decoding.
// Commentary and dictionary modules store entries as RTF fragments; this
// replaces an external unrtf dependency with a single-pass decoder that never
// fails on malformed input.
package rtf

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/emirpasic/gods/stacks/arraystack"
	"golang.org/x/text/encoding/charmap"
)

// DefaultSkip is the number of fallback characters skipped after a \u escape
// until a \uc word says otherwise.
const DefaultSkip = 1

// maxWordLen bounds control word names, as RTF readers do.
const maxWordLen = 32

// destinations are groups holding metadata that never reaches the output.
var destinations = map[string]bool{
	"info":       true,
	"stylesheet": true,
	"fonttbl":    true,
	"colortbl":   true,
	"header":     true,
	"headerl":    true,
	"headerr":    true,
	"headerf":    true,
	"footer":     true,
	"footerl":    true,
	"footerr":    true,
	"footerf":    true,
	"pict":       true,
	"private":    true,
	"xe":         true,
	"tc":         true,
	"txe":        true,
	"rxe":        true,

	"listtable":          true,
	"listoverridetable":  true,
	"revtbl":             true,
	"rsidtbl":            true,
	"generator":          true,
	"themedata":          true,
	"colorschememapping": true,
	"latentstyles":       true,
	"datastore":          true,
	"object":             true,
	"fldinst":            true,
}

// symbols maps control words to the text they produce.
var symbols = map[string]string{
	"par":       "\n",
	"line":      "\n",
	"row":       "\n",
	"page":      "\n",
	"sect":      "\n",
	"tab":       "\t",
	"cell":      "\t",
	"emdash":    "—",
	"endash":    "–",
	"lquote":    "‘",
	"rquote":    "’",
	"ldblquote": "“",
	"rdblquote": "”",
	"bullet":    "•",
}

// codePages maps \ansicpg values to single-byte charsets for \'XX escapes.
var codePages = map[int]*charmap.Charmap{
	437:  charmap.CodePage437,
	850:  charmap.CodePage850,
	866:  charmap.CodePage866,
	1250: charmap.Windows1250,
	1251: charmap.Windows1251,
	1252: charmap.Windows1252,
	1253: charmap.Windows1253,
	1254: charmap.Windows1254,
	1255: charmap.Windows1255,
	1256: charmap.Windows1256,
	1257: charmap.Windows1257,
	1258: charmap.Windows1258,
}

var blankLines = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)

// Stats reports what the decoder skipped over. Words in Ignored are control
// words outside the supported subset; they produced no output.
type Stats struct {
	Ignored          map[string]int
	MalformedEscapes int
}

// Decode converts an RTF stream to plain text.
//
// Groups for document metadata (info, stylesheet, font and color tables,
// headers, footers, pictures, index entries, list and revision tables, field
// instructions, embedded objects) and groups opened with \* are dropped.
// Paragraph, line, row, section and page breaks become newlines, \tab and
// \cell a tab, and the dash, quote and bullet words their Unicode characters.
// \uN emits one code point and skips the \ucN fallback characters that follow
// it; \'XX emits one byte decoded through the document code page. A high
// surrogate without its low half becomes U+FFFD. Runs of blank lines collapse
// to one and the result is trimmed.
func Decode(rtf string) string {
	text, _ := DecodeWithStats(rtf)
	return text
}

// DecodeBytes is Decode for raw bytes.
func DecodeBytes(data []byte) string {
	return Decode(string(data))
}

// DecodeWithStats is Decode that also reports the skipped control words and
// malformed escapes, for flagging corpus features the decoder does not cover.
func DecodeWithStats(rtf string) (string, Stats) {
	d := &decoder{
		data:    rtf,
		uc:      DefaultSkip,
		charset: charmap.Windows1252,
		groups:  arraystack.New(),
		stats:   Stats{Ignored: make(map[string]int)},
	}
	d.run()
	d.flushHigh()

	out := blankLines.ReplaceAllString(d.out.String(), "\n\n")
	return strings.TrimSpace(out), d.stats
}

// groupState is saved at '{' and restored at the matching '}'.
type groupState struct {
	skip bool
	uc   int
}

type decoder struct {
	data string
	pos  int
	out  strings.Builder

	skip    bool // current group is an ignorable destination
	uc      int  // fallback characters to skip after \u
	pending int  // fallback characters still to skip
	high    rune // pending UTF-16 high surrogate from \u

	charset *charmap.Charmap
	groups  *arraystack.Stack
	stats   Stats
}

func (d *decoder) run() {
	for d.pos < len(d.data) {
		ch := d.data[d.pos]
		switch ch {
		case '{':
			d.pos++
			d.pending = 0
			d.groups.Push(groupState{skip: d.skip, uc: d.uc})

		case '}':
			d.pos++
			d.pending = 0
			// An unbalanced close brace leaves the state alone.
			if v, ok := d.groups.Pop(); ok {
				g := v.(groupState)
				d.skip, d.uc = g.skip, g.uc
			}

		case '\\':
			d.control()

		case '\r', '\n':
			d.pos++

		default:
			if d.pending > 0 {
				// A fallback character may be several bytes long.
				_, size := utf8.DecodeRuneInString(d.data[d.pos:])
				d.pos += size
				d.pending--
				continue
			}
			d.pos++
			if !d.skip {
				d.flushHigh()
				d.out.WriteByte(ch)
			}
		}
	}
}

// control handles a backslash sequence starting at d.pos.
func (d *decoder) control() {
	d.pos++ // consume '\'
	if d.pos >= len(d.data) {
		return
	}

	ch := d.data[d.pos]
	if isLetter(ch) {
		word, param, hasParam := d.readWord()
		d.word(word, param, hasParam)
		return
	}

	d.pos++
	switch ch {
	case '\'':
		d.hex()
		return
	case '*':
		d.skip = true
		return
	}

	if d.pending > 0 {
		d.pending--
		return
	}
	if d.skip {
		return
	}
	d.flushHigh()
	switch ch {
	case '\\', '{', '}':
		d.out.WriteByte(ch)
	case '~':
		d.out.WriteRune('\u00a0')
	case '_':
		d.out.WriteRune('\u2011')
	case '\r', '\n':
		d.out.WriteByte('\n')
	}
}

// readWord reads a control word name, its optional signed parameter and one
// optional delimiting space.
func (d *decoder) readWord() (word string, param int, hasParam bool) {
	start := d.pos
	for d.pos < len(d.data) && isLetter(d.data[d.pos]) && d.pos-start < maxWordLen {
		d.pos++
	}
	word = d.data[start:d.pos]

	numStart := d.pos
	if d.pos < len(d.data) && d.data[d.pos] == '-' && d.pos+1 < len(d.data) && isDigit(d.data[d.pos+1]) {
		d.pos++
	}
	digits := d.pos
	for d.pos < len(d.data) && isDigit(d.data[d.pos]) {
		d.pos++
	}
	if d.pos > digits {
		n, err := strconv.Atoi(d.data[numStart:d.pos])
		if err == nil {
			param, hasParam = n, true
		}
	}

	if d.pos < len(d.data) && d.data[d.pos] == ' ' {
		d.pos++
	}
	return word, param, hasParam
}

func (d *decoder) word(word string, param int, hasParam bool) {
	if destinations[word] {
		d.skip = true
		return
	}

	switch word {
	case "bin":
		// Binary data follows; skip it without interpreting braces.
		if hasParam && param > 0 {
			d.pos += param
			if d.pos > len(d.data) {
				d.pos = len(d.data)
			}
		}
		return
	case "ansicpg":
		if cs, ok := codePages[param]; ok {
			d.charset = cs
		}
		return
	case "uc":
		if hasParam && param >= 0 {
			d.uc = param
		}
		return
	case "u":
		if hasParam {
			d.unicode(param)
		}
		return
	}

	d.pending = 0
	if d.skip {
		return
	}
	if s, ok := symbols[word]; ok {
		d.flushHigh()
		d.out.WriteString(s)
		return
	}
	d.stats.Ignored[word]++
}

// unicode emits the code point of a \uN escape. N is a signed 16-bit value;
// surrogate pairs arrive as two escapes and are joined.
func (d *decoder) unicode(n int) {
	if n < 0 {
		n += 65536
	}
	d.pending = d.uc
	if d.skip {
		return
	}

	r := rune(n)
	switch {
	case utf16.IsSurrogate(r) && r < 0xDC00:
		d.flushHigh()
		d.high = r
		return
	case utf16.IsSurrogate(r) && d.high != 0:
		r = utf16.DecodeRune(d.high, r)
		d.high = 0
	default:
		d.flushHigh()
	}
	d.out.WriteRune(r)
}

// flushHigh writes U+FFFD for a high surrogate that was not followed by its
// low half.
func (d *decoder) flushHigh() {
	if d.high != 0 {
		d.out.WriteRune(utf8.RuneError)
		d.high = 0
	}
}

// hex handles \'XX. Escapes without two hex digits are dropped.
func (d *decoder) hex() {
	if d.pos+2 > len(d.data) || !isHex(d.data[d.pos]) || !isHex(d.data[d.pos+1]) {
		for i := 0; i < 2 && d.pos < len(d.data) && isHex(d.data[d.pos]); i++ {
			d.pos++
		}
		d.stats.MalformedEscapes++
		return
	}

	b, _ := strconv.ParseUint(d.data[d.pos:d.pos+2], 16, 8)
	d.pos += 2

	if d.pending > 0 {
		d.pending--
		return
	}
	if d.skip {
		return
	}
	d.flushHigh()
	d.out.WriteRune(d.charset.DecodeByte(byte(b)))
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
