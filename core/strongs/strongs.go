// Package strongs handles Strong's concordance codes as they appear in
// interlinear Bible text and vocabulary tables.
//
// A code is a language prefix (H for Hebrew, G for Greek), a run of digits and
// an optional letter suffix: H430, G3056, H1254a. Corpora disagree on digit
// padding and suffix case, so lookups always go through Normalize first.
package strongs

import (
	"regexp"
	"strings"
)

// Width is the number of digits in a canonical code.
const Width = 4

var (
	codePattern = regexp.MustCompile(`[HG]\d+[A-Za-z]*`)
	rootPattern = regexp.MustCompile(`\{([^}]+)\}`)
)

// Language identifies the lexicon a code belongs to.
type Language int

const (
	// Unknown is returned for codes without an H or G prefix.
	Unknown Language = iota
	// Hebrew codes start with H.
	Hebrew
	// Greek codes start with G.
	Greek
)

// String returns the language name.
func (l Language) String() string {
	switch l {
	case Hebrew:
		return "hebrew"
	case Greek:
		return "greek"
	default:
		return "unknown"
	}
}

// Normalize pads the digit run of a code to Width digits: H430 becomes H0430,
// G1 becomes G0001. The suffix is kept as is. Codes that do not start with H or
// G, or that have no digits after the prefix, are returned unchanged. Digit runs
// already Width or longer are left alone, so Normalize is idempotent.
func Normalize(code string) string {
	if code == "" {
		return code
	}
	prefix := code[0]
	if prefix != 'H' && prefix != 'G' {
		return code
	}

	end := 1
	for end < len(code) && isDigit(code[end]) {
		end++
	}
	if end == 1 {
		return code
	}

	digits := code[1:end]
	if len(digits) >= Width {
		return code
	}

	var b strings.Builder
	b.Grow(len(code) + Width - len(digits))
	b.WriteByte(prefix)
	b.WriteString(strings.Repeat("0", Width-len(digits)))
	b.WriteString(digits)
	b.WriteString(code[end:])
	return b.String()
}

// Extract returns every code found in a raw code field, left to right.
// A compound word carries several codes with no separator ("H2050G5590"), and a
// root marker wraps one of them in braces ("H3068{H430}"); both are handled.
func Extract(raw string) []string {
	return codePattern.FindAllString(raw, -1)
}

// RootCode picks the code whose lexicon entry supplies the definition and
// transliteration of a compound word. The contents of the first {...} group are
// searched if present, otherwise the whole field; when that yields nothing the
// first code of the field is used. ok is false if the field has no codes.
func RootCode(raw string) (code string, ok bool) {
	rootText := raw
	if m := rootPattern.FindStringSubmatch(raw); m != nil {
		rootText = m[1]
	}
	if c := codePattern.FindString(rootText); c != "" {
		return c, true
	}
	if codes := Extract(raw); len(codes) > 0 {
		return codes[0], true
	}
	return "", false
}

// LanguageOf reports the lexicon a code belongs to from its prefix.
func LanguageOf(code string) Language {
	if code == "" {
		return Unknown
	}
	switch code[0] {
	case 'H':
		return Hebrew
	case 'G':
		return Greek
	default:
		return Unknown
	}
}

// Variants returns the exact-match keys tried for a code, in order: the
// canonical form, the canonical form with the case of a trailing letter
// flipped, and the canonical form with the trailing letter removed. Codes
// without a letter suffix have a single variant.
func Variants(code string) []string {
	canonical := Normalize(code)
	variants := []string{canonical}
	if len(canonical) <= 1 {
		return variants
	}

	last := canonical[len(canonical)-1]
	if !isLetter(last) {
		return variants
	}
	variants = append(variants, canonical[:len(canonical)-1]+string(flipCase(last)))
	variants = append(variants, canonical[:len(canonical)-1])
	return variants
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func flipCase(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b - 'A' + 'a'
}
