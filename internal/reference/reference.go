// Package reference parses verse references typed on the command line and
// resolves them against a translation's book list.
package reference

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/OpenWord/core/errors"
	"github.com/FocuswithJustin/OpenWord/internal/store"
)

// Reference is a parsed verse reference. The book is still a name or number
// as typed; see Resolve.
type Reference struct {
	Book     string `@(Book | Number)`
	Chapter  int    `@Number`
	Verse    *int   `( Sep @Number`
	VerseEnd *int   `  ( "-" @Number )? )?`
}

var referenceLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Book names in any script, with an optional leading number and
	// trailing period: Gen, Gen., 1 John, Song of Solomon, Буття.
	{Name: "Book", Pattern: `(?:\d\s*)?\p{L}+(?:\s+\p{L}+)*\.?`},
	{Name: "Number", Pattern: `\d+`},
	// Chapter and verse are separated by a colon or a dot (Gen.1.1).
	{Name: "Sep", Pattern: `[:.]`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var referenceParser = participle.MustBuild[Reference](
	participle.Lexer(referenceLexer),
	participle.Elide("Whitespace"),
)

// Parse parses a reference of the form "Book Chapter[:Verse[-Verse]]".
//
// Supported formats:
//   - "Gen 1" (whole chapter)
//   - "Gen 1:1", "Gen. 1:1", "Gen.1.1"
//   - "John 3:16-18" (verse range within a chapter)
//   - "1 John 2:3"
//   - "43 3:16" (book number)
func Parse(input string) (*Reference, error) {
	ref, err := referenceParser.ParseString("", strings.TrimSpace(input))
	if err != nil {
		return nil, errors.NewParse("reference", input, err.Error())
	}
	ref.Book = strings.TrimSpace(strings.TrimSuffix(ref.Book, "."))

	switch {
	case ref.Chapter < 1:
		return nil, errors.NewParse("reference", input, "chapter must be at least 1")
	case ref.Verse != nil && *ref.Verse < 1:
		return nil, errors.NewParse("reference", input, "verse must be at least 1")
	case ref.VerseEnd != nil && *ref.VerseEnd < *ref.Verse:
		return nil, errors.NewParse("reference", input, "verse range ends before it starts")
	}
	return ref, nil
}

// String returns the reference in "Book C:V-V" form.
func (r *Reference) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	fmt.Fprintf(&sb, " %d", r.Chapter)
	if r.Verse != nil {
		fmt.Fprintf(&sb, ":%d", *r.Verse)
		if r.VerseEnd != nil && *r.VerseEnd != *r.Verse {
			fmt.Fprintf(&sb, "-%d", *r.VerseEnd)
		}
	}
	return sb.String()
}

// IsChapterOnly reports whether the reference names a whole chapter.
func (r *Reference) IsChapterOnly() bool {
	return r.Verse == nil
}

// Location is a reference resolved to a book of a translation.
type Location struct {
	Book     store.Book
	Chapter  int
	Verse    int // 0 for a whole chapter
	VerseEnd int // equal to Verse for a single verse
}

// Resolve finds the reference's book in books and returns its location.
func (r *Reference) Resolve(books []store.Book) (Location, error) {
	book, err := FindBook(books, r.Book)
	if err != nil {
		return Location{}, err
	}
	if book.Chapters > 0 && r.Chapter > book.Chapters {
		return Location{}, errors.NewNotFound("chapter", fmt.Sprintf("%s %d", book.Name, r.Chapter))
	}

	loc := Location{Book: book, Chapter: r.Chapter}
	if r.Verse != nil {
		loc.Verse = *r.Verse
		loc.VerseEnd = *r.Verse
		if r.VerseEnd != nil {
			loc.VerseEnd = *r.VerseEnd
		}
	}
	return loc, nil
}

// Refs returns one store.Ref per verse in the location. A whole chapter
// yields nothing; the caller lists the chapter instead.
func (l Location) Refs() []store.Ref {
	if l.Verse == 0 {
		return nil
	}
	refs := make([]store.Ref, 0, l.VerseEnd-l.Verse+1)
	for v := l.Verse; v <= l.VerseEnd; v++ {
		refs = append(refs, store.Ref{Book: l.Book.ID, Chapter: l.Chapter, Verse: v})
	}
	return refs
}

// String returns the location using the book's full name.
func (l Location) String() string {
	s := fmt.Sprintf("%s %d", l.Book.Name, l.Chapter)
	if l.Verse > 0 {
		s += fmt.Sprintf(":%d", l.Verse)
		if l.VerseEnd > l.Verse {
			s += fmt.Sprintf("-%d", l.VerseEnd)
		}
	}
	return s
}

// FindBook matches a book by number, then by exact short or long name, then
// by name prefix, ignoring case, spaces and a trailing period. Books are
// searched in the order given; the first prefix match wins.
func FindBook(books []store.Book, name string) (store.Book, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(name)); err == nil {
		for _, b := range books {
			if b.ID == n {
				return b, nil
			}
		}
		return store.Book{}, errors.NewNotFound("book", name)
	}

	key := bookKey(name)
	if key == "" {
		return store.Book{}, errors.NewNotFound("book", name)
	}
	for _, b := range books {
		if bookKey(b.ShortName) == key || bookKey(b.Name) == key {
			return b, nil
		}
	}
	for _, b := range books {
		if strings.HasPrefix(bookKey(b.Name), key) || strings.HasPrefix(bookKey(b.ShortName), key) {
			return b, nil
		}
	}
	return store.Book{}, errors.NewNotFound("book", name)
}

func bookKey(name string) string {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}
