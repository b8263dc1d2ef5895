// Package store reads the MyBible-style SQLite databases OpenWord works with:
// translations, the Strong's lexicon with its per-verse vocabulary, and
// commentaries.
//
// Translation schema:
//   - verses table: book_number, chapter, verse, text
//   - books table: book_number, short_name, long_name
//
// Lexicon schema:
//   - lexicon table: strong_code (primary key), gloss, transliteration, definition
//   - vocabulary table: book_number, chapter, verse, position, strong_code, original_word
//
// Commentary schema:
//   - commentaries table: book_number, chapter, verse_start, verse_end, text
//
// All databases are opened read-only.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FocuswithJustin/OpenWord/core/errors"
	"github.com/FocuswithJustin/OpenWord/core/sqlite"
	"github.com/FocuswithJustin/OpenWord/internal/validation"
)

// Ref addresses a single verse.
type Ref struct {
	Book    int `json:"book"`
	Chapter int `json:"chapter"`
	Verse   int `json:"verse"`
}

// String formats the reference as book:chapter:verse numbers.
func (r Ref) String() string {
	return fmt.Sprintf("%d:%d:%d", r.Book, r.Chapter, r.Verse)
}

// Verse is one row of a translation's verses table. Text is raw markup.
type Verse struct {
	BookID  int    `json:"book"`
	Chapter int    `json:"chapter"`
	Number  int    `json:"verse"`
	Text    string `json:"text"`
}

// Ref returns the verse's address.
func (v Verse) Ref() Ref {
	return Ref{Book: v.BookID, Chapter: v.Chapter, Verse: v.Number}
}

// Book is one row of a translation's books table with its chapter count.
type Book struct {
	ID        int    `json:"id"`
	ShortName string `json:"short_name"`
	Name      string `json:"name"`
	Chapters  int    `json:"chapters"`
}

// VocabularyRow links a word of a verse to its Strong's code field. The field
// may hold several codes and a {root} group.
type VocabularyRow struct {
	Position     int
	StrongCode   string
	OriginalWord string
}

// LexiconRecord is one row of the lexicon table.
type LexiconRecord struct {
	StrongCode      string
	Gloss           sql.NullString
	Transliteration sql.NullString
	Definition      sql.NullString
}

// CommentaryRow is one commentary entry covering a verse range of a chapter.
type CommentaryRow struct {
	Chapter    int
	VerseStart int
	VerseEnd   int
	Text       string
}

// openDB validates the path and opens the database read-only.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if err := validation.CheckSQLiteFile(path); err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	db, err := sqlite.OpenReadOnlyContext(ctx, path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	return db, nil
}
