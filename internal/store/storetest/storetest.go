// Package storetest builds small translation, lexicon and commentary
// databases for tests.
package storetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/OpenWord/core/sqlite"
)

// Verse is a verses table row.
type Verse struct {
	Book, Chapter, Verse int
	Text                 string
}

// Book is a books table row.
type Book struct {
	Number    int
	ShortName string
	LongName  string
}

// Lexeme is a lexicon table row. Empty strings are stored as NULL.
type Lexeme struct {
	Code            string
	Gloss           string
	Transliteration string
	Definition      string
}

// Word is a vocabulary table row.
type Word struct {
	Book, Chapter, Verse, Position int
	Code                           string
	Original                       string
}

// Comment is a commentaries table row.
type Comment struct {
	Book, Chapter, VerseStart, VerseEnd int
	Text                                string
}

// Genesis1 is the opening of Genesis with Strong's codes.
var Genesis1 = []Verse{
	{1, 1, 1, "<pb/>In the beginning{H7225} God{H430} created{H1254}{H853} the heaven{H8064} and{H853} the earth{H776}."},
	{1, 1, 2, "And the earth{H776} was{H1961} without form{H8414}, and void{H922}."},
	{1, 1, 3, "And God{H430} said{H559}, Let there be{H1961} light{H216}: and there was{H1961} light{H216}."},
}

// Books is a two-book catalogue matching Genesis1 and John3.
var Books = []Book{
	{1, "Gen", "Genesis"},
	{43, "John", "John"},
}

// John3 holds one New Testament verse with words of Jesus.
var John3 = []Verse{
	{43, 3, 16, "<J>For God{G2316} so loved{G25} the world{G2889}, that he gave his <i>only</i> begotten Son{G5207}</J>"},
}

// Bible creates a translation database in dir and returns its path.
func Bible(tb testing.TB, dir string, books []Book, verses []Verse) string {
	tb.Helper()
	path := filepath.Join(dir, "bible.SQLite3")
	db := open(tb, path)
	defer db.Close()

	exec(tb, db, `CREATE TABLE books (book_number INTEGER NOT NULL, short_name TEXT, long_name TEXT)`)
	exec(tb, db, `CREATE TABLE verses (
		book_number INTEGER NOT NULL,
		chapter INTEGER NOT NULL,
		verse INTEGER NOT NULL,
		text TEXT NOT NULL
	)`)
	for _, b := range books {
		exec(tb, db, `INSERT INTO books (book_number, short_name, long_name) VALUES (?, ?, ?)`,
			b.Number, b.ShortName, b.LongName)
	}
	for _, v := range verses {
		exec(tb, db, `INSERT INTO verses (book_number, chapter, verse, text) VALUES (?, ?, ?, ?)`,
			v.Book, v.Chapter, v.Verse, v.Text)
	}
	return path
}

// Lexicon creates a lexicon database in dir and returns its path.
func Lexicon(tb testing.TB, dir string, lexemes []Lexeme, words []Word) string {
	tb.Helper()
	path := filepath.Join(dir, "lexicon.SQLite3")
	db := open(tb, path)
	defer db.Close()

	exec(tb, db, `CREATE TABLE lexicon (
		strong_code TEXT PRIMARY KEY,
		gloss TEXT,
		transliteration TEXT,
		definition TEXT
	)`)
	exec(tb, db, `CREATE TABLE vocabulary (
		book_number INTEGER NOT NULL,
		chapter INTEGER NOT NULL,
		verse INTEGER NOT NULL,
		position INTEGER NOT NULL,
		strong_code TEXT,
		original_word TEXT
	)`)
	for _, l := range lexemes {
		exec(tb, db, `INSERT INTO lexicon (strong_code, gloss, transliteration, definition) VALUES (?, ?, ?, ?)`,
			l.Code, null(l.Gloss), null(l.Transliteration), null(l.Definition))
	}
	for _, w := range words {
		exec(tb, db, `INSERT INTO vocabulary (book_number, chapter, verse, position, strong_code, original_word)
			VALUES (?, ?, ?, ?, ?, ?)`, w.Book, w.Chapter, w.Verse, w.Position, w.Code, w.Original)
	}
	return path
}

// Commentary creates a commentary database named name in dir and returns its
// path.
func Commentary(tb testing.TB, dir, name string, comments []Comment) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	db := open(tb, path)
	defer db.Close()

	exec(tb, db, `CREATE TABLE commentaries (
		book_number INTEGER NOT NULL,
		chapter INTEGER,
		verse_start INTEGER,
		verse_end INTEGER,
		text TEXT
	)`)
	for _, c := range comments {
		exec(tb, db, `INSERT INTO commentaries (book_number, chapter, verse_start, verse_end, text) VALUES (?, ?, ?, ?, ?)`,
			c.Book, c.Chapter, c.VerseStart, c.VerseEnd, c.Text)
	}
	return path
}

func open(tb testing.TB, path string) *sql.DB {
	tb.Helper()
	db, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to create test database: %v", err)
	}
	return db
}

func exec(tb testing.TB, db *sql.DB, query string, args ...any) {
	tb.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		tb.Fatalf("fixture statement failed: %v\n%s", err, query)
	}
}

func null(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
