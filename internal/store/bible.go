package store

import (
	"context"
	"database/sql"

	"github.com/FocuswithJustin/OpenWord/core/errors"
)

// BibleDB reads one translation database.
type BibleDB struct {
	db   *sql.DB
	path string
}

// OpenBible opens a translation database read-only.
func OpenBible(ctx context.Context, path string) (*BibleDB, error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	return &BibleDB{db: db, path: path}, nil
}

// Close closes the database connection. Queries after Close fail with an
// I/O error.
func (b *BibleDB) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Path returns the database file path.
func (b *BibleDB) Path() string {
	return b.path
}

// Books lists the translation's books in book number order. The chapter
// count is the highest chapter that has verses.
func (b *BibleDB) Books(ctx context.Context) ([]Book, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT b.book_number, b.short_name, b.long_name,
		       (SELECT MAX(v.chapter) FROM verses v WHERE v.book_number = b.book_number)
		FROM books b
		ORDER BY b.book_number`)
	if err != nil {
		return nil, errors.NewIO("query books", b.path, err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var bk Book
		var short, long sql.NullString
		var chapters sql.NullInt64
		if err := rows.Scan(&bk.ID, &short, &long, &chapters); err != nil {
			return nil, errors.NewIO("scan books", b.path, err)
		}
		bk.ShortName = short.String
		bk.Name = long.String
		bk.Chapters = int(chapters.Int64)
		books = append(books, bk)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("query books", b.path, err)
	}
	return books, nil
}

// Verses returns the verses of a chapter in verse order.
func (b *BibleDB) Verses(ctx context.Context, book, chapter int) ([]Verse, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT book_number, chapter, verse, text FROM verses
		 WHERE book_number = ? AND chapter = ? ORDER BY verse`, book, chapter)
	if err != nil {
		return nil, errors.NewIO("query verses", b.path, err)
	}
	defer rows.Close()

	var verses []Verse
	for rows.Next() {
		var v Verse
		var text sql.NullString
		if err := rows.Scan(&v.BookID, &v.Chapter, &v.Number, &text); err != nil {
			return nil, errors.NewIO("scan verses", b.path, err)
		}
		v.Text = text.String
		verses = append(verses, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("query verses", b.path, err)
	}
	return verses, nil
}

// Verse returns a single verse. A missing verse is an errors.ErrNotFound.
func (b *BibleDB) Verse(ctx context.Context, ref Ref) (Verse, error) {
	v := Verse{BookID: ref.Book, Chapter: ref.Chapter, Number: ref.Verse}
	var text sql.NullString
	err := b.db.QueryRowContext(ctx,
		`SELECT text FROM verses WHERE book_number = ? AND chapter = ? AND verse = ?`,
		ref.Book, ref.Chapter, ref.Verse).Scan(&text)
	if err == sql.ErrNoRows {
		return Verse{}, errors.NewNotFound("verse", ref.String())
	}
	if err != nil {
		return Verse{}, errors.NewIO("query verse", b.path, err)
	}
	v.Text = text.String
	return v, nil
}
