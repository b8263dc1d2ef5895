package store

import (
	"context"
	"database/sql"

	"github.com/FocuswithJustin/OpenWord/core/errors"
)

// LexiconDB reads the Strong's lexicon and the per-verse vocabulary.
type LexiconDB struct {
	db   *sql.DB
	path string
}

// OpenLexicon opens a lexicon database read-only.
func OpenLexicon(ctx context.Context, path string) (*LexiconDB, error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	return &LexiconDB{db: db, path: path}, nil
}

// Close closes the database connection. Queries after Close fail with an
// I/O error.
func (l *LexiconDB) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// LookupExact returns the lexicon row whose strong_code equals code exactly.
// A missing row is an errors.ErrNotFound; anything else is an I/O error.
func (l *LexiconDB) LookupExact(ctx context.Context, code string) (*LexiconRecord, error) {
	rec := &LexiconRecord{StrongCode: code}
	err := l.db.QueryRowContext(ctx,
		`SELECT gloss, transliteration, definition FROM lexicon WHERE strong_code = ?`, code).
		Scan(&rec.Gloss, &rec.Transliteration, &rec.Definition)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("strong_code", code)
	}
	if err != nil {
		return nil, errors.NewIO("lookup", l.path, err)
	}
	return rec, nil
}

// VocabularyForVerse returns the vocabulary rows of a verse in word order.
func (l *LexiconDB) VocabularyForVerse(ctx context.Context, ref Ref) ([]VocabularyRow, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT position, strong_code, original_word FROM vocabulary
		 WHERE book_number = ? AND chapter = ? AND verse = ?
		 ORDER BY position`, ref.Book, ref.Chapter, ref.Verse)
	if err != nil {
		return nil, errors.NewIO("query vocabulary", l.path, err)
	}
	defer rows.Close()

	var result []VocabularyRow
	for rows.Next() {
		var r VocabularyRow
		var code, word sql.NullString
		if err := rows.Scan(&r.Position, &code, &word); err != nil {
			return nil, errors.NewIO("scan vocabulary", l.path, err)
		}
		r.StrongCode = code.String
		r.OriginalWord = word.String
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("query vocabulary", l.path, err)
	}
	return result, nil
}
