package store

import (
	"context"
	"database/sql"

	"github.com/FocuswithJustin/OpenWord/core/errors"
)

// CommentaryDB reads one commentary database.
type CommentaryDB struct {
	db   *sql.DB
	path string
}

// OpenCommentary opens a commentary database read-only.
func OpenCommentary(ctx context.Context, path string) (*CommentaryDB, error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	return &CommentaryDB{db: db, path: path}, nil
}

// Close closes the database connection. Queries after Close fail with an
// I/O error.
func (c *CommentaryDB) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// CommentariesForVerse returns the entries whose verse range covers the verse.
func (c *CommentaryDB) CommentariesForVerse(ctx context.Context, ref Ref) ([]CommentaryRow, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT chapter, verse_start, verse_end, text FROM commentaries
		 WHERE book_number = ? AND chapter = ? AND verse_start <= ? AND verse_end >= ?
		 ORDER BY verse_start, verse_end`,
		ref.Book, ref.Chapter, ref.Verse, ref.Verse)
	if err != nil {
		return nil, errors.NewIO("query commentaries", c.path, err)
	}
	defer rows.Close()

	var result []CommentaryRow
	for rows.Next() {
		var r CommentaryRow
		var chapter, start, end sql.NullInt64
		var text sql.NullString
		if err := rows.Scan(&chapter, &start, &end, &text); err != nil {
			return nil, errors.NewIO("scan commentaries", c.path, err)
		}
		r.Chapter = int(chapter.Int64)
		r.VerseStart = int(start.Int64)
		r.VerseEnd = int(end.Int64)
		r.Text = text.String
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("query commentaries", c.path, err)
	}
	return result, nil
}
