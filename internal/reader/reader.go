// Package reader ties the corpus together: translations, the lexicon and the
// commentary sources named in configuration, opened on first use.
//
// Reader methods used for display degrade rather than fail. A chapter that
// cannot be read is empty, a commentary source that cannot be read is skipped
// and an unavailable lexicon yields no vocabulary. Each such failure is logged
// and counted.
package reader

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/OpenWord/core/commentary"
	"github.com/FocuswithJustin/OpenWord/core/errors"
	"github.com/FocuswithJustin/OpenWord/core/markup"
	"github.com/FocuswithJustin/OpenWord/internal/config"
	"github.com/FocuswithJustin/OpenWord/internal/lexicon"
	"github.com/FocuswithJustin/OpenWord/internal/logging"
	"github.com/FocuswithJustin/OpenWord/internal/metrics"
	"github.com/FocuswithJustin/OpenWord/internal/reference"
	"github.com/FocuswithJustin/OpenWord/internal/store"
)

// maxSourceQueries bounds concurrent commentary source queries.
const maxSourceQueries = 4

// Verse is an annotated verse of a chapter.
type Verse struct {
	Book    int `json:"book"`
	Chapter int `json:"chapter"`
	Number  int `json:"verse"`
	*markup.AnnotatedText
}

// Ref returns the verse address.
func (v Verse) Ref() store.Ref {
	return store.Ref{Book: v.Book, Chapter: v.Chapter, Verse: v.Number}
}

// Commentary is a rendered commentary entry.
type Commentary struct {
	commentary.Item
	Text string
}

// Reader serves verses, vocabulary and commentaries from the configured
// corpus. It is safe for concurrent use.
type Reader struct {
	cfg      *config.Config
	metrics  *metrics.Metrics
	lexicon  *lexicon.Lazy
	resolver *lexicon.Resolver
	renderer *commentary.Renderer
	sources  []*source

	mu     sync.Mutex
	closed bool
	bibles map[string]*store.BibleDB
}

// source is one commentary database, opened once on first use. The open
// ignores the caller's cancellation.
type source struct {
	name string
	path string

	mu     sync.Mutex
	opened bool
	db     *store.CommentaryDB
	err    error
}

func (s *source) open(ctx context.Context) (*store.CommentaryDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		s.opened = true
		s.db, s.err = store.OpenCommentary(context.WithoutCancel(ctx), s.path)
	}
	return s.db, s.err
}

// close closes the database and keeps the source from being reopened.
func (s *source) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	s.opened = true
	s.db, s.err = nil, errors.NewUnavailable(s.name, errors.ErrClosed)
	return err
}

// Option configures a Reader.
type Option func(*Reader)

// WithMetrics records on m instead of a fresh metrics set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reader) { r.metrics = m }
}

// WithLexicon replaces the configured lexicon file with an already prepared
// handle.
func WithLexicon(l *lexicon.Lazy) Option {
	return func(r *Reader) { r.lexicon = l }
}

// New validates cfg and returns a reader over it. No database is opened
// until it is needed.
func New(cfg *config.Config, opts ...Option) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Reader{
		cfg:    cfg,
		bibles: make(map[string]*store.BibleDB),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.New()
	}
	if r.lexicon == nil {
		path, err := cfg.Path(cfg.Lexicon)
		if err != nil {
			return nil, errors.NewValidation("lexicon", err.Error())
		}
		r.lexicon = lexicon.NewLazy(lexicon.OpenFile(path))
	}
	lookupCache := cfg.Lookup.CacheEntries
	if lookupCache == 0 {
		lookupCache = lexicon.DefaultCacheEntries
	}
	r.resolver = lexicon.NewResolver(r.lexicon,
		lexicon.WithMetrics(r.metrics),
		lexicon.WithCacheSize(lookupCache),
	)

	r.renderer = commentary.NewRenderer(cfg.Render.CacheEntries, cfg.Render.CacheBytes)
	r.renderer.Observe(func(kind commentary.Kind, cached bool) {
		r.metrics.ObserveRender(kind.String(), cached)
	})

	for _, c := range cfg.Commentaries {
		path, err := cfg.Path(c.File)
		if err != nil {
			return nil, errors.NewValidation("commentaries", err.Error())
		}
		r.sources = append(r.sources, &source{name: c.DisplayName, path: path})
	}
	return r, nil
}

// Metrics returns the metrics the reader records on.
func (r *Reader) Metrics() *metrics.Metrics {
	return r.metrics
}

// Renderer returns the commentary renderer.
func (r *Reader) Renderer() *commentary.Renderer {
	return r.renderer
}

// Translations lists the configured translations.
func (r *Reader) Translations() []config.TranslationConfig {
	return r.cfg.Translations
}

// bible returns the open translation database for id, opening it if needed.
// A failed open is retried on the next call.
func (r *Reader) bible(ctx context.Context, id string) (*store.BibleDB, config.TranslationConfig, error) {
	t, err := r.cfg.Translation(id)
	if err != nil {
		return nil, t, err
	}
	key := strings.ToUpper(t.ID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, t, errors.NewUnavailable(t.ID, errors.ErrClosed)
	}
	if db, ok := r.bibles[key]; ok {
		return db, t, nil
	}
	path, err := r.cfg.Path(t.File)
	if err != nil {
		return nil, t, err
	}
	db, err := store.OpenBible(context.WithoutCancel(ctx), path)
	if err != nil {
		return nil, t, err
	}
	r.bibles[key] = db
	return db, t, nil
}

// Books lists the books of a translation. An empty id selects the first
// configured translation.
func (r *Reader) Books(ctx context.Context, translation string) ([]store.Book, error) {
	db, _, err := r.bible(ctx, translation)
	if err != nil {
		return nil, err
	}
	return db.Books(ctx)
}

// Locate parses a reference such as "John 3:16" and resolves its book against
// the translation's book list.
func (r *Reader) Locate(ctx context.Context, translation, input string) (reference.Location, error) {
	ref, err := reference.Parse(input)
	if err != nil {
		return reference.Location{}, err
	}
	books, err := r.Books(ctx, translation)
	if err != nil {
		return reference.Location{}, err
	}
	return ref.Resolve(books)
}

// Chapter returns the annotated verses of a chapter in verse order. Read
// failures yield an empty list.
func (r *Reader) Chapter(ctx context.Context, translation string, book, chapter int) []Verse {
	db, t, err := r.bible(ctx, translation)
	if err != nil {
		r.sourceError(ctx, translation, "open", err)
		return []Verse{}
	}
	rows, err := db.Verses(ctx, book, chapter)
	if err != nil {
		r.sourceError(ctx, t.ID, "verses", err, "book", book, "chapter", chapter)
		return []Verse{}
	}

	verses := make([]Verse, 0, len(rows))
	for _, row := range rows {
		verses = append(verses, annotate(row))
	}
	return verses
}

// Verse returns one annotated verse.
func (r *Reader) Verse(ctx context.Context, translation string, ref store.Ref) (Verse, error) {
	db, _, err := r.bible(ctx, translation)
	if err != nil {
		return Verse{}, err
	}
	row, err := db.Verse(ctx, ref)
	if err != nil {
		return Verse{}, err
	}
	return annotate(row), nil
}

func annotate(v store.Verse) Verse {
	return Verse{
		Book:          v.BookID,
		Chapter:       v.Chapter,
		Number:        v.Number,
		AnnotatedText: markup.Annotate(v.Text),
	}
}

// Vocabulary returns the resolved original-language words of a verse.
func (r *Reader) Vocabulary(ctx context.Context, ref store.Ref) []lexicon.Entry {
	return r.resolver.Vocabulary(ctx, ref)
}

// Lookup resolves a single Strong's code field.
func (r *Reader) Lookup(ctx context.Context, code string) (lexicon.Entry, bool) {
	return r.resolver.Lookup(ctx, code)
}

// LexiconAvailable reports whether the lexicon could be opened. The error
// matches errors.ErrLexiconUnavailable.
func (r *Reader) LexiconAvailable(ctx context.Context) error {
	return r.resolver.Available(ctx)
}

// Commentaries returns the entries of every commentary source whose range
// covers the verse. Sources are queried concurrently; results keep the
// configured source order and, within a source, range order. A source that
// cannot be read is skipped.
func (r *Reader) Commentaries(ctx context.Context, ref store.Ref) []Commentary {
	found := make([][]commentary.Item, len(r.sources))

	var g errgroup.Group
	g.SetLimit(maxSourceQueries)
	for i, src := range r.sources {
		g.Go(func() error {
			items, err := r.query(ctx, src, ref)
			if err != nil {
				r.sourceError(ctx, src.name, "commentaries", err, "ref", ref.String())
				return nil
			}
			found[i] = items
			return nil
		})
	}
	_ = g.Wait()

	result := []Commentary{}
	for _, items := range found {
		for _, item := range items {
			result = append(result, Commentary{Item: item, Text: r.renderer.Text(item.Body)})
		}
	}
	return result
}

func (r *Reader) query(ctx context.Context, src *source, ref store.Ref) ([]commentary.Item, error) {
	db, err := src.open(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.CommentariesForVerse(ctx, ref)
	if err != nil {
		return nil, err
	}
	items := make([]commentary.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, commentary.Item{
			Source:     src.name,
			Chapter:    row.Chapter,
			VerseStart: row.VerseStart,
			VerseEnd:   row.VerseEnd,
			Body:       commentary.Classify(row.Text),
		})
	}
	return items, nil
}

func (r *Reader) sourceError(ctx context.Context, source, operation string, err error, args ...any) {
	logging.SourceError(ctx, source, operation, err, args...)
	r.metrics.SourceErrorsTotal.WithLabelValues(source).Inc()
}

// Close closes every open database. Later reads fail or come back empty.
func (r *Reader) Close() error {
	var errs []error

	r.mu.Lock()
	r.closed = true
	for key, db := range r.bibles {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.bibles, key)
	}
	r.mu.Unlock()

	for _, src := range r.sources {
		if err := src.close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.lexicon.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
