package main

import (
	"fmt"

	"github.com/FocuswithJustin/OpenWord/core/commentary"
	"github.com/FocuswithJustin/OpenWord/core/errors"
	"github.com/FocuswithJustin/OpenWord/internal/lexicon"
	"github.com/FocuswithJustin/OpenWord/internal/reader"
	"github.com/FocuswithJustin/OpenWord/internal/reference"
	"github.com/FocuswithJustin/OpenWord/internal/store"
)

// BooksCmd lists the books of a translation.
type BooksCmd struct{}

func (c *BooksCmd) Run(app *App) error {
	r, err := app.Reader()
	if err != nil {
		return err
	}
	books, err := r.Books(app.ctx, app.Translation)
	if err != nil {
		return err
	}
	if app.JSON {
		return app.printJSON(books)
	}
	for _, b := range books {
		app.printf("%3d  %-8s %-24s %d\n", b.ID, b.ShortName, b.Name, b.Chapters)
	}
	return nil
}

// locate resolves a reference argument against the selected translation.
func locate(app *App, ref string) (*reader.Reader, reference.Location, error) {
	r, err := app.Reader()
	if err != nil {
		return nil, reference.Location{}, err
	}
	loc, err := r.Locate(app.ctx, app.Translation, ref)
	if err != nil {
		return nil, reference.Location{}, err
	}
	return r, loc, nil
}

// verses returns the verses a location covers: the whole chapter, or the
// verses of the range that exist.
func verses(app *App, r *reader.Reader, loc reference.Location) ([]reader.Verse, error) {
	all := r.Chapter(app.ctx, app.Translation, loc.Book.ID, loc.Chapter)
	if loc.Verse == 0 {
		if len(all) == 0 {
			return nil, errors.NewNotFound("chapter", loc.String())
		}
		return all, nil
	}

	var selected []reader.Verse
	for _, v := range all {
		if v.Number >= loc.Verse && v.Number <= loc.VerseEnd {
			selected = append(selected, v)
		}
	}
	if len(selected) == 0 {
		return nil, errors.NewNotFound("verse", loc.String())
	}
	return selected, nil
}

// verseRefs returns the addresses of the verses a location covers. A whole
// chapter is listed to find its verses.
func verseRefs(app *App, r *reader.Reader, loc reference.Location) ([]store.Ref, error) {
	if refs := loc.Refs(); refs != nil {
		return refs, nil
	}
	vs, err := verses(app, r, loc)
	if err != nil {
		return nil, err
	}
	refs := make([]store.Ref, 0, len(vs))
	for _, v := range vs {
		refs = append(refs, v.Ref())
	}
	return refs, nil
}

// ChapterCmd prints a chapter or a verse range.
type ChapterCmd struct {
	Ref   string `arg:"" help:"Reference: Gen 1, John 3:16, John 3:16-18"`
	Codes bool   `help:"List the Strong's codes and styles under each verse"`
}

func (c *ChapterCmd) Run(app *App) error {
	r, loc, err := locate(app, c.Ref)
	if err != nil {
		return err
	}
	vs, err := verses(app, r, loc)
	if err != nil {
		return err
	}
	if app.JSON {
		return app.printJSON(vs)
	}

	app.printf("%s\n", loc)
	for _, v := range vs {
		if c.Codes {
			app.printf("%d ", v.Number)
			printAnnotated(app, v.AnnotatedText)
			continue
		}
		app.printf("%d %s\n", v.Number, v.Text)
	}
	return nil
}

// VocabCmd shows the vocabulary of the verses a reference covers.
type VocabCmd struct {
	Ref string `arg:"" help:"Reference: Gen 1:1, John 3:16-18, Gen 1"`
}

type verseVocabulary struct {
	Ref     store.Ref       `json:"ref"`
	Entries []lexicon.Entry `json:"entries"`
}

func (c *VocabCmd) Run(app *App) error {
	r, loc, err := locate(app, c.Ref)
	if err != nil {
		return err
	}
	if err := r.LexiconAvailable(app.ctx); err != nil {
		return fmt.Errorf("vocabulary temporarily unavailable: %w", err)
	}

	refs, err := verseRefs(app, r, loc)
	if err != nil {
		return err
	}

	result := make([]verseVocabulary, 0, len(refs))
	for _, ref := range refs {
		result = append(result, verseVocabulary{Ref: ref, Entries: r.Vocabulary(app.ctx, ref)})
	}
	if app.JSON {
		return app.printJSON(result)
	}

	for _, vv := range result {
		app.printf("%s %d:%d\n", loc.Book.Name, vv.Ref.Chapter, vv.Ref.Verse)
		for _, e := range vv.Entries {
			app.printf("  %-12s %-16s %s", e.StrongCode, e.OriginalWord, e.Gloss)
			if e.Transliteration != nil {
				app.printf(" (%s)", *e.Transliteration)
			}
			app.printf("\n")
		}
	}
	return nil
}

// LookupCmd looks up one Strong's code field.
type LookupCmd struct {
	Code string `arg:"" help:"Strong's code or code field: H430, h1254a, H3068{H430}"`
}

func (c *LookupCmd) Run(app *App) error {
	r, err := app.Reader()
	if err != nil {
		return err
	}
	if err := r.LexiconAvailable(app.ctx); err != nil {
		return fmt.Errorf("vocabulary temporarily unavailable: %w", err)
	}
	e, ok := r.Lookup(app.ctx, c.Code)
	if !ok {
		return errors.NewNotFound("strong_code", c.Code)
	}
	if app.JSON {
		return app.printJSON(e)
	}

	app.printf("%s  %s\n", e.StrongCode, e.Gloss)
	if e.Transliteration != nil {
		app.printf("%s\n", *e.Transliteration)
	}
	if e.Definition != nil {
		app.printf("\n%s\n", commentary.StripHTML(*e.Definition))
	}
	return nil
}

// CommentaryCmd shows the commentaries covering the verses of a reference.
type CommentaryCmd struct {
	Ref string `arg:"" help:"Reference with a verse: Gen 1:1, John 3:16-17"`
}

type commentaryEntry struct {
	Source     string `json:"source"`
	Chapter    int    `json:"chapter"`
	VerseStart int    `json:"verseStart"`
	VerseEnd   int    `json:"verseEnd"`
	Kind       string `json:"kind"`
	Text       string `json:"text"`
}

func (c *CommentaryCmd) Run(app *App) error {
	r, loc, err := locate(app, c.Ref)
	if err != nil {
		return err
	}
	if loc.Verse == 0 {
		return errors.NewValidation("ref", "a verse is required, e.g. "+loc.String()+":1")
	}

	var result []commentaryEntry
	for _, ref := range loc.Refs() {
		for _, cm := range r.Commentaries(app.ctx, ref) {
			result = append(result, commentaryEntry{
				Source:     cm.Source,
				Chapter:    cm.Chapter,
				VerseStart: cm.VerseStart,
				VerseEnd:   cm.VerseEnd,
				Kind:       cm.Body.Kind().String(),
				Text:       cm.Text,
			})
		}
	}
	if app.JSON {
		if result == nil {
			result = []commentaryEntry{}
		}
		return app.printJSON(result)
	}

	for _, e := range result {
		span := fmt.Sprintf("%d:%d", e.Chapter, e.VerseStart)
		if e.VerseEnd > e.VerseStart {
			span += fmt.Sprintf("-%d", e.VerseEnd)
		}
		app.printf("== %s (%s) ==\n%s\n\n", e.Source, span, e.Text)
	}
	return nil
}

// MetricsCmd prints the counters, optionally after reading a reference so
// they have something to show.
type MetricsCmd struct {
	Ref string `arg:"" optional:"" help:"Reference to read first: its vocabulary and commentaries"`
}

func (c *MetricsCmd) Run(app *App) error {
	if c.Ref != "" {
		r, loc, err := locate(app, c.Ref)
		if err != nil {
			return err
		}
		refs, err := verseRefs(app, r, loc)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			r.Vocabulary(app.ctx, ref)
			r.Commentaries(app.ctx, ref)
		}
	}

	if app.JSON {
		samples, err := app.metrics.Snapshot()
		if err != nil {
			return err
		}
		return app.printJSON(samples)
	}
	return app.metrics.WriteText(app.stdout)
}
