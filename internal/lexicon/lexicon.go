// Package lexicon resolves the Strong's codes of a verse to lexicon entries.
//
// Each code is looked up by exact key through a fixed chain: the canonical
// code, then the code with the case of its trailing letter flipped, then the
// code with the trailing letter dropped. Lookup failures never reach the
// caller; a code that cannot be read is treated as not found.
package lexicon

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/FocuswithJustin/OpenWord/core/cache"
	"github.com/FocuswithJustin/OpenWord/core/errors"
	"github.com/FocuswithJustin/OpenWord/core/strongs"
	"github.com/FocuswithJustin/OpenWord/internal/logging"
	"github.com/FocuswithJustin/OpenWord/internal/metrics"
	"github.com/FocuswithJustin/OpenWord/internal/store"
)

const (
	// UnknownGloss is shown for a word none of whose codes has a gloss.
	UnknownGloss = "Unknown"
	// GlossSeparator joins the glosses of a compound word.
	GlossSeparator = " + "
	// DefaultCacheEntries bounds the resolved-code cache.
	DefaultCacheEntries = 4096
)

// Entry is one resolved vocabulary word.
type Entry struct {
	StrongCode      string  `json:"strongCode"`
	OriginalWord    string  `json:"originalWord"`
	Gloss           string  `json:"gloss"`
	Transliteration *string `json:"transliteration"`
	Definition      *string `json:"definition"`
}

// Store is the lexicon data the resolver reads. LookupExact returns an error
// matching errors.ErrNotFound when no row has the given code.
type Store interface {
	LookupExact(ctx context.Context, code string) (*store.LexiconRecord, error)
	VocabularyForVerse(ctx context.Context, ref store.Ref) ([]store.VocabularyRow, error)
}

var parens = strings.NewReplacer("(", "", ")", "")

var stepNames = []string{metrics.StepExact, metrics.StepFlipCase, metrics.StepStripSuffix}

// resolution is the outcome of resolving one canonical code.
type resolution struct {
	record *store.LexiconRecord
	step   string
	// transient is set when a step failed with an error other than not
	// found; such results are not cached.
	transient bool
}

// Resolver turns vocabulary rows into entries. It is safe for concurrent use.
type Resolver struct {
	lexicon *Lazy
	metrics *metrics.Metrics
	cache   cache.Cache[string, resolution]
	group   singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMetrics records lookup steps and latencies on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithCacheSize bounds the resolved-code cache. Zero or less disables it.
func WithCacheSize(n int) Option {
	return func(r *Resolver) {
		if n <= 0 {
			r.cache = nil
			return
		}
		r.cache = cache.NewLRUCache[string, resolution](cache.Config[resolution]{MaxSize: n})
	}
}

// NewResolver returns a resolver reading from lexicon.
func NewResolver(lexicon *Lazy, opts ...Option) *Resolver {
	r := &Resolver{lexicon: lexicon}
	WithCacheSize(DefaultCacheEntries)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Available opens the lexicon if needed and reports whether it can be used.
// The error matches errors.ErrLexiconUnavailable.
func (r *Resolver) Available(ctx context.Context) error {
	_, err := r.store(ctx)
	return err
}

// Vocabulary returns the resolved words of a verse in position order. An
// unavailable lexicon or a failing vocabulary query yields an empty list.
func (r *Resolver) Vocabulary(ctx context.Context, ref store.Ref) []Entry {
	st, err := r.store(ctx)
	if err != nil {
		r.countVerse("unavailable")
		return []Entry{}
	}
	rows, err := st.VocabularyForVerse(ctx, ref)
	if err != nil {
		logging.SourceError(ctx, "lexicon", "vocabulary", err, "ref", ref.String())
		r.countSourceError()
		r.countVerse("unavailable")
		return []Entry{}
	}
	return r.resolveRows(ctx, st, rows)
}

// ResolveVerseVocabulary resolves vocabulary rows already loaded for a verse.
// Output order follows the rows. An unavailable lexicon yields an empty list.
func (r *Resolver) ResolveVerseVocabulary(ctx context.Context, rows []store.VocabularyRow) []Entry {
	st, err := r.store(ctx)
	if err != nil {
		r.countVerse("unavailable")
		return []Entry{}
	}
	return r.resolveRows(ctx, st, rows)
}

// Lookup resolves a single code field, such as the code attached to a tapped
// word. Parentheses around the code are ignored. ok is false when the lexicon
// is unavailable or none of the codes in the field resolved.
func (r *Resolver) Lookup(ctx context.Context, code string) (Entry, bool) {
	code = parens.Replace(code)
	st, err := r.store(ctx)
	if err != nil {
		return Entry{StrongCode: strongs.Normalize(code), Gloss: UnknownGloss}, false
	}
	return r.entry(ctx, st, store.VocabularyRow{StrongCode: code})
}

func (r *Resolver) store(ctx context.Context) (Store, error) {
	st, err := r.lexicon.Get(ctx)
	if r.metrics != nil {
		if err != nil {
			r.metrics.LexiconAvailable.Set(0)
		} else {
			r.metrics.LexiconAvailable.Set(1)
		}
	}
	return st, err
}

func (r *Resolver) resolveRows(ctx context.Context, st Store, rows []store.VocabularyRow) []Entry {
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		e, _ := r.entry(ctx, st, row)
		entries = append(entries, e)
	}
	r.countVerse("ok")
	return entries
}

// entry builds the entry for one row. Glosses come from every code in the
// field; definition and transliteration come from the root code only.
func (r *Resolver) entry(ctx context.Context, st Store, row store.VocabularyRow) (Entry, bool) {
	e := Entry{
		StrongCode:   strongs.Normalize(row.StrongCode),
		OriginalWord: row.OriginalWord,
		Gloss:        UnknownGloss,
	}

	found := false
	var glosses []string
	for _, code := range strongs.Extract(row.StrongCode) {
		rec := r.resolve(ctx, st, code)
		if rec == nil {
			continue
		}
		found = true
		if rec.Gloss.Valid {
			glosses = append(glosses, rec.Gloss.String)
		}
	}
	if len(glosses) > 0 {
		e.Gloss = strings.Join(glosses, GlossSeparator)
	}

	if root, ok := strongs.RootCode(row.StrongCode); ok {
		if rec := r.resolve(ctx, st, root); rec != nil {
			e.Transliteration = nullString(rec.Transliteration.String, rec.Transliteration.Valid)
			e.Definition = nullString(rec.Definition.String, rec.Definition.Valid)
		}
	}
	return e, found
}

// resolve runs the lookup chain for one code, sharing in-flight lookups and
// caching settled results by canonical code. The shared lookup runs to
// completion whatever happens to the caller that started it; a caller whose
// ctx ends first stops waiting and gets nil.
func (r *Resolver) resolve(ctx context.Context, st Store, code string) *store.LexiconRecord {
	canonical := strongs.Normalize(code)
	if r.cache != nil {
		if res, ok := r.cache.Get(canonical); ok {
			r.countStep(res.step)
			return res.record
		}
	}

	lookupCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(canonical, func() (any, error) {
		start := time.Now()
		res := r.lookupChain(lookupCtx, st, code)
		if r.metrics != nil {
			r.metrics.LookupLatency.Observe(time.Since(start).Seconds())
		}
		if r.cache != nil && !res.transient {
			r.cache.Put(canonical, res)
		}
		return res, nil
	})

	select {
	case v := <-ch:
		res := v.Val.(resolution)
		r.countStep(res.step)
		return res.record
	case <-ctx.Done():
		return nil
	}
}

func (r *Resolver) lookupChain(ctx context.Context, st Store, code string) resolution {
	variants := strongs.Variants(code)
	var res resolution
	for i, key := range variants {
		rec, err := st.LookupExact(ctx, key)
		if err == nil {
			res.record, res.step = rec, stepNames[i]
			if i > 0 {
				logging.LookupFallback(ctx, variants[0], key, res.step)
			}
			return res
		}
		if !errors.Is(err, errors.ErrNotFound) {
			res.transient = true
			logging.SourceError(ctx, "lexicon", "lookup", err, "code", key)
			r.countSourceError()
		}
	}

	logging.LookupMiss(ctx, code, variants)
	res.step = metrics.StepMiss
	if res.transient {
		res.step = metrics.StepError
	}
	return res
}

func (r *Resolver) countStep(step string) {
	if r.metrics != nil && step != "" {
		r.metrics.LookupsTotal.WithLabelValues(step).Inc()
	}
}

func (r *Resolver) countVerse(result string) {
	if r.metrics != nil {
		r.metrics.VersesResolvedTotal.WithLabelValues(result).Inc()
	}
}

func (r *Resolver) countSourceError() {
	if r.metrics != nil {
		r.metrics.SourceErrorsTotal.WithLabelValues("lexicon").Inc()
	}
}

func nullString(s string, valid bool) *string {
	if !valid {
		return nil
	}
	return &s
}
