package lexicon

import (
	"context"
	"io"
	"sync"

	"github.com/FocuswithJustin/OpenWord/core/errors"
	"github.com/FocuswithJustin/OpenWord/internal/store"
)

// Opener opens the lexicon store.
type Opener func(ctx context.Context) (Store, error)

// OpenFile returns an Opener for a lexicon database file.
func OpenFile(path string) Opener {
	return func(ctx context.Context) (Store, error) {
		return store.OpenLexicon(ctx, path)
	}
}

// Lazy is a lexicon handle opened on first use.
//
// Exactly one open attempt is made. Callers racing the first use wait for it
// and then all see the same store, or the same unavailable error: a failed
// open is not retried for the lifetime of the handle. The attempt ignores the
// cancellation of the caller that triggers it.
type Lazy struct {
	open Opener

	mu    sync.Mutex
	done  bool
	store Store
	err   error
}

// NewLazy returns a handle that opens the store with open on first use.
func NewLazy(open Opener) *Lazy {
	return &Lazy{open: open}
}

// Ready returns a handle for an already open store.
func Ready(s Store) *Lazy {
	return &Lazy{done: true, store: s}
}

// Get returns the store, opening it on the first call. A failed open yields
// an error matching errors.ErrLexiconUnavailable that carries the cause.
func (l *Lazy) Get(ctx context.Context) (Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.done {
		l.done = true
		s, err := l.open(context.WithoutCancel(ctx))
		switch {
		case err != nil:
			l.err = errors.NewUnavailable("lexicon", err)
		case s == nil:
			l.err = errors.NewUnavailable("lexicon", nil)
		default:
			l.store = s
		}
	}
	return l.store, l.err
}

// Close closes the store if it was opened and can be closed. The handle is
// not reopened: later calls to Get report the lexicon unavailable.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.store
	l.done, l.store = true, nil
	if l.err == nil {
		l.err = errors.NewUnavailable("lexicon", errors.ErrClosed)
	}
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
