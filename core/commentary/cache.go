package commentary

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/OpenWord/core/cache"
)

// Default render cache bounds. Long RTF commentaries dominate the byte limit.
const (
	DefaultCacheEntries = 512
	DefaultCacheBytes   = 8 << 20
)

// RenderFunc observes one rendering: the body kind and whether the text came
// from the cache.
type RenderFunc func(kind Kind, cached bool)

// Renderer renders bodies through an LRU cache keyed by the BLAKE3 digest of
// the kind and raw text, so identical entries shared between sources are
// decoded once.
type Renderer struct {
	cache    cache.Cache[string, string]
	observer RenderFunc
}

// NewRenderer creates a renderer whose cache holds at most maxEntries rendered
// texts totalling maxBytes. Zero values select the defaults; a negative
// maxEntries disables caching.
func NewRenderer(maxEntries int, maxBytes int64) *Renderer {
	if maxEntries < 0 {
		return &Renderer{}
	}
	if maxEntries == 0 {
		maxEntries = DefaultCacheEntries
	}
	if maxBytes == 0 {
		maxBytes = DefaultCacheBytes
	}
	return &Renderer{
		cache: cache.NewLRUCache[string, string](cache.Config[string]{
			MaxSize:  maxEntries,
			MaxBytes: maxBytes,
			SizeOf:   cache.StringSize,
		}),
	}
}

// Observe registers a function called after every Text call. It must be set
// before the renderer is shared.
func (r *Renderer) Observe(fn RenderFunc) {
	r.observer = fn
}

// Text renders a body, consulting the cache first.
func (r *Renderer) Text(b Body) string {
	if r.cache == nil {
		r.observe(b.kind, false)
		return b.Text()
	}

	key := Key(b)
	if text, ok := r.cache.Get(key); ok {
		r.observe(b.kind, true)
		return text
	}
	text := b.Text()
	r.cache.Put(key, text)
	r.observe(b.kind, false)
	return text
}

// Stats returns the render cache statistics.
func (r *Renderer) Stats() cache.Stats {
	if r.cache == nil {
		return cache.Stats{}
	}
	return r.cache.Stats()
}

func (r *Renderer) observe(kind Kind, cached bool) {
	if r.observer != nil {
		r.observer(kind, cached)
	}
}

// Key returns the hex BLAKE3 digest identifying a body.
func Key(b Body) string {
	h := blake3.New()
	h.Write([]byte{byte(b.kind)})
	h.Write([]byte(b.raw))
	return hex.EncodeToString(h.Sum(nil))
}
