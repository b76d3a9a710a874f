package zdict

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// dictMagic is the magic number at the start of an ordinary zstd dictionary.
const dictMagic = 0xEC30A437

// Dictionary is a zstd compression dictionary that primes compressors and
// decompressors with shared context, so small related payloads compress better
// than they would independently.
//
// A Dictionary is thread-safe and intended to be shared by reference among any
// number of Compressor / Decompressor instances. The content is immutable
// after construction; the only mutable state is an internal cache of digested
// forms, one per compression level, built lazily on first request.
//
// The dictionary content can be consumed in three forms:
//
//   - AsDigestedDict: precomputed per-level form, built once and reused.
//     Compression only.
//   - AsUndigestedDict: the content as-is; the engine digests it internally on
//     each load. Works for compression and decompression.
//   - AsPrefix: the content applied to the next frame only.
type Dictionary struct {
	content []byte
	isRaw   bool
	engine  Engine

	mu    sync.RWMutex
	cache map[int]Digested
	group singleflight.Group
}

// Option configures a Dictionary during construction.
type Option func(*Dictionary)

// WithRawContent marks the content as a "raw content" dictionary, free of any
// format restriction. Without this option the content is treated as an
// ordinary zstd dictionary, created by zstd functions and following the zstd
// dictionary format.
func WithRawContent() Option {
	return func(d *Dictionary) {
		d.isRaw = true
	}
}

// WithEngine replaces the build-selected compression engine used to produce
// digested forms.
func WithEngine(e Engine) Option {
	return func(d *Dictionary) {
		d.engine = e
	}
}

// New creates a Dictionary from already-built dictionary content.
//
// Empty content is rejected with ErrInvalidDictionary. Ordinary (non-raw)
// content is deliberately not validated against the zstd dictionary format
// here: a malformed ordinary dictionary may still be usable as raw content
// downstream, so format validation is deferred to the engine at first digest.
//
// The content is copied; the caller may reuse its slice afterwards.
func New(content []byte, opts ...Option) (*Dictionary, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidDictionary)
	}

	d := &Dictionary{
		content: append([]byte(nil), content...),
		cache:   make(map[int]Digested),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.engine == nil {
		d.engine = defaultEngine()
	}

	return d, nil
}

// AsDigestedDict returns the digested form of the dictionary for the given
// compression level, building and caching it on first request.
//
// Usage notes, in order of importance:
//  1. Some advanced parameters of a compressor may be overridden by parameters
//     embedded in the digested form.
//  2. Digested forms are cached per compression level; requesting the same
//     level again returns the cached handle without touching the engine.
//  3. There is no need to use this for decompression.
//
// Concurrent callers requesting the same uncached level trigger exactly one
// engine build; all of them observe its result. A failed build leaves the
// level's cache slot absent, so a later request retries from scratch.
func (d *Dictionary) AsDigestedDict(level int) (Digested, error) {
	d.mu.RLock()
	dd, ok := d.cache[level]
	d.mu.RUnlock()
	if ok {
		return dd, nil
	}

	v, err, _ := d.group.Do(strconv.Itoa(level), func() (any, error) {
		// A previous flight may have populated the slot between the lookup
		// above and this one being scheduled.
		d.mu.RLock()
		cached, found := d.cache[level]
		d.mu.RUnlock()
		if found {
			return cached, nil
		}

		built, buildErr := d.engine.Digest(d.content, d.isRaw, level)
		if buildErr != nil {
			return nil, buildErr
		}

		d.mu.Lock()
		d.cache[level] = built
		d.mu.Unlock()

		return built, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(Digested), nil
}

// AsUndigestedDict returns a view over the dictionary content for loading as
// an undigested dictionary.
//
// Usage notes:
//  1. Advanced parameters of the compressor are not overridden.
//  2. Loading an undigested dictionary is costly: the engine digests it
//     internally each time. When loading repeatedly, reuse a single compressor
//     instance instead of reloading.
//  3. Valid for both compression and decompression.
func (d *Dictionary) AsUndigestedDict() RawDict {
	return RawDict{content: d.content, raw: d.isRaw}
}

// AsPrefix returns a view over the dictionary content for loading as a
// prefix.
//
// Usage notes:
//  1. A prefix is compatible with long distance matching, while a dictionary
//     is not.
//  2. A prefix only works for the first frame; afterwards the compressor or
//     decompressor returns to no-prefix state.
//  3. Decompression must use the same prefix as compression did, otherwise the
//     decoded output is undefined.
func (d *Dictionary) AsPrefix() RawDict {
	return RawDict{content: d.content, raw: d.isRaw, prefix: true}
}

// DictID returns the dictionary ID embedded in an ordinary zstd dictionary's
// header, or 0 for raw-content dictionaries and content that does not carry
// the zstd dictionary magic.
func (d *Dictionary) DictID() uint32 {
	if d.isRaw || len(d.content) < 8 {
		return 0
	}
	if binary.LittleEndian.Uint32(d.content) != dictMagic {
		return 0
	}

	return binary.LittleEndian.Uint32(d.content[4:8])
}

// RawContent reports whether the dictionary was constructed as a raw-content
// dictionary.
func (d *Dictionary) RawContent() bool {
	return d.isRaw
}

// Content returns a copy of the dictionary content.
func (d *Dictionary) Content() []byte {
	return append([]byte(nil), d.content...)
}

// Len returns the size of the dictionary content in bytes.
func (d *Dictionary) Len() int {
	return len(d.content)
}

// String implements fmt.Stringer.
func (d *Dictionary) String() string {
	return fmt.Sprintf("<zdict.Dictionary dict_id=%d dict_size=%d>", d.DictID(), len(d.content))
}

// RawDict is a read-only view over a Dictionary's content, carrying the
// metadata a compressor or decompressor needs to load it. Views perform no
// engine-side precomputation and are not cached; they are cheap value types
// created on every accessor call.
type RawDict struct {
	content []byte
	raw     bool
	prefix  bool
}

// Bytes returns the underlying dictionary content. The returned slice is
// shared with the owning Dictionary and must not be modified.
func (v RawDict) Bytes() []byte {
	return v.content
}

// RawContent reports whether the content is a raw-content dictionary.
func (v RawDict) RawContent() bool {
	return v.raw
}

// Prefix reports whether the view carries one-shot prefix semantics.
func (v RawDict) Prefix() bool {
	return v.prefix
}

func (v RawDict) loadCompressor(c *Compressor) error {
	if len(v.content) == 0 {
		return fmt.Errorf("%w: empty dictionary view", ErrInvalidDictionary)
	}
	if v.prefix {
		return c.LoadPrefix(v)
	}

	return c.setUndigested(v)
}

func (v RawDict) loadDecompressor(d *Decompressor) error {
	if len(v.content) == 0 {
		return fmt.Errorf("%w: empty dictionary view", ErrInvalidDictionary)
	}
	if v.prefix {
		return d.LoadPrefix(v)
	}

	return d.setDict(v.content, v.raw)
}
