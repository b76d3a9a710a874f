package zdict

// Engine builds digested dictionary forms from raw dictionary content.
//
// The default engine is selected at build time: the pure Go backend based on
// github.com/klauspost/compress/zstd, or the cgo backend based on
// github.com/valyala/gozstd when built with the cgozstd tag. A custom engine
// can be injected with WithEngine, which is mainly useful for testing the
// caching behavior without paying real digest costs.
type Engine interface {
	// Digest builds the digested form of the dictionary content for the given
	// compression level. isRaw indicates a raw-content dictionary with no
	// internal structure; when false, the content must follow the zstd
	// dictionary format and the engine rejects it otherwise.
	//
	// Digest is expensive. Callers are expected to cache the result; the
	// returned handle must be safe for shared, read-only use by any number of
	// concurrent compressors.
	Digest(content []byte, isRaw bool, level int) (Digested, error)
}

// Dict is implemented by every dictionary form that can be loaded into a
// Compressor or Decompressor: digested handles returned by
// Dictionary.AsDigestedDict, and RawDict views returned by
// Dictionary.AsUndigestedDict and Dictionary.AsPrefix.
type Dict interface {
	loadCompressor(c *Compressor) error
	loadDecompressor(d *Decompressor) error
}

// Digested is an opaque, engine-produced dictionary form bound to a single
// compression level. It is expensive to build once and cheap to reuse, and is
// shared read-only across all compressors that load it.
type Digested interface {
	Dict

	// Level returns the compression level the digested form was built for.
	Level() int
}
