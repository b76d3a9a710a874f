// Package zdict provides a shared, thread-safe zstd compression dictionary
// with per-level caching of digested forms.
//
// A dictionary primes a compressor or decompressor with shared context (common
// substrings, raw byte prefixes) so that small, related payloads compress
// better than they would independently. Training dictionaries is out of scope:
// this package consumes already-built dictionary content.
//
// # Overview
//
// The central type is Dictionary. It is created once from dictionary content
// and then shared by reference among any number of Compressor / Decompressor
// instances. The content can be consumed in three forms with different cost
// and validity rules:
//
//   - Digested (AsDigestedDict): an engine-built form bound to one compression
//     level, expensive to build and cheap to reuse. Built at most once per
//     level over the dictionary's lifetime, no matter how many goroutines
//     request it concurrently. Compression only. Loading it may override some
//     advanced compressor parameters with ones embedded in the digested form.
//   - Undigested (AsUndigestedDict): the content as-is; the engine digests it
//     internally on every load, so reuse the compressor instance instead of
//     reloading. Advanced compressor parameters are preserved. Valid for both
//     compression and decompression.
//   - Prefix (AsPrefix): the content referenced by the next frame only, after
//     which the consumer reverts to no-prefix state. Decompression must use
//     the identical prefix. Compatible with long distance matching.
//
// # Basic Usage
//
//	zd, err := zdict.New(dictContent)
//	if err != nil {
//	    return err
//	}
//
//	comp := zdict.NewCompressor(zdict.WithCompressionLevel(3))
//	digested, err := zd.AsDigestedDict(3)
//	if err != nil {
//	    return err
//	}
//	if err := comp.LoadDictionary(digested); err != nil {
//	    return err
//	}
//	frame, err := comp.Compress(payload)
//
//	decomp := zdict.NewDecompressor()
//	if err := decomp.LoadDictionary(zd.AsUndigestedDict()); err != nil {
//	    return err
//	}
//	restored, err := decomp.Decompress(frame)
//
// Raw-content dictionaries (arbitrary bytes with no internal format) are
// created with zdict.New(content, zdict.WithRawContent()).
//
// # Engine Backends
//
// The digesting and frame coding work is delegated to an engine selected at
// build time: a pure Go backend (github.com/klauspost/compress/zstd, the
// default) or a cgo backend (github.com/valyala/gozstd) enabled with the
// cgozstd build tag. Frames are only guaranteed to round-trip within one
// backend when a raw-content dictionary or prefix is involved, because the two
// backends identify unstructured content differently.
package zdict
