package zdict

import "fmt"

// DefaultCompressionLevel is the zstd compression level used when none is
// configured.
const DefaultCompressionLevel = 3

// Compressor compresses payloads one frame at a time, optionally primed with
// a dictionary or a prefix.
//
// A Compressor is a per-worker object and is not safe for concurrent use; the
// shared object is the Dictionary, which any number of compressors may load
// from concurrently.
//
// Memory management follows the EncodeAll contract: the returned slice is
// newly allocated and owned by the caller, and the input slice is not
// modified.
type Compressor struct {
	level     int
	windowLog int
	prefix    []byte
	be        compressorState
}

// CompressorOption configures a Compressor.
type CompressorOption func(*Compressor)

// WithCompressionLevel sets the zstd compression level. Levels outside the
// engine's supported range are clamped by the engine.
//
// The level applies to plain, undigested-dictionary, and prefix compression.
// Loading a digested dictionary overrides it with the level the digested form
// was built for.
func WithCompressionLevel(level int) CompressorOption {
	return func(c *Compressor) {
		c.level = level
	}
}

// WithWindowLog sets the log2 of the compression window size. Zero keeps the
// engine default. This is an advanced parameter: it is preserved when loading
// an undigested dictionary and overridden when loading a digested one.
func WithWindowLog(log int) CompressorOption {
	return func(c *Compressor) {
		c.windowLog = log
	}
}

// NewCompressor creates a Compressor with the given options.
func NewCompressor(opts ...CompressorOption) *Compressor {
	c := &Compressor{level: DefaultCompressionLevel}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// LoadDictionary loads a dictionary form into the compressor, replacing any
// previously loaded dictionary.
//
// Accepted forms are the handles returned by Dictionary.AsDigestedDict and
// the views returned by Dictionary.AsUndigestedDict / Dictionary.AsPrefix.
// Loading an undigested view digests the content here, at load time; reuse
// the compressor across frames instead of reloading per frame. A prefix view
// is routed to LoadPrefix.
func (c *Compressor) LoadDictionary(d Dict) error {
	if d == nil {
		return fmt.Errorf("%w: nil dictionary", ErrInvalidDictionary)
	}

	return d.loadCompressor(c)
}

// LoadPrefix arms a one-shot prefix: the next call to Compress references the
// prefix content, and the compressor then returns to no-prefix state.
// Decompression of that frame must use the identical prefix.
func (c *Compressor) LoadPrefix(v RawDict) error {
	if len(v.Bytes()) == 0 {
		return fmt.Errorf("%w: empty prefix", ErrInvalidDictionary)
	}
	c.prefix = v.Bytes()

	return nil
}

// Compress compresses data into a single zstd frame using the currently
// loaded dictionary, the armed prefix, or neither.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	return c.encodeFrame(data)
}
