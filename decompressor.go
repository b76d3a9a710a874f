package zdict

import "fmt"

// Decompressor decompresses zstd frames one frame at a time, optionally primed
// with a dictionary or a prefix.
//
// Like Compressor, a Decompressor is a per-worker object and is not safe for
// concurrent use.
type Decompressor struct {
	prefix []byte
	be     decompressorState
}

// NewDecompressor creates a Decompressor.
func NewDecompressor() *Decompressor {
	return &Decompressor{}
}

// LoadDictionary registers a dictionary with the decompressor, replacing any
// previously loaded one.
//
// Decompression never needs a digested form; a digested handle is accepted for
// convenience and degrades to its underlying content. A prefix view is routed
// to LoadPrefix.
func (d *Decompressor) LoadDictionary(dict Dict) error {
	if dict == nil {
		return fmt.Errorf("%w: nil dictionary", ErrInvalidDictionary)
	}

	return dict.loadDecompressor(d)
}

// LoadPrefix arms a one-shot prefix: the next call to Decompress references
// the prefix content, and the decompressor then returns to no-prefix state.
// The prefix must be identical to the one used at compression time, otherwise
// the decoded output is undefined.
func (d *Decompressor) LoadPrefix(v RawDict) error {
	if len(v.Bytes()) == 0 {
		return fmt.Errorf("%w: empty prefix", ErrInvalidDictionary)
	}
	d.prefix = v.Bytes()

	return nil
}

// Decompress decompresses a single zstd frame using the registered dictionary,
// the armed prefix, or neither.
func (d *Decompressor) Decompress(data []byte) ([]byte, error) {
	return d.decodeFrame(data)
}
