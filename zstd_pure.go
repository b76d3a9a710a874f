//go:build !cgozstd

package zdict

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/zdict/internal/hash"
)

// zstdEncoderPool pools default-configured encoders for the plain (no
// dictionary, no prefix) path. klauspost encoders are designed for reuse and
// operate without allocations after a warmup.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(DefaultCompressionLevel)),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			// Never happens with valid options.
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}
		return encoder
	},
}

// zstdDecoderPool pools decoders for the plain path.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			// Never happens with valid options.
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

// zstdEngine is the pure Go engine backend built on klauspost/compress/zstd.
type zstdEngine struct{}

var _ Engine = zstdEngine{}

func defaultEngine() Engine { return zstdEngine{} }

// Digest builds a shared encoder with the dictionary loaded at the requested
// level. Loading the dictionary into the encoder is the expensive digesting
// step; EncodeAll on the resulting encoder is safe for concurrent use, so one
// handle serves any number of compressors.
func (zstdEngine) Digest(content []byte, isRaw bool, level int) (Digested, error) {
	enc, err := newZstdEncoder(content, isRaw, level, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDigestBuild, err)
	}

	return &cdict{level: level, content: content, raw: isRaw, enc: enc}, nil
}

// cdict is a digested dictionary handle: an encoder primed with the dictionary
// at a fixed compression level, shared read-only across compressors.
type cdict struct {
	level   int
	content []byte
	raw     bool
	enc     *zstd.Encoder
}

var _ Digested = (*cdict)(nil)

func (d *cdict) Level() int { return d.level }

func (d *cdict) loadCompressor(c *Compressor) error {
	if c.be.enc != nil {
		c.be.enc.Close()
		c.be.enc = nil
	}
	c.be.shared = d.enc

	return nil
}

// loadDecompressor degrades to the underlying content; decompression has no
// use for the digested form itself.
func (d *cdict) loadDecompressor(dc *Decompressor) error {
	return dc.setDict(d.content, d.raw)
}

// compressorState holds the backend-specific compression state.
type compressorState struct {
	// enc is the compressor's private encoder, carrying either an undigested
	// dictionary or custom plain options. Owned by the compressor.
	enc *zstd.Encoder
	// shared is a digested form's encoder, owned by the originating
	// Dictionary's cache.
	shared *zstd.Encoder
}

// decompressorState holds the backend-specific decompression state.
type decompressorState struct {
	// dec is a decoder with the loaded dictionary registered, nil when no
	// dictionary is loaded.
	dec *zstd.Decoder
}

// newZstdEncoder builds an encoder for the given level and window, with the
// dictionary content loaded when non-nil.
func newZstdEncoder(content []byte, isRaw bool, level, windowLog int) (*zstd.Encoder, error) {
	opts := []zstd.EOption{
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderCRC(false),
	}
	if windowLog > 0 {
		opts = append(opts, zstd.WithWindowSize(1<<windowLog))
	}
	if content != nil {
		if isRaw {
			opts = append(opts, zstd.WithEncoderDictRaw(hash.DictID(content), content))
		} else {
			opts = append(opts, zstd.WithEncoderDict(content))
		}
	}

	return zstd.NewWriter(nil, opts...)
}

func (c *Compressor) setUndigested(v RawDict) error {
	enc, err := newZstdEncoder(v.content, v.raw, c.level, c.windowLog)
	if err != nil {
		return fmt.Errorf("zdict: load dictionary: %w", err)
	}
	if c.be.enc != nil {
		c.be.enc.Close()
	}
	c.be.enc = enc
	c.be.shared = nil

	return nil
}

func (c *Compressor) encodeFrame(src []byte) ([]byte, error) {
	if c.prefix != nil {
		prefix := c.prefix
		c.prefix = nil

		// A prefix references the content for a single frame only, so the
		// encoder is throwaway. The prefix replaces any loaded dictionary for
		// this frame.
		enc, err := newZstdEncoder(prefix, true, c.level, c.windowLog)
		if err != nil {
			return nil, fmt.Errorf("zdict: load prefix: %w", err)
		}
		defer enc.Close()

		return enc.EncodeAll(src, nil), nil
	}

	if c.be.shared != nil {
		return c.be.shared.EncodeAll(src, nil), nil
	}
	if c.be.enc != nil {
		return c.be.enc.EncodeAll(src, nil), nil
	}

	if c.level == DefaultCompressionLevel && c.windowLog == 0 {
		enc := zstdEncoderPool.Get().(*zstd.Encoder)
		defer zstdEncoderPool.Put(enc)

		return enc.EncodeAll(src, nil), nil
	}

	// Custom plain options: build the private encoder once and keep it.
	enc, err := newZstdEncoder(nil, false, c.level, c.windowLog)
	if err != nil {
		return nil, fmt.Errorf("zdict: create encoder: %w", err)
	}
	c.be.enc = enc

	return enc.EncodeAll(src, nil), nil
}

// Close releases the compressor's private encoder. The compressor must not be
// used afterwards.
func (c *Compressor) Close() {
	if c.be.enc != nil {
		c.be.enc.Close()
		c.be.enc = nil
	}
	c.be.shared = nil
	c.prefix = nil
}

func (d *Decompressor) setDict(content []byte, raw bool) error {
	opts := []zstd.DOption{
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(false),
	}
	if raw {
		opts = append(opts, zstd.WithDecoderDictRaw(hash.DictID(content), content))
	} else {
		opts = append(opts, zstd.WithDecoderDicts(content))
	}

	dec, err := zstd.NewReader(nil, opts...)
	if err != nil {
		return fmt.Errorf("zdict: load dictionary: %w", err)
	}
	if d.be.dec != nil {
		d.be.dec.Close()
	}
	d.be.dec = dec

	return nil
}

func (d *Decompressor) decodeFrame(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	if d.prefix != nil {
		prefix := d.prefix
		d.prefix = nil

		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderDictRaw(hash.DictID(prefix), prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("zdict: load prefix: %w", err)
		}
		defer dec.Close()

		out, err := dec.DecodeAll(src, nil)
		if err != nil {
			return nil, fmt.Errorf("zdict: decompression failed: %w", err)
		}

		return out, nil
	}

	if d.be.dec != nil {
		out, err := d.be.dec.DecodeAll(src, nil)
		if err != nil {
			return nil, fmt.Errorf("zdict: decompression failed: %w", err)
		}

		return out, nil
	}

	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("zdict: decompression failed: %w", err)
	}

	return out, nil
}

// Close releases the decompressor's private decoder. The decompressor must not
// be used afterwards.
func (d *Decompressor) Close() {
	if d.be.dec != nil {
		d.be.dec.Close()
		d.be.dec = nil
	}
	d.prefix = nil
}
