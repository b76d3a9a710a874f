//go:build cgozstd

package zdict

import (
	"fmt"

	"github.com/valyala/gozstd"
)

// zstdEngine is the cgo engine backend built on valyala/gozstd, which exposes
// libzstd's native digested dictionaries (ZSTD_CDict / ZSTD_DDict).
type zstdEngine struct{}

var _ Engine = zstdEngine{}

func defaultEngine() Engine { return zstdEngine{} }

// Digest builds a native digested dictionary for the requested level. libzstd
// detects raw-content dictionaries by the absence of the dictionary magic, so
// isRaw needs no explicit plumbing on this backend.
func (zstdEngine) Digest(content []byte, isRaw bool, level int) (Digested, error) {
	cd, err := gozstd.NewCDictLevel(content, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDigestBuild, err)
	}

	return &cdict{level: level, content: content, raw: isRaw, cd: cd}, nil
}

// cdict is a digested dictionary handle wrapping a native ZSTD_CDict, shared
// read-only across compressors.
type cdict struct {
	level   int
	content []byte
	raw     bool
	cd      *gozstd.CDict
}

var _ Digested = (*cdict)(nil)

func (d *cdict) Level() int { return d.level }

func (d *cdict) loadCompressor(c *Compressor) error {
	if c.be.cd != nil {
		c.be.cd.Release()
		c.be.cd = nil
	}
	c.be.shared = d.cd

	return nil
}

// loadDecompressor degrades to the underlying content; decompression has no
// use for the digested form itself.
func (d *cdict) loadDecompressor(dc *Decompressor) error {
	return dc.setDict(d.content, d.raw)
}

// compressorState holds the backend-specific compression state.
type compressorState struct {
	// cd is the compressor's private digested dictionary, built from an
	// undigested view at load time. Owned by the compressor.
	cd *gozstd.CDict
	// shared is a digested form's CDict, owned by the originating
	// Dictionary's cache.
	shared *gozstd.CDict
}

// decompressorState holds the backend-specific decompression state.
type decompressorState struct {
	dd *gozstd.DDict
}

func (c *Compressor) setUndigested(v RawDict) error {
	// libzstd digests the content here; the cost is borne once per load and
	// amortized across frames compressed with this instance. The window log is
	// fixed by the dictionary parameters on this backend.
	cd, err := gozstd.NewCDictLevel(v.content, c.level)
	if err != nil {
		return fmt.Errorf("zdict: load dictionary: %w", err)
	}
	if c.be.cd != nil {
		c.be.cd.Release()
	}
	c.be.cd = cd
	c.be.shared = nil

	return nil
}

func (c *Compressor) encodeFrame(src []byte) ([]byte, error) {
	if c.prefix != nil {
		prefix := c.prefix
		c.prefix = nil

		// One-shot: the digested prefix lives for this frame only. The prefix
		// replaces any loaded dictionary for this frame.
		cd, err := gozstd.NewCDictLevel(prefix, c.level)
		if err != nil {
			return nil, fmt.Errorf("zdict: load prefix: %w", err)
		}
		defer cd.Release()

		return gozstd.CompressDict(nil, src, cd), nil
	}

	if c.be.shared != nil {
		return gozstd.CompressDict(nil, src, c.be.shared), nil
	}
	if c.be.cd != nil {
		return gozstd.CompressDict(nil, src, c.be.cd), nil
	}

	return gozstd.CompressLevel(nil, src, c.level), nil
}

// Close releases the compressor's private digested dictionary. The compressor
// must not be used afterwards.
func (c *Compressor) Close() {
	if c.be.cd != nil {
		c.be.cd.Release()
		c.be.cd = nil
	}
	c.be.shared = nil
	c.prefix = nil
}

func (d *Decompressor) setDict(content []byte, raw bool) error {
	dd, err := gozstd.NewDDict(content)
	if err != nil {
		return fmt.Errorf("zdict: load dictionary: %w", err)
	}
	if d.be.dd != nil {
		d.be.dd.Release()
	}
	d.be.dd = dd

	return nil
}

func (d *Decompressor) decodeFrame(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	if d.prefix != nil {
		prefix := d.prefix
		d.prefix = nil

		dd, err := gozstd.NewDDict(prefix)
		if err != nil {
			return nil, fmt.Errorf("zdict: load prefix: %w", err)
		}
		defer dd.Release()

		out, err := gozstd.DecompressDict(nil, src, dd)
		if err != nil {
			return nil, fmt.Errorf("zdict: decompression failed: %w", err)
		}

		return out, nil
	}

	if d.be.dd != nil {
		out, err := gozstd.DecompressDict(nil, src, d.be.dd)
		if err != nil {
			return nil, fmt.Errorf("zdict: decompression failed: %w", err)
		}

		return out, nil
	}

	out, err := gozstd.Decompress(nil, src)
	if err != nil {
		return nil, fmt.Errorf("zdict: decompression failed: %w", err)
	}

	return out, nil
}

// Close releases the decompressor's private digested dictionary. The
// decompressor must not be used afterwards.
func (d *Decompressor) Close() {
	if d.be.dd != nil {
		d.be.dd.Release()
		d.be.dd = nil
	}
	d.prefix = nil
}
