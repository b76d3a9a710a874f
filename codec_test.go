//go:build !cgozstd

package zdict

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleDictContent builds raw dictionary content resembling the payloads
// below, so dictionary-primed compression has shared substrings to match.
func sampleDictContent() []byte {
	var buf bytes.Buffer
	for i := 0; i < 64; i++ {
		buf.WriteString(`{"metric":"cpu.usage","host":"server-01","region":"us-west-2","value":`)
		buf.WriteString("0.000000}\n")
	}

	return buf.Bytes()
}

func samplePayload(n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		buf.WriteString(`{"metric":"cpu.usage","host":"server-01","region":"us-west-2","value":`)
		buf.WriteByte(byte('0' + i%10))
		buf.WriteString(".731024}\n")
	}

	return buf.Bytes()
}

func TestPlainRoundTrip(t *testing.T) {
	payload := samplePayload(20)

	comp := NewCompressor()
	frame, err := comp.Compress(payload)
	require.NoError(t, err)
	require.NotEmpty(t, frame)

	decomp := NewDecompressor()
	out, err := decomp.Decompress(frame)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestUndigestedRoundTrip(t *testing.T) {
	d, err := New(sampleDictContent(), WithRawContent())
	require.NoError(t, err)

	payload := samplePayload(10)

	comp := NewCompressor()
	require.NoError(t, comp.LoadDictionary(d.AsUndigestedDict()))
	defer comp.Close()

	frame, err := comp.Compress(payload)
	require.NoError(t, err)

	decomp := NewDecompressor()
	require.NoError(t, decomp.LoadDictionary(d.AsUndigestedDict()))
	defer decomp.Close()

	out, err := decomp.Decompress(frame)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDigestedCompressUndigestedDecompress(t *testing.T) {
	d, err := New(sampleDictContent(), WithRawContent())
	require.NoError(t, err)

	payload := samplePayload(10)

	digested, err := d.AsDigestedDict(3)
	require.NoError(t, err)
	require.Equal(t, 3, digested.Level())

	comp := NewCompressor()
	require.NoError(t, comp.LoadDictionary(digested))
	defer comp.Close()

	frame, err := comp.Compress(payload)
	require.NoError(t, err)

	// The digested form is compression-oriented; the decompression side pairs
	// it with the undigested view.
	decomp := NewDecompressor()
	require.NoError(t, decomp.LoadDictionary(d.AsUndigestedDict()))
	defer decomp.Close()

	out, err := decomp.Decompress(frame)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDigestedHandleOnDecompressor(t *testing.T) {
	// Accepted for convenience; degrades to the underlying content.
	d, err := New(sampleDictContent(), WithRawContent())
	require.NoError(t, err)

	digested, err := d.AsDigestedDict(3)
	require.NoError(t, err)

	comp := NewCompressor()
	require.NoError(t, comp.LoadDictionary(digested))
	defer comp.Close()

	payload := samplePayload(6)
	frame, err := comp.Compress(payload)
	require.NoError(t, err)

	decomp := NewDecompressor()
	require.NoError(t, decomp.LoadDictionary(digested))
	defer decomp.Close()

	out, err := decomp.Decompress(frame)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDictionaryReuseAcrossFrames(t *testing.T) {
	d, err := New(sampleDictContent(), WithRawContent())
	require.NoError(t, err)

	comp := NewCompressor()
	require.NoError(t, comp.LoadDictionary(d.AsUndigestedDict()))
	defer comp.Close()

	decomp := NewDecompressor()
	require.NoError(t, decomp.LoadDictionary(d.AsUndigestedDict()))
	defer decomp.Close()

	// A loaded dictionary applies to every frame, unlike a prefix.
	for i := 1; i <= 4; i++ {
		payload := samplePayload(i * 3)
		frame, compErr := comp.Compress(payload)
		require.NoError(t, compErr)

		out, decErr := decomp.Decompress(frame)
		require.NoError(t, decErr)
		require.Equal(t, payload, out)
	}
}

func TestPrefixAppliesToFirstFrameOnly(t *testing.T) {
	d, err := New(sampleDictContent(), WithRawContent())
	require.NoError(t, err)

	payload1 := samplePayload(8)
	payload2 := samplePayload(12)

	comp := NewCompressor()
	require.NoError(t, comp.LoadPrefix(d.AsPrefix()))

	frame1, err := comp.Compress(payload1)
	require.NoError(t, err)
	frame2, err := comp.Compress(payload2)
	require.NoError(t, err)

	decomp := NewDecompressor()
	require.NoError(t, decomp.LoadPrefix(d.AsPrefix()))

	out1, err := decomp.Decompress(frame1)
	require.NoError(t, err)
	assert.Equal(t, payload1, out1)

	// The prefix was consumed by frame 1; frame 2 decodes in no-prefix state.
	out2, err := decomp.Decompress(frame2)
	require.NoError(t, err)
	assert.Equal(t, payload2, out2)

	// Frame 2 was produced as if no prefix were ever set: a fresh decompressor
	// with no prefix decodes it, while frame 1 needs the prefix.
	fresh := NewDecompressor()
	out2b, err := fresh.Decompress(frame2)
	require.NoError(t, err)
	assert.Equal(t, payload2, out2b)

	out1b, err := fresh.Decompress(frame1)
	if err == nil {
		assert.NotEqual(t, payload1, out1b)
	}
}

func TestPrefixViaLoadDictionary(t *testing.T) {
	// Passing the prefix view to LoadDictionary routes to LoadPrefix.
	d, err := New(sampleDictContent(), WithRawContent())
	require.NoError(t, err)

	payload := samplePayload(5)

	comp := NewCompressor()
	require.NoError(t, comp.LoadDictionary(d.AsPrefix()))

	frame, err := comp.Compress(payload)
	require.NoError(t, err)

	decomp := NewDecompressor()
	require.NoError(t, decomp.LoadDictionary(d.AsPrefix()))

	out, err := decomp.Decompress(frame)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDecompressWithoutDictionary(t *testing.T) {
	d, err := New(sampleDictContent(), WithRawContent())
	require.NoError(t, err)

	comp := NewCompressor()
	require.NoError(t, comp.LoadDictionary(d.AsUndigestedDict()))
	defer comp.Close()

	payload := samplePayload(8)
	frame, err := comp.Compress(payload)
	require.NoError(t, err)

	// Without the dictionary the frame must not decode to the original.
	decomp := NewDecompressor()
	out, err := decomp.Decompress(frame)
	if err == nil {
		assert.NotEqual(t, payload, out)
	}
}

func TestCompressorOptions(t *testing.T) {
	payload := samplePayload(16)

	tests := []struct {
		name string
		opts []CompressorOption
	}{
		{"fast level", []CompressorOption{WithCompressionLevel(1)}},
		{"high level", []CompressorOption{WithCompressionLevel(19)}},
		{"custom window", []CompressorOption{WithCompressionLevel(5), WithWindowLog(20)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp := NewCompressor(tt.opts...)
			defer comp.Close()

			frame, err := comp.Compress(payload)
			require.NoError(t, err)

			out, err := NewDecompressor().Decompress(frame)
			require.NoError(t, err)
			assert.Equal(t, payload, out)
		})
	}
}

func TestLoadDictionaryInvalid(t *testing.T) {
	comp := NewCompressor()
	require.ErrorIs(t, comp.LoadDictionary(nil), ErrInvalidDictionary)
	require.ErrorIs(t, comp.LoadDictionary(RawDict{}), ErrInvalidDictionary)
	require.ErrorIs(t, comp.LoadPrefix(RawDict{}), ErrInvalidDictionary)

	decomp := NewDecompressor()
	require.ErrorIs(t, decomp.LoadDictionary(nil), ErrInvalidDictionary)
	require.ErrorIs(t, decomp.LoadDictionary(RawDict{}), ErrInvalidDictionary)
	require.ErrorIs(t, decomp.LoadPrefix(RawDict{}), ErrInvalidDictionary)
}

func TestUndigestedLoadRejectsMalformedOrdinary(t *testing.T) {
	// An ordinary (non-raw) view must follow the zstd dictionary format; the
	// engine rejects it at load time, after permissive construction let it
	// through.
	d, err := New([]byte("garbage bytes, not a structured dictionary"))
	require.NoError(t, err)

	comp := NewCompressor()
	require.Error(t, comp.LoadDictionary(d.AsUndigestedDict()))

	decomp := NewDecompressor()
	require.Error(t, decomp.LoadDictionary(d.AsUndigestedDict()))
}

func TestDigestedHandleOutlivesDictionary(t *testing.T) {
	content := sampleDictContent()
	payload := samplePayload(7)

	var digested Digested
	{
		d, err := New(content, WithRawContent())
		require.NoError(t, err)
		digested, err = d.AsDigestedDict(3)
		require.NoError(t, err)
	}
	runtime.GC()

	// The handle stays valid for holders that obtained it before the owning
	// dictionary was released.
	comp := NewCompressor()
	require.NoError(t, comp.LoadDictionary(digested))
	defer comp.Close()

	frame, err := comp.Compress(payload)
	require.NoError(t, err)

	d2, err := New(content, WithRawContent())
	require.NoError(t, err)

	decomp := NewDecompressor()
	require.NoError(t, decomp.LoadDictionary(d2.AsUndigestedDict()))
	defer decomp.Close()

	out, err := decomp.Decompress(frame)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDecompressEmptyInput(t *testing.T) {
	out, err := NewDecompressor().Decompress(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
