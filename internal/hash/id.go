package hash

import "github.com/cespare/xxhash/v2"

// DictID derives a stable 32-bit dictionary ID from raw dictionary content by
// folding its xxHash64. Raw-content dictionaries carry no embedded ID, but the
// compressing and decompressing sides must still agree on one so that frames
// reference the dictionary they were built with.
//
// The result is never 0, which zstd reserves for "no dictionary".
func DictID(content []byte) uint32 {
	h := xxhash.Sum64(content)
	id := uint32(h>>32) ^ uint32(h)
	if id == 0 {
		id = 1
	}

	return id
}
