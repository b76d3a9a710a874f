package zdict

import "errors"

var (
	// ErrInvalidDictionary indicates the dictionary content is empty or
	// otherwise unusable at construction time.
	ErrInvalidDictionary = errors.New("zdict: invalid dictionary content")

	// ErrDigestBuild indicates the compression engine rejected the dictionary
	// content while building a digested form for a compression level.
	//
	// The error is local to that AsDigestedDict call: the dictionary itself and
	// digested forms already cached for other levels remain valid, and the
	// failed level may be requested again.
	ErrDigestBuild = errors.New("zdict: digested dictionary build failed")
)
