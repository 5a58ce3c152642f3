package metainfo

import (
	"errors"
)

// ErrUnknownField signals a dictionary key the strict extractor does not accept
var ErrUnknownField = errors.New("unknown field")

// ErrMissingField signals a required dictionary key that is absent
var ErrMissingField = errors.New("missing field")

// ErrInvalidInfo signals an info entry that is not a dictionary
var ErrInvalidInfo = errors.New("invalid info dictionary")

// ErrInvalidPeers signals a peers entry in neither the compact nor the dictionary form
var ErrInvalidPeers = errors.New("invalid peers field")
