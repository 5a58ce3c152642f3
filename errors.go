package bencode

import (
	"errors"
)

// ErrIncompleteInput signals that the input ended before the current value was
// complete; more bytes could turn it into a valid document
var ErrIncompleteInput = errors.New("incomplete input")

// ErrUnexpectedByte signals a byte that cannot start a value
var ErrUnexpectedByte = errors.New("byte cannot start a value")

// ErrMalformedLengthPrefix signals a string whose decimal length prefix is
// missing, too long or not followed by the ':' separator
var ErrMalformedLengthPrefix = errors.New("malformed length prefix")

// ErrInvalidInteger signals an integer token with an empty, oversized or
// unparseable digit run
var ErrInvalidInteger = errors.New("invalid integer")

// ErrUnterminatedContainer signals a list or dictionary holding a byte that
// can neither start a value nor terminate the container
var ErrUnterminatedContainer = errors.New("unterminated container")

// ErrNonTextKey signals a dictionary key that is not valid UTF-8
var ErrNonTextKey = errors.New("dictionary key is not valid UTF-8")

// ErrTrailingBytes signals leftover bytes that cannot form another value
var ErrTrailingBytes = errors.New("trailing bytes after value")

// ErrMaxDepthExceeded signals a value nested deeper than MaxDepth
var ErrMaxDepthExceeded = errors.New("maximum nesting depth exceeded")

// ErrTypeMismatch signals a conversion between a value and an incompatible
// target or source shape
var ErrTypeMismatch = errors.New("type mismatch")

// ErrOutOfRange signals a numeric narrowing that does not fit the target
var ErrOutOfRange = errors.New("value out of range")

// ErrNonStringKey signals a map whose keys do not serialize to text
var ErrNonStringKey = errors.New("map key is not a string")

// ErrUnsupportedType signals a shape the format cannot represent
var ErrUnsupportedType = errors.New("unsupported type")

// ErrNilValue signals a nil input where a value was required
var ErrNilValue = errors.New("nil value")

// ErrInvalidTarget signals an unmarshal target that is not a non-nil pointer
var ErrInvalidTarget = errors.New("target must be a non-nil pointer")
