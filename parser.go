package bencode

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// MaxDepth is the maximum nesting depth accepted by the parser and the
// writer. Deeper documents fail with ErrMaxDepthExceeded instead of
// exhausting the stack.
const MaxDepth = 1024

// maxDigits caps the digit run of both integers and length prefixes.
const maxDigits = 20

// Parse decodes one value from the front of data and returns it together
// with the remaining bytes. String, text and dictionary values in the result
// alias data; the buffer must outlive them (see Value.Clone).
//
// A truncated document fails with ErrIncompleteInput, distinguishable via
// errors.Is from every structural error category.
func Parse(data []byte) (Value, []byte, error) {
	return parseValue(data, 0)
}

// ParseAll decodes the whole of data, applying the grouping rule: zero
// values decode to Empty, exactly one value decodes to that value, two or
// more decode to a List. A single-element document is therefore not
// distinguishable from a one-value stream without external context; callers
// that need the distinction should use Parse.
//
// Bytes that cannot form another value fail with ErrTrailingBytes, unless
// they are a truncated value, which fails with ErrIncompleteInput.
func ParseAll(data []byte) (Value, error) {
	var values []Value

	rest := data
	for len(rest) > 0 {
		value, remaining, err := Parse(rest)
		if err != nil {
			if errors.Is(err, ErrIncompleteInput) {
				return Value{}, err
			}

			return Value{}, fmt.Errorf("%w: %d undecodable bytes at offset %d", ErrTrailingBytes, len(rest), len(data)-len(rest))
		}

		values = append(values, value)
		rest = remaining
	}

	return groupValues(values), nil
}

// ParseAllowTrailing decodes as many values as possible from the front of
// data, applying the same grouping rule as ParseAll, and returns the first
// bytes it could not parse instead of failing on them.
func ParseAllowTrailing(data []byte) (Value, []byte) {
	var values []Value

	rest := data
	for len(rest) > 0 {
		value, remaining, err := Parse(rest)
		if err != nil {
			break
		}

		values = append(values, value)
		rest = remaining
	}

	return groupValues(values), rest
}

func groupValues(values []Value) Value {
	switch len(values) {
	case 0:
		return Value{}
	case 1:
		return values[0]
	default:
		return NewList(values)
	}
}

// parseValue dispatches on the first byte. The dispatch implements the
// format's ordered alternation: a digit starts a length-prefixed string
// (text when the content is UTF-8, binary otherwise), 'i' an integer,
// 'l' a list, 'd' a dictionary.
func parseValue(data []byte, depth int) (Value, []byte, error) {
	if depth > MaxDepth {
		return Value{}, nil, ErrMaxDepthExceeded
	}

	if len(data) == 0 {
		return Value{}, nil, fmt.Errorf("%w: no bytes to parse", ErrIncompleteInput)
	}

	switch c := data[0]; {
	case c >= '0' && c <= '9':
		return parseString(data)
	case c == 'i':
		return parseInteger(data)
	case c == 'l':
		return parseList(data, depth)
	case c == 'd':
		return parseDictionary(data, depth)
	default:
		return Value{}, nil, fmt.Errorf("%w: 0x%02x", ErrUnexpectedByte, c)
	}
}

// parseRawString decodes the length-prefixed string grammar shared by text,
// binary and dictionary keys: 1-20 decimal digits, ':', then exactly that
// many raw bytes.
func parseRawString(data []byte) ([]byte, []byte, error) {
	digits := 0
	for digits < len(data) && data[digits] >= '0' && data[digits] <= '9' {
		digits++
	}

	if digits == 0 {
		return nil, nil, fmt.Errorf("%w: no digits", ErrMalformedLengthPrefix)
	}
	if digits > maxDigits {
		return nil, nil, fmt.Errorf("%w: length prefix longer than %d digits", ErrMalformedLengthPrefix, maxDigits)
	}

	length, err := strconv.ParseUint(string(data[:digits]), 10, 63)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrMalformedLengthPrefix, string(data[:digits]))
	}

	rest := data[digits:]
	if len(rest) == 0 {
		return nil, nil, fmt.Errorf("%w: input ends before ':' separator", ErrIncompleteInput)
	}
	if rest[0] != ':' {
		return nil, nil, fmt.Errorf("%w: expected ':' after length, found 0x%02x", ErrMalformedLengthPrefix, rest[0])
	}

	rest = rest[1:]
	if uint64(len(rest)) < length {
		return nil, nil, fmt.Errorf("%w: declared length %d exceeds %d remaining bytes", ErrIncompleteInput, length, len(rest))
	}

	return rest[:length], rest[length:], nil
}

func parseString(data []byte) (Value, []byte, error) {
	content, rest, err := parseRawString(data)
	if err != nil {
		return Value{}, nil, err
	}

	kind := KindBinary
	if utf8.Valid(content) {
		kind = KindText
	}

	return Value{kind: kind, data: content}, rest, nil
}

func parseInteger(data []byte) (Value, []byte, error) {
	// data[0] is 'i', checked by the dispatcher
	rest := data[1:]

	start := 0
	if len(rest) > 0 && rest[0] == '-' {
		start = 1
	}

	digits := start
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}

	if digits == start {
		if len(rest) == digits {
			return Value{}, nil, fmt.Errorf("%w: input ends inside integer", ErrIncompleteInput)
		}

		return Value{}, nil, fmt.Errorf("%w: empty digit run", ErrInvalidInteger)
	}
	if digits-start > maxDigits {
		return Value{}, nil, fmt.Errorf("%w: digit run longer than %d digits", ErrInvalidInteger, maxDigits)
	}

	if digits == len(rest) {
		return Value{}, nil, fmt.Errorf("%w: input ends before 'e' terminator", ErrIncompleteInput)
	}
	if rest[digits] != 'e' {
		return Value{}, nil, fmt.Errorf("%w: expected 'e' terminator, found 0x%02x", ErrInvalidInteger, rest[digits])
	}

	// no leading-zero rejection; "-0" parses to zero
	number, err := strconv.ParseInt(string(rest[:digits]), 10, 64)
	if err != nil {
		return Value{}, nil, fmt.Errorf("%w: %s", ErrInvalidInteger, string(rest[:digits]))
	}

	return NewInteger(number), rest[digits+1:], nil
}

func parseList(data []byte, depth int) (Value, []byte, error) {
	rest := data[1:]
	items := []Value{}

	for {
		if len(rest) == 0 {
			return Value{}, nil, fmt.Errorf("%w: input ends inside list", ErrIncompleteInput)
		}
		if rest[0] == 'e' {
			return NewList(items), rest[1:], nil
		}
		if !canStartValue(rest[0]) {
			return Value{}, nil, fmt.Errorf("%w: byte 0x%02x inside list", ErrUnterminatedContainer, rest[0])
		}

		item, remaining, err := parseValue(rest, depth+1)
		if err != nil {
			return Value{}, nil, fmt.Errorf("list element %d: %w", len(items), err)
		}

		items = append(items, item)
		rest = remaining
	}
}

func parseDictionary(data []byte, depth int) (Value, []byte, error) {
	rest := data[1:]
	entries := map[string]Value{}

	for {
		if len(rest) == 0 {
			return Value{}, nil, fmt.Errorf("%w: input ends inside dictionary", ErrIncompleteInput)
		}
		if rest[0] == 'e' {
			return Value{kind: KindDictionary, entries: entries}, rest[1:], nil
		}
		if rest[0] < '0' || rest[0] > '9' {
			return Value{}, nil, fmt.Errorf("%w: byte 0x%02x where a dictionary key was expected", ErrUnterminatedContainer, rest[0])
		}

		keyBytes, remaining, err := parseRawString(rest)
		if err != nil {
			return Value{}, nil, fmt.Errorf("dictionary key: %w", err)
		}
		if !utf8.Valid(keyBytes) {
			return Value{}, nil, ErrNonTextKey
		}

		value, remaining, err := parseValue(remaining, depth+1)
		if err != nil {
			return Value{}, nil, fmt.Errorf("dictionary value for key %q: %w", string(keyBytes), err)
		}

		// duplicate keys: last write wins
		entries[string(keyBytes)] = value
		rest = remaining
	}
}

func canStartValue(c byte) bool {
	return c == 'i' || c == 'l' || c == 'd' || (c >= '0' && c <= '9')
}
