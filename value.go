package bencode

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindEmpty marks a value with no wire representation. It never comes
	// out of the parser; it stands in for absent optional values inside
	// the typed bridge.
	KindEmpty Kind = iota

	// KindBinary is a length-prefixed string whose bytes are not valid UTF-8.
	KindBinary

	// KindText is a length-prefixed string whose bytes are valid UTF-8.
	KindText

	// KindInteger is a 64-bit signed integer.
	KindInteger

	// KindList is an ordered sequence of values.
	KindList

	// KindDictionary is a mapping from text keys to values.
	KindDictionary
)

// Value is a single bencoded value. Binary, text and integer values are
// leaves; lists and dictionaries hold nested values. The zero Value is Empty.
//
// Binary, text and dictionary values produced by the parser alias the input
// buffer (IsOwned reports false): the buffer must not be mutated while such
// a value is in use. Values produced by the typed bridge, by the exported
// constructors or by Clone own their storage.
type Value struct {
	kind    Kind
	data    []byte
	integer int64
	items   []Value
	entries map[string]Value
	owned   bool
}

// NewBinary creates a binary value. The slice is not copied.
func NewBinary(data []byte) Value {
	return Value{kind: KindBinary, data: data, owned: true}
}

// NewText creates a text value.
func NewText(text string) Value {
	return Value{kind: KindText, data: []byte(text), owned: true}
}

// NewInteger creates an integer value.
func NewInteger(value int64) Value {
	return Value{kind: KindInteger, integer: value}
}

// NewList creates a list value. The slice is not copied.
func NewList(items []Value) Value {
	return Value{kind: KindList, items: items}
}

// NewDictionary creates a dictionary value. The map is not copied.
func NewDictionary(entries map[string]Value) Value {
	return Value{kind: KindDictionary, entries: entries, owned: true}
}

// Kind returns the variant of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsEmpty returns true for the Empty sentinel.
func (v Value) IsEmpty() bool {
	return v.kind == KindEmpty
}

// IsBinary returns true for non-UTF-8 string values.
func (v Value) IsBinary() bool {
	return v.kind == KindBinary
}

// IsText returns true for UTF-8 string values.
func (v Value) IsText() bool {
	return v.kind == KindText
}

// IsString returns true for any length-prefixed string value, binary or text.
// The two kinds share one wire encoding; the split only records whether the
// bytes were valid UTF-8 at parse time.
func (v Value) IsString() bool {
	return v.kind == KindBinary || v.kind == KindText
}

// IsInteger returns true for integer values.
func (v Value) IsInteger() bool {
	return v.kind == KindInteger
}

// IsList returns true for list values.
func (v Value) IsList() bool {
	return v.kind == KindList
}

// IsDictionary returns true for dictionary values.
func (v Value) IsDictionary() bool {
	return v.kind == KindDictionary
}

// IsOwned reports whether the value owns its storage. Binary, text and
// dictionary values coming from the parser alias the parsed buffer and
// report false; integers and lists follow the original format semantics
// and report false as well; Empty always reports true.
func (v Value) IsOwned() bool {
	switch v.kind {
	case KindBinary, KindText, KindDictionary:
		return v.owned
	case KindEmpty:
		return true
	default:
		return false
	}
}

// Bytes returns the raw content of a string value, binary or text. It
// panics on any other kind: callers are expected to have checked IsString
// (or IsBinary/IsText) first, so a mismatch is a programming error, not a
// recoverable condition. The returned slice may alias the parsed buffer.
func (v Value) Bytes() []byte {
	if !v.IsString() {
		panic(fmt.Sprintf("bencode: Bytes called on %s value", v.kind))
	}

	return v.data
}

// Text returns the content of a text value. Panics if the value is not text.
func (v Value) Text() string {
	if v.kind != KindText {
		panic(fmt.Sprintf("bencode: Text called on %s value", v.kind))
	}

	return string(v.data)
}

// Integer returns the content of an integer value. Panics if the value is
// not an integer.
func (v Value) Integer() int64 {
	if v.kind != KindInteger {
		panic(fmt.Sprintf("bencode: Integer called on %s value", v.kind))
	}

	return v.integer
}

// Items returns the elements of a list value. Panics if the value is not a
// list. The returned slice is the value's backing storage, not a copy.
func (v Value) Items() []Value {
	if v.kind != KindList {
		panic(fmt.Sprintf("bencode: Items called on %s value", v.kind))
	}

	return v.items
}

// Entries returns the mapping of a dictionary value. Panics if the value is
// not a dictionary. The returned map is the value's backing storage, not a
// copy.
func (v Value) Entries() map[string]Value {
	if v.kind != KindDictionary {
		panic(fmt.Sprintf("bencode: Entries called on %s value", v.kind))
	}

	return v.entries
}

// Clone returns a deep copy of the value that owns all of its storage and
// does not alias any parsed buffer.
func (v Value) Clone() Value {
	switch v.kind {
	case KindBinary, KindText:
		data := make([]byte, len(v.data))
		copy(data, v.data)
		return Value{kind: v.kind, data: data, owned: true}
	case KindList:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			items[i] = item.Clone()
		}
		return Value{kind: KindList, items: items}
	case KindDictionary:
		entries := make(map[string]Value, len(v.entries))
		for key, value := range v.entries {
			entries[key] = value.Clone()
		}
		return Value{kind: KindDictionary, entries: entries, owned: true}
	default:
		return v
	}
}

// Equal reports format-level equality: binary and text values compare as raw
// byte content regardless of kind or ownership, dictionaries compare as
// key-value pairs, lists compare element-wise and Empty only equals Empty.
func (v Value) Equal(other Value) bool {
	if v.IsString() && other.IsString() {
		return bytes.Equal(v.data, other.data)
	}

	if v.kind != other.kind {
		return false
	}

	switch v.kind {
	case KindEmpty:
		return true
	case KindInteger:
		return v.integer == other.integer
	case KindList:
		if len(v.items) != len(other.items) {
			return false
		}
		for i, item := range v.items {
			if !item.Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindDictionary:
		if len(v.entries) != len(other.entries) {
			return false
		}
		for key, value := range v.entries {
			otherValue, ok := other.entries[key]
			if !ok || !value.Equal(otherValue) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String returns a short human-readable description of the value, eliding
// the content of large strings and containers.
func (v Value) String() string {
	switch v.kind {
	case KindEmpty:
		return "Empty"
	case KindBinary:
		return fmt.Sprintf("Binary(%d bytes)", len(v.data))
	case KindText:
		if len(v.data) > 32 {
			return fmt.Sprintf("Text(%d bytes)", len(v.data))
		}
		return fmt.Sprintf("Text(%q)", string(v.data))
	case KindInteger:
		return fmt.Sprintf("Integer(%d)", v.integer)
	case KindList:
		if len(v.items) > 8 {
			return fmt.Sprintf("List(%d items)", len(v.items))
		}
		descriptions := make([]string, len(v.items))
		for i, item := range v.items {
			descriptions[i] = item.String()
		}
		return fmt.Sprintf("List(%s)", strings.Join(descriptions, ", "))
	case KindDictionary:
		if len(v.entries) > 8 {
			return fmt.Sprintf("Dictionary(%d entries)", len(v.entries))
		}
		keys := make([]string, 0, len(v.entries))
		for key := range v.entries {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		descriptions := make([]string, len(keys))
		for i, key := range keys {
			descriptions[i] = fmt.Sprintf("%q: %s", key, v.entries[key])
		}
		return fmt.Sprintf("Dictionary(%s)", strings.Join(descriptions, ", "))
	default:
		return fmt.Sprintf("Unknown(%d)", int(v.kind))
	}
}

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindBinary:
		return "binary"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindList:
		return "list"
	case KindDictionary:
		return "dictionary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
