package bencode

import (
	"bytes"
	"io"
	"sort"
	"strconv"
)

// Write encodes the value into w. The output is canonical: dictionary keys
// are written in lexicographic order, so the same logical value always
// produces identical bytes.
//
// Empty writes nothing: it has no wire representation. Dictionary entries
// and list elements holding Empty are skipped entirely, since a key followed
// by zero bytes would not be decodable.
func Write(value Value, w io.Writer) error {
	return writeValue(value, w, 0)
}

// Encode returns the canonical encoding of the value.
func Encode(value Value) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	err := Write(value, buffer)
	if err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func writeValue(value Value, w io.Writer, depth int) error {
	if depth > MaxDepth {
		return ErrMaxDepthExceeded
	}

	switch value.kind {
	case KindEmpty:
		return nil
	case KindBinary, KindText:
		return writeString(value.data, w)
	case KindInteger:
		return writeInteger(value.integer, w)
	case KindList:
		return writeList(value.items, w, depth)
	case KindDictionary:
		return writeDictionary(value.entries, w, depth)
	default:
		return ErrUnsupportedType
	}
}

func writeString(content []byte, w io.Writer) error {
	prefix := strconv.AppendUint(nil, uint64(len(content)), 10)
	prefix = append(prefix, ':')

	_, err := w.Write(prefix)
	if err != nil {
		return err
	}

	_, err = w.Write(content)
	return err
}

func writeInteger(number int64, w io.Writer) error {
	token := make([]byte, 0, maxDigits+3)
	token = append(token, 'i')
	token = strconv.AppendInt(token, number, 10)
	token = append(token, 'e')

	_, err := w.Write(token)
	return err
}

func writeList(items []Value, w io.Writer, depth int) error {
	_, err := w.Write([]byte{'l'})
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.IsEmpty() {
			continue
		}

		err = writeValue(item, w, depth+1)
		if err != nil {
			return err
		}
	}

	_, err = w.Write([]byte{'e'})
	return err
}

func writeDictionary(entries map[string]Value, w io.Writer, depth int) error {
	_, err := w.Write([]byte{'d'})
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := entries[key]
		if value.IsEmpty() {
			continue
		}

		err = writeString([]byte(key), w)
		if err != nil {
			return err
		}

		err = writeValue(value, w, depth+1)
		if err != nil {
			return err
		}
	}

	_, err = w.Write([]byte{'e'})
	return err
}
