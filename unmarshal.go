package bencode

import (
	"fmt"
	"reflect"
	"sort"
	"unicode/utf8"
)

// ValueUnmarshaler is implemented by types that extract themselves from a
// Value, bypassing the reflection rules. Tagged-union shapes, which the
// generic bridge rejects, supply their extraction logic through this hook.
type ValueUnmarshaler interface {
	UnmarshalBencodeValue(value Value) error
}

// FromValue extracts an already parsed value into obj, which must be a
// non-nil pointer.
//
// The extraction is type-directed: the target shape decides which variants
// are acceptable. Booleans accept only the integers 0 and 1, unsigned
// targets reject negative integers, byte slices accept binary or text (the
// two are one wire shape) and numeric slices additionally accept a byte
// string reinterpreted as per-byte integers. Pointers treat Empty as nil.
func FromValue(value Value, obj any) error {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrInvalidTarget
	}

	return valueInto(value, rv.Elem())
}

// Unmarshal parses data and extracts the resulting value into obj. The
// grouping rule of ParseAll applies to the parse step.
func Unmarshal(obj any, data []byte) error {
	value, err := ParseAll(data)
	if err != nil {
		return err
	}

	return FromValue(value, obj)
}

func valueInto(value Value, rv reflect.Value) error {
	if rv.Type() == valueType {
		rv.Set(reflect.ValueOf(value))
		return nil
	}

	if rv.CanAddr() {
		unmarshaler, ok := rv.Addr().Interface().(ValueUnmarshaler)
		if ok {
			return unmarshaler.UnmarshalBencodeValue(value)
		}
	}

	switch rv.Kind() {
	case reflect.Pointer:
		return valueIntoPointer(value, rv)
	case reflect.Interface:
		return valueIntoInterface(value, rv)
	case reflect.Bool:
		return valueIntoBool(value, rv)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return valueIntoInt(value, rv)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return valueIntoUint(value, rv)
	case reflect.Float32, reflect.Float64:
		return valueIntoFloat(value, rv)
	case reflect.String:
		return valueIntoString(value, rv)
	case reflect.Slice:
		return valueIntoSlice(value, rv)
	case reflect.Array:
		return valueIntoArray(value, rv)
	case reflect.Map:
		return valueIntoMap(value, rv)
	case reflect.Struct:
		return valueIntoStruct(value, rv)
	default:
		return fmt.Errorf("%w: cannot unmarshal into %s", ErrUnsupportedType, rv.Type())
	}
}

func valueIntoPointer(value Value, rv reflect.Value) error {
	if value.IsEmpty() {
		rv.SetZero()
		return nil
	}

	target := reflect.New(rv.Type().Elem())
	err := valueInto(value, target.Elem())
	if err != nil {
		return err
	}

	rv.Set(target)
	return nil
}

func valueIntoInterface(value Value, rv reflect.Value) error {
	if rv.NumMethod() != 0 {
		return fmt.Errorf("%w: cannot unmarshal into non-empty interface %s", ErrUnsupportedType, rv.Type())
	}

	inferred := anyFromValue(value)
	if inferred == nil {
		rv.SetZero()
		return nil
	}

	rv.Set(reflect.ValueOf(inferred))
	return nil
}

func valueIntoBool(value Value, rv reflect.Value) error {
	if !value.IsInteger() {
		return conversionError(value, rv.Type())
	}

	switch value.Integer() {
	case 0:
		rv.SetBool(false)
	case 1:
		rv.SetBool(true)
	default:
		return fmt.Errorf("%w: integer %d is not a bool", ErrTypeMismatch, value.Integer())
	}

	return nil
}

func valueIntoInt(value Value, rv reflect.Value) error {
	// a rune is an int32; a one-character text value satisfies it
	if rv.Kind() == reflect.Int32 && value.IsText() {
		text := value.Text()
		if utf8.RuneCountInString(text) != 1 {
			return fmt.Errorf("%w: text of length %d is not a single character", ErrTypeMismatch, len(text))
		}

		char, _ := utf8.DecodeRuneInString(text)
		rv.SetInt(int64(char))
		return nil
	}

	if !value.IsInteger() {
		return conversionError(value, rv.Type())
	}

	number := value.Integer()
	if rv.OverflowInt(number) {
		return fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, number, rv.Type())
	}

	rv.SetInt(number)
	return nil
}

func valueIntoUint(value Value, rv reflect.Value) error {
	if !value.IsInteger() {
		return conversionError(value, rv.Type())
	}

	number := value.Integer()
	if number < 0 {
		return fmt.Errorf("%w: %d is negative, target %s is unsigned", ErrOutOfRange, number, rv.Type())
	}
	if rv.OverflowUint(uint64(number)) {
		return fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, number, rv.Type())
	}

	rv.SetUint(uint64(number))
	return nil
}

// valueIntoFloat widens the integer directly to the float target; fractional
// data destroyed on the serialize side is never reconstructed.
func valueIntoFloat(value Value, rv reflect.Value) error {
	if !value.IsInteger() {
		return conversionError(value, rv.Type())
	}

	number := float64(value.Integer())
	if rv.OverflowFloat(number) {
		return fmt.Errorf("%w: %d does not fit %s", ErrOutOfRange, value.Integer(), rv.Type())
	}

	rv.SetFloat(number)
	return nil
}

func valueIntoString(value Value, rv reflect.Value) error {
	if !value.IsText() {
		return conversionError(value, rv.Type())
	}

	rv.SetString(value.Text())
	return nil
}

func valueIntoSlice(value Value, rv reflect.Value) error {
	if rv.Type().Elem().Kind() == reflect.Uint8 && value.IsString() {
		content := make([]byte, len(value.Bytes()))
		copy(content, value.Bytes())
		rv.SetBytes(content)
		return nil
	}

	iterator, err := sequenceOf(value, rv.Type())
	if err != nil {
		return err
	}

	items := reflect.MakeSlice(rv.Type(), iterator.remaining(), iterator.remaining())
	for i := 0; ; i++ {
		element, ok := iterator.next()
		if !ok {
			break
		}

		err = valueInto(element, items.Index(i))
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	rv.Set(items)
	return nil
}

func valueIntoArray(value Value, rv reflect.Value) error {
	iterator, err := sequenceOf(value, rv.Type())
	if err != nil {
		return err
	}

	if iterator.remaining() != rv.Len() {
		return fmt.Errorf("%w: %d elements do not fit array %s", ErrOutOfRange, iterator.remaining(), rv.Type())
	}

	for i := 0; ; i++ {
		element, ok := iterator.next()
		if !ok {
			break
		}

		err = valueInto(element, rv.Index(i))
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	return nil
}

// sequenceOf builds a sequence iterator from a list, or from a byte string
// reinterpreted as per-byte integers so that binary data can satisfy
// array-of-integer targets.
func sequenceOf(value Value, target reflect.Type) (*seqIterator, error) {
	if value.IsList() {
		return newSeqIterator(value.Items()), nil
	}

	if value.IsString() {
		content := value.Bytes()
		items := make([]Value, len(content))
		for i, b := range content {
			items[i] = NewInteger(int64(b))
		}
		return newSeqIterator(items), nil
	}

	return nil, conversionError(value, target)
}

func valueIntoMap(value Value, rv reflect.Value) error {
	if !value.IsDictionary() {
		return conversionError(value, rv.Type())
	}

	mapType := rv.Type()
	if mapType.Key().Kind() != reflect.String {
		return fmt.Errorf("%w: %s", ErrNonStringKey, mapType.Key())
	}

	result := reflect.MakeMapWithSize(mapType, len(value.Entries()))
	iterator := newDictIterator(value.Entries())
	for {
		key, pending, ok := iterator.nextKey()
		if !ok {
			break
		}

		element := reflect.New(mapType.Elem()).Elem()
		err := pending.into(element)
		if err != nil {
			return fmt.Errorf("value for key %q: %w", key, err)
		}

		result.SetMapIndex(reflect.ValueOf(key).Convert(mapType.Key()), element)
	}

	rv.Set(result)
	return nil
}

// valueIntoStruct fills a struct positionally from a list or by name from a
// dictionary. Unknown dictionary keys are ignored and missing keys leave
// the field at its zero value; strict extractors are layered on top by the
// domain records.
func valueIntoStruct(value Value, rv reflect.Value) error {
	switch {
	case value.IsList():
		iterator := newSeqIterator(value.Items())
		for _, index := range structFieldIndex(rv.Type()).ordered {
			element, ok := iterator.next()
			if !ok {
				break
			}

			field := rv.FieldByIndex(index)
			err := valueInto(element, field)
			if err != nil {
				return err
			}
		}
		return nil
	case value.IsDictionary():
		fields := structFieldIndex(rv.Type())
		iterator := newDictIterator(value.Entries())
		for {
			key, pending, ok := iterator.nextKey()
			if !ok {
				return nil
			}

			index, known := fields.byName[key]
			if !known {
				continue
			}

			err := pending.into(rv.FieldByIndex(index))
			if err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
		}
	default:
		return conversionError(value, rv.Type())
	}
}

func anyFromValue(value Value) any {
	switch value.Kind() {
	case KindBinary:
		content := make([]byte, len(value.Bytes()))
		copy(content, value.Bytes())
		return content
	case KindText:
		return value.Text()
	case KindInteger:
		return value.Integer()
	case KindList:
		items := make([]any, len(value.Items()))
		for i, item := range value.Items() {
			items[i] = anyFromValue(item)
		}
		return items
	case KindDictionary:
		entries := make(map[string]any, len(value.Entries()))
		for key, entry := range value.Entries() {
			entries[key] = anyFromValue(entry)
		}
		return entries
	default:
		return nil
	}
}

func conversionError(value Value, target reflect.Type) error {
	return fmt.Errorf("%w: cannot convert %s to %s", ErrTypeMismatch, value, target)
}

// seqIterator walks the elements of a sequence in order, tracking the
// remaining count.
type seqIterator struct {
	items []Value
	index int
}

func newSeqIterator(items []Value) *seqIterator {
	return &seqIterator{items: items}
}

func (it *seqIterator) remaining() int {
	return len(it.items) - it.index
}

func (it *seqIterator) next() (Value, bool) {
	if it.index >= len(it.items) {
		return Value{}, false
	}

	item := it.items[it.index]
	it.index++
	return item, true
}

// pendingValue is the value half of a dictionary entry. It is reachable
// only through the preceding key pull, so a caller cannot extract two
// values in a row or skip a key.
type pendingValue struct {
	value Value
}

func (p pendingValue) into(rv reflect.Value) error {
	return valueInto(p.value, rv)
}

// dictIterator walks dictionary entries in sorted key order.
type dictIterator struct {
	keys    []string
	entries map[string]Value
	index   int
}

func newDictIterator(entries map[string]Value) *dictIterator {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return &dictIterator{keys: keys, entries: entries}
}

func (it *dictIterator) nextKey() (string, pendingValue, bool) {
	if it.index >= len(it.keys) {
		return "", pendingValue{}, false
	}

	key := it.keys[it.index]
	it.index++
	return key, pendingValue{value: it.entries[key]}, true
}

// fieldIndex maps dictionary keys to struct field index paths, with
// embedded anonymous structs flattened.
type fieldIndex struct {
	byName  map[string][]int
	ordered [][]int
}

func structFieldIndex(structType reflect.Type) fieldIndex {
	index := fieldIndex{byName: map[string][]int{}}
	collectFields(structType, nil, &index)
	return index
}

func collectFields(structType reflect.Type, prefix []int, index *fieldIndex) {
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		// unexported fields are skipped, unless they are embedded structs:
		// their exported fields are still promoted
		flattened := field.Anonymous && field.Tag.Get("bencode") == "" && field.Type.Kind() == reflect.Struct
		if field.PkgPath != "" && !flattened {
			continue
		}

		name, _, skip := fieldName(field)
		if skip {
			continue
		}

		path := append(append([]int{}, prefix...), i)
		if flattened {
			collectFields(field.Type, path, index)
			continue
		}

		if _, exists := index.byName[name]; !exists {
			index.byName[name] = path
			index.ordered = append(index.ordered, path)
		}
	}
}
