package bencode

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("bencode")

// ValueMarshaler is implemented by types that encode themselves into a
// Value, bypassing the reflection rules. This is the hook for shapes the
// generic bridge cannot represent, such as tagged unions.
type ValueMarshaler interface {
	MarshalBencodeValue() (Value, error)
}

var valueMarshalerType = reflect.TypeOf((*ValueMarshaler)(nil)).Elem()
var valueType = reflect.TypeOf(Value{})

// ToValue converts an arbitrary record into a Value tree.
//
// Booleans become 0/1 integers, floats are rounded to the nearest integer
// and uint64 values above MaxInt64 wrap; all three coercions are lossy and
// one-directional. Nil pointers, nil slices and nil maps become Empty;
// struct fields that convert to Empty are omitted from the dictionary.
func ToValue(obj any) (Value, error) {
	if obj == nil {
		return Value{}, fmt.Errorf("cannot marshal: %w", ErrNilValue)
	}

	return reflectToValue(reflect.ValueOf(obj))
}

// Marshal converts an arbitrary record into its canonical encoding.
func Marshal(obj any) ([]byte, error) {
	value, err := ToValue(obj)
	if err != nil {
		return nil, err
	}

	return Encode(value)
}

// MarshalTo converts an arbitrary record and writes its encoding into w.
func MarshalTo(w io.Writer, obj any) error {
	value, err := ToValue(obj)
	if err != nil {
		return err
	}

	return Write(value, w)
}

func reflectToValue(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Value{}, nil
	}

	if rv.Type() == valueType {
		return rv.Interface().(Value), nil
	}

	if marshaler, ok := asValueMarshaler(rv); ok {
		return marshaler.MarshalBencodeValue()
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{}, nil
		}
		return reflectToValue(rv.Elem())
	case reflect.Bool:
		log.Trace("casting bool to integer", "value", rv.Bool())
		if rv.Bool() {
			return NewInteger(1), nil
		}
		return NewInteger(0), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewInteger(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		number := rv.Uint()
		if number > math.MaxInt64 {
			log.Trace("uint64 above signed range wraps", "value", number)
		}
		return NewInteger(int64(number)), nil
	case reflect.Float32, reflect.Float64:
		log.Trace("rounding float to nearest integer", "value", rv.Float())
		return NewInteger(int64(math.Round(rv.Float()))), nil
	case reflect.String:
		return NewText(rv.String()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Value{}, nil
		}
		return sliceToValue(rv)
	case reflect.Array:
		return sliceToValue(rv)
	case reflect.Map:
		if rv.IsNil() {
			return Value{}, nil
		}
		return mapToValue(rv)
	case reflect.Struct:
		entries := map[string]Value{}
		err := structIntoEntries(rv, entries)
		if err != nil {
			return Value{}, err
		}
		return NewDictionary(entries), nil
	default:
		return Value{}, fmt.Errorf("%w: cannot marshal %s", ErrUnsupportedType, rv.Type())
	}
}

func asValueMarshaler(rv reflect.Value) (ValueMarshaler, bool) {
	if rv.Type().Implements(valueMarshalerType) {
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, false
		}
		return rv.Interface().(ValueMarshaler), true
	}

	if rv.CanAddr() && reflect.PointerTo(rv.Type()).Implements(valueMarshalerType) {
		return rv.Addr().Interface().(ValueMarshaler), true
	}

	return nil, false
}

func sliceToValue(rv reflect.Value) (Value, error) {
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		content := make([]byte, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			content[i] = byte(rv.Index(i).Uint())
		}
		return NewBinary(content), nil
	}

	items := make([]Value, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item, err := reflectToValue(rv.Index(i))
		if err != nil {
			return Value{}, fmt.Errorf("element %d: %w", i, err)
		}

		items = append(items, item)
	}

	return NewList(items), nil
}

func mapToValue(rv reflect.Value) (Value, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return Value{}, fmt.Errorf("%w: %s", ErrNonStringKey, rv.Type().Key())
	}

	entries := make(map[string]Value, rv.Len())
	iterator := rv.MapRange()
	for iterator.Next() {
		value, err := reflectToValue(iterator.Value())
		if err != nil {
			return Value{}, fmt.Errorf("map value for key %q: %w", iterator.Key().String(), err)
		}
		if value.IsEmpty() {
			continue
		}

		entries[iterator.Key().String()] = value
	}

	return NewDictionary(entries), nil
}

// structIntoEntries flattens embedded anonymous structs into the same
// dictionary, mirroring how the domain records in this format inline their
// sub-records.
func structIntoEntries(rv reflect.Value, entries map[string]Value) error {
	structType := rv.Type()
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		// unexported fields are skipped, unless they are embedded structs:
		// their exported fields are still promoted into the dictionary
		flattens := field.Anonymous && field.Tag.Get("bencode") == "" && field.Type.Kind() == reflect.Struct
		if field.PkgPath != "" && !flattens {
			continue
		}

		name, omitEmpty, skip := fieldName(field)
		if skip {
			continue
		}

		fieldValue := rv.Field(i)
		if field.Anonymous && field.Tag.Get("bencode") == "" {
			embedded := fieldValue
			if embedded.Kind() == reflect.Pointer {
				if embedded.IsNil() {
					continue
				}
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				err := structIntoEntries(embedded, entries)
				if err != nil {
					return err
				}
				continue
			}
		}

		if omitEmpty && fieldValue.IsZero() {
			continue
		}

		value, err := reflectToValue(fieldValue)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		if value.IsEmpty() {
			continue
		}

		entries[name] = value
	}

	return nil
}

// fieldName resolves the dictionary key of a struct field from its bencode
// tag, falling back to the Go field name.
func fieldName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag := field.Tag.Get("bencode")
	if tag == "-" {
		return "", false, true
	}

	name = field.Name
	if tag != "" {
		parts := strings.Split(tag, ",")
		if parts[0] != "" {
			name = parts[0]
		}
		for _, option := range parts[1:] {
			if option == "omitempty" {
				omitEmpty = true
			}
		}
	}

	return name, omitEmpty, false
}
