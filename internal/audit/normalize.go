package audit

import (
	"bytes"
	"encoding"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
)

const maxNormalizeDepth = 64

// ErrNotSerializable marks values that have no JSON representation.
var ErrNotSerializable = errors.New("value is not JSON serializable")

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	errorType         = reflect.TypeOf((*error)(nil)).Elem()
)

// Normalize converts v into a tree of plain JSON values: map[string]any,
// []any, float64, int64, uint64, string, bool and nil. Types implementing
// json.Marshaler are marshalled and decoded back; errors become their message.
// Non-finite floats, channels, funcs and complex numbers are rejected.
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return normalizeValue(reflect.ValueOf(v), 0)
}

func normalizeValue(rv reflect.Value, depth int) (any, error) {
	if depth > maxNormalizeDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrNotSerializable, maxNormalizeDepth)
	}
	if !rv.IsValid() {
		return nil, nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
	}

	if rv.CanInterface() {
		if rv.Type().Implements(jsonMarshalerType) {
			return fromMarshaler(rv.Interface().(json.Marshaler))
		}
		if rv.Kind() != reflect.Pointer && rv.CanAddr() && reflect.PointerTo(rv.Type()).Implements(jsonMarshalerType) {
			return fromMarshaler(rv.Addr().Interface().(json.Marshaler))
		}
		if rv.Type().Implements(errorType) {
			return rv.Interface().(error).Error(), nil
		}
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return normalizeValue(rv.Elem(), depth+1)
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: unsupported float %v", ErrNotSerializable, f)
		}
		return f, nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(rv.Bytes()), nil
		}
		return normalizeList(rv, depth)
	case reflect.Array:
		return normalizeList(rv, depth)
	case reflect.Map:
		return normalizeMap(rv, depth)
	case reflect.Struct:
		return normalizeStruct(rv, depth)
	}

	return nil, fmt.Errorf("%w: %s", ErrNotSerializable, rv.Type())
}

func fromMarshaler(m json.Marshaler) (any, error) {
	data, err := m.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSerializable, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSerializable, err)
	}
	return plainNumbers(tree), nil
}

// plainNumbers replaces json.Number leaves with int64 or float64.
func plainNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, item := range t {
			t[k] = plainNumbers(item)
		}
	case []any:
		for i, item := range t {
			t[i] = plainNumbers(item)
		}
	}
	return v
}

func normalizeList(rv reflect.Value, depth int) (any, error) {
	out := make([]any, rv.Len())
	for i := range out {
		item, err := normalizeValue(rv.Index(i), depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = item
	}
	return out, nil
}

func normalizeMap(rv reflect.Value, depth int) (any, error) {
	if rv.IsNil() {
		return nil, nil
	}

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, err := mapKey(iter.Key())
		if err != nil {
			return nil, err
		}
		item, err := normalizeValue(iter.Value(), depth+1)
		if err != nil {
			return nil, err
		}
		out[key] = item
	}
	return out, nil
}

func mapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if k.Type().Implements(textMarshalerType) {
		text, err := k.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNotSerializable, err)
		}
		return string(text), nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprint(k.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fmt.Sprint(k.Uint()), nil
	}
	return "", fmt.Errorf("%w: map key %s", ErrNotSerializable, k.Type())
}

func normalizeStruct(rv reflect.Value, depth int) (any, error) {
	out := make(map[string]any)
	if err := collectFields(rv, depth, out); err != nil {
		return nil, err
	}
	return out, nil
}

// collectFields follows encoding/json field rules for tags, omitempty and
// untagged embedded structs.
func collectFields(rv reflect.Value, depth int, out map[string]any) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)

		if field.Anonymous && name == "" {
			embedded := fv
			if embedded.Kind() == reflect.Pointer {
				if embedded.IsNil() {
					continue
				}
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct && !embedded.Type().Implements(jsonMarshalerType) {
				if err := collectFields(embedded, depth+1, out); err != nil {
					return err
				}
				continue
			}
		}

		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		if strings.Contains(opts, "omitempty") && isEmptyValue(fv) {
			continue
		}

		item, err := normalizeValue(fv, depth+1)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		out[name] = item
	}
	return nil
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
