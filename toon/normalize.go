package toon

import (
	"encoding"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	numberLiteralRegex = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?$`)
	leadingZeroRegex   = regexp.MustCompile(`^-?0\d`)

	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// ParseNumber converts a decimal literal into int64 when it is an integer that fits,
// and float64 otherwise. Negative zero becomes 0.
func ParseNumber(s string) (any, error) {
	if !numberLiteralRegex.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return u, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range values still parse to +/-Inf, which normalize to null.
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || numErr.Err != strconv.ErrRange {
			return nil, err
		}
	}
	return normalizeFloat(f), nil
}

func normalizeFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f == 0 {
		return float64(0)
	}
	return f
}

// Normalize converts v into the TOON data model: nil, bool, string, int64, uint64,
// float64, []any and *Object.
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case *Object:
		if val == nil {
			return nil, nil
		}
		return normalizeObject(val)
	case Object:
		return normalizeObject(&val)
	case json.Number:
		return ParseNumber(string(val))
	case string, bool, int64, uint64:
		return val, nil
	case float64:
		return normalizeFloat(val), nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}
	return normalizeReflect(reflect.ValueOf(v))
}

func normalizeObject(o *Object) (any, error) {
	out := NewObject()
	for _, f := range o.Fields() {
		n, err := Normalize(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		out.Set(f.Key, n)
	}
	for k := range o.quoted {
		out.markQuoted(k)
	}
	return out, nil
}

func normalizeReflect(val reflect.Value) (any, error) {
	if !val.IsValid() {
		return nil, nil
	}
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		if val.IsNil() {
			return nil, nil
		}
	}

	if val.CanInterface() {
		switch x := val.Interface().(type) {
		case *Object, Object, json.Number, []any:
			return Normalize(x)
		}
		if val.Type().Implements(jsonMarshalerType) {
			return normalizeJSONMarshaler(val)
		}
		if val.Type().Implements(textMarshalerType) {
			text, err := val.Interface().(encoding.TextMarshaler).MarshalText()
			if err != nil {
				return nil, err
			}
			return string(text), nil
		}
	}

	switch val.Kind() {
	case reflect.Ptr, reflect.Interface:
		return normalizeReflect(val.Elem())
	case reflect.Bool:
		return val.Bool(), nil
	case reflect.String:
		return val.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := val.Uint()
		if u <= math.MaxInt64 {
			return int64(u), nil
		}
		return u, nil
	case reflect.Float32:
		// Keep the shortest float32 decimal form instead of widening noise.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(val.Float(), 'g', -1, 32), 64)
		return normalizeFloat(f), nil
	case reflect.Float64:
		return normalizeFloat(val.Float()), nil
	case reflect.Slice:
		if val.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(val.Bytes()), nil
		}
		return normalizeSequence(val)
	case reflect.Array:
		return normalizeSequence(val)
	case reflect.Map:
		return normalizeMap(val)
	case reflect.Struct:
		obj := NewObject()
		if err := normalizeStruct(val, obj); err != nil {
			return nil, err
		}
		return obj, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, val.Type())
}

func normalizeJSONMarshaler(val reflect.Value) (any, error) {
	raw, err := val.Interface().(json.Marshaler).MarshalJSON()
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	return ReadJSON(dec)
}

func normalizeSequence(val reflect.Value) (any, error) {
	out := make([]any, val.Len())
	for i := 0; i < val.Len(); i++ {
		n, err := normalizeReflect(val.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func normalizeMap(val reflect.Value) (any, error) {
	type entry struct {
		key string
		val reflect.Value
	}
	entries := make([]entry, 0, val.Len())
	iter := val.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: mapKeyString(iter.Key()), val: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	obj := NewObject()
	for _, e := range entries {
		n, err := normalizeReflect(e.val)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.key, err)
		}
		obj.Set(e.key, n)
	}
	return obj, nil
}

func mapKeyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if !k.CanInterface() {
		return fmt.Sprint(k)
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if text, err := tm.MarshalText(); err == nil {
			return string(text)
		}
	}
	return fmt.Sprintf("%v", k.Interface())
}

func normalizeStruct(val reflect.Value, obj *Object) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name, opts, tagged, skip := fieldTag(field)
		if skip {
			continue
		}

		fv := val.Field(i)
		if field.Anonymous && !tagged {
			ft := field.Type
			if ft.Kind() == reflect.Ptr {
				if fv.IsNil() {
					continue
				}
				ft = ft.Elem()
				fv = fv.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if err := normalizeStruct(fv, obj); err != nil {
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
		if hasOption(opts, "omitempty") && isEmptyValue(fv) {
			continue
		}

		n, err := normalizeReflect(fv)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		if hasOption(opts, "string") {
			switch n.(type) {
			case int64, uint64, float64, bool:
				n = formatPrimitive(n)
			}
		}
		obj.Set(name, n)
	}
	return nil
}

// fieldTag returns the field name and options from the toon tag, falling back to the json tag.
// A bare "-" skips the field; "-," names it "-".
func fieldTag(field reflect.StructField) (name, opts string, tagged, skip bool) {
	tag, ok := field.Tag.Lookup("toon")
	if !ok {
		tag, ok = field.Tag.Lookup("json")
	}
	if !ok {
		return "", "", false, false
	}
	if tag == "-" {
		return "", "", false, true
	}
	name, opts, _ = strings.Cut(tag, ",")
	return name, opts, name != "", false
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}
