package toon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// Field is a single key/value member of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is an insertion-ordered mapping from string keys to values.
// TOON output follows field order, so decoded documents keep the order they were written in.
type Object struct {
	fields []Field
	index  map[string]int

	// quoted records dotted keys that were quoted in the source and must not be expanded.
	quoted map[string]bool
}

var typeOfObject = reflect.TypeOf(Object{})

// NewObject returns an object holding fields in order. Later duplicates replace earlier values.
func NewObject(fields ...Field) *Object {
	o := &Object{}
	for _, f := range fields {
		o.Set(f.Key, f.Value)
	}
	return o
}

// Set stores value under key. An existing key keeps its position.
func (o *Object) Set(key string, value any) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.fields[i].Value = value
		return
	}
	o.index[key] = len(o.fields)
	o.fields = append(o.fields, Field{Key: key, Value: value})
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil || o.index == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.fields[i].Value, true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Len returns the number of fields.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.fields)
}

// Keys returns the keys in order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns the fields in order. The slice must not be modified.
func (o *Object) Fields() []Field {
	if o == nil {
		return nil
	}
	return o.fields
}

func (o *Object) markQuoted(key string) {
	if o.quoted == nil {
		o.quoted = make(map[string]bool)
	}
	o.quoted[key] = true
}

func (o *Object) isQuoted(key string) bool {
	return o.quoted != nil && o.quoted[key]
}

// MarshalJSON writes the object as a JSON object with fields in order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, f.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, f.Value); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order at every level.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := ReadJSON(dec)
	if err != nil {
		return err
	}
	obj, ok := v.(*Object)
	if !ok {
		return &json.UnmarshalTypeError{Value: kindOf(v), Type: typeOfObject}
	}
	*o = *obj
	return nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode always terminates the value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// ReadJSON reads one JSON value from dec into the TOON data model, keeping object key order.
// The decoder should have UseNumber enabled so that integers survive unchanged.
func ReadJSON(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return readJSONValue(dec, tok)
}

func readJSONValue(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := nextToken(dec)
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				valTok, err := nextToken(dec)
				if err != nil {
					return nil, err
				}
				val, err := readJSONValue(dec, valTok)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := nextToken(dec); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []any{}
			for dec.More() {
				elemTok, err := nextToken(dec)
				if err != nil {
					return nil, err
				}
				elem, err := readJSONValue(dec, elemTok)
				if err != nil {
					return nil, err
				}
				arr = append(arr, elem)
			}
			if _, err := nextToken(dec); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case json.Number:
		return ParseNumber(string(t))
	case float64:
		return normalizeFloat(t), nil
	case string, bool, nil:
		return t, nil
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

// nextToken reads a token inside a value, where running out of input is an error.
func nextToken(dec *json.Decoder) (json.Token, error) {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case int64, uint64, float64:
		return "number"
	case []any:
		return "array"
	case *Object:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
