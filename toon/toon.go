// Package toon implements the TOON (Token-Oriented Object Notation) format.
// TOON is a line-oriented, indentation-based text format that encodes the JSON data model
// with explicit structure and minimal quoting. Uniform arrays of objects collapse into
// tables with a single field header, and arrays of primitives are written inline.
package toon

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strings"
)

// Delimiter separates values in inline arrays and tabular rows.
type Delimiter string

const (
	Comma Delimiter = ","
	Tab   Delimiter = "\t"
	Pipe  Delimiter = "|"
)

// KeyFolding controls whether chains of single-key objects are collapsed into dotted keys.
type KeyFolding string

const (
	FoldingOff  KeyFolding = "off"
	FoldingSafe KeyFolding = "safe"
)

// PathExpansion controls whether dotted keys are expanded into nested objects on decode.
type PathExpansion string

const (
	ExpansionOff  PathExpansion = "off"
	ExpansionSafe PathExpansion = "safe"
)

// EncodeOptions configures TOON encoding behavior.
type EncodeOptions struct {
	Indent       int        // Number of spaces per indentation level (default: 2)
	Delimiter    Delimiter  // Delimiter for arrays and tabular data (default: ",")
	KeyFolding   KeyFolding // Fold single-key object chains (default: off)
	FlattenDepth int        // Maximum segments in a folded key, 0 for no limit
}

// DecodeOptions configures TOON decoding behavior.
type DecodeOptions struct {
	Indent      int           // Number of spaces per indentation level (default: 2)
	Strict      bool          // Enable strict validation
	ExpandPaths PathExpansion // Expand dotted keys (default: off)
}

// DefaultEncodeOptions returns the options used by Encode.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Indent: 2, Delimiter: Comma, KeyFolding: FoldingOff}
}

// DefaultDecodeOptions returns the options used by Decode.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{Indent: 2, Strict: true, ExpandPaths: ExpansionOff}
}

func (o EncodeOptions) resolve() EncodeOptions {
	if o.Indent <= 0 {
		o.Indent = 2
	}
	if o.Delimiter == "" {
		o.Delimiter = Comma
	}
	if o.KeyFolding == "" {
		o.KeyFolding = FoldingOff
	}
	if o.FlattenDepth <= 0 {
		o.FlattenDepth = math.MaxInt
	}
	return o
}

func (o DecodeOptions) resolve() DecodeOptions {
	if o.Indent <= 0 {
		o.Indent = 2
	}
	if o.ExpandPaths == "" {
		o.ExpandPaths = ExpansionOff
	}
	return o
}

// Encode converts a Go value to TOON format.
func Encode(v any) (string, error) {
	return EncodeWithOptions(v, nil)
}

// EncodeWithOptions converts a Go value to TOON format with custom options.
func EncodeWithOptions(v any, opts *EncodeOptions) (string, error) {
	resolved := DefaultEncodeOptions()
	if opts != nil {
		resolved = *opts
	}
	resolved = resolved.resolve()
	if err := resolved.validate(); err != nil {
		return "", err
	}

	normalized, err := Normalize(v)
	if err != nil {
		return "", err
	}
	return newEncoder(resolved).encode(normalized), nil
}

// Marshal returns the TOON encoding of v.
func Marshal(v any) ([]byte, error) {
	return MarshalWithOptions(v, nil)
}

// MarshalWithOptions returns the TOON encoding of v using opts.
func MarshalWithOptions(v any, opts *EncodeOptions) ([]byte, error) {
	s, err := EncodeWithOptions(v, opts)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Decode parses TOON format and returns the decoded value.
// Objects decode to *Object, arrays to []any, numbers to int64 or float64.
func Decode(data string) (any, error) {
	return DecodeWithOptions(data, nil)
}

// DecodeWithOptions parses TOON format with custom options.
func DecodeWithOptions(data string, opts *DecodeOptions) (any, error) {
	resolved := DefaultDecodeOptions()
	if opts != nil {
		resolved = *opts
	}
	resolved = resolved.resolve()
	if err := resolved.validate(); err != nil {
		return nil, err
	}
	return newDecoder(resolved).decode(data)
}

// Unmarshal parses TOON data and stores the result in the value pointed to by v.
// Decoding into Go types follows encoding/json rules; *any and *Object targets
// receive the ordered tree directly.
func Unmarshal(data []byte, v any) error {
	return UnmarshalWithOptions(data, v, nil)
}

// UnmarshalWithOptions is Unmarshal with custom decode options.
func UnmarshalWithOptions(data []byte, v any, opts *DecodeOptions) error {
	tree, err := DecodeWithOptions(string(data), opts)
	if err != nil {
		return err
	}
	return assign(tree, v)
}

func assign(tree any, v any) error {
	switch target := v.(type) {
	case *any:
		*target = tree
		return nil
	case *Object:
		obj, ok := tree.(*Object)
		if !ok {
			return &json.UnmarshalTypeError{Value: kindOf(tree), Type: typeOfObject}
		}
		*target = *obj
		return nil
	}

	raw, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// Encoder writes TOON documents to an output stream.
type Encoder struct {
	w    io.Writer
	opts EncodeOptions
}

// NewEncoder returns an encoder that writes to w using the default options.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, opts: DefaultEncodeOptions()}
}

// SetOptions replaces the options used by subsequent calls to Encode.
func (e *Encoder) SetOptions(opts EncodeOptions) {
	e.opts = opts
}

// Encode writes the TOON encoding of v followed by a newline.
func (e *Encoder) Encode(v any) error {
	s, err := EncodeWithOptions(v, &e.opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(e.w, s+"\n")
	return err
}

// Decoder reads a TOON document from an input stream.
type Decoder struct {
	r    io.Reader
	opts DecodeOptions
}

// NewDecoder returns a decoder that reads from r using the default options.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, opts: DefaultDecodeOptions()}
}

// SetOptions replaces the options used by subsequent calls to Decode.
func (d *Decoder) SetOptions(opts DecodeOptions) {
	d.opts = opts
}

// Decode reads the whole stream and stores the decoded document in v.
func (d *Decoder) Decode(v any) error {
	var b strings.Builder
	if _, err := io.Copy(&b, d.r); err != nil {
		return err
	}
	return UnmarshalWithOptions([]byte(b.String()), v, &d.opts)
}
