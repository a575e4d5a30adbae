package toon

import (
	"slices"
	"strconv"
	"strings"
)

type encoder struct {
	opts        EncodeOptions
	indentCache []string
	lines       []string
}

func newEncoder(opts EncodeOptions) *encoder {
	return &encoder{opts: opts}
}

func (e *encoder) encode(v any) string {
	switch val := v.(type) {
	case []any:
		e.encodeArray("", false, val, 0, false)
	case *Object:
		e.encodeObject(val, 0, nil, "", e.opts.FlattenDepth)
	default:
		return encodePrimitive(v, e.opts.Delimiter)
	}
	return strings.Join(e.lines, "\n")
}

func (e *encoder) getIndent(depth int) string {
	for len(e.indentCache) <= depth {
		level := len(e.indentCache)
		e.indentCache = append(e.indentCache, strings.Repeat(" ", level*e.opts.Indent))
	}
	return e.indentCache[depth]
}

func (e *encoder) push(depth int, content string) {
	e.lines = append(e.lines, e.getIndent(depth)+content)
}

func (e *encoder) pushListItem(depth int, content string) {
	e.push(depth, "- "+content)
}

// encodeObject writes the fields of obj at depth. rootLiteral holds the dotted keys of the
// document root so that folding never produces a key that already exists literally.
func (e *encoder) encodeObject(obj *Object, depth int, rootLiteral map[string]bool, prefix string, flatten int) {
	keys := obj.Keys()
	if depth == 0 && rootLiteral == nil {
		rootLiteral = make(map[string]bool)
		for _, k := range keys {
			if strings.Contains(k, ".") {
				rootLiteral[k] = true
			}
		}
	}
	for _, f := range obj.Fields() {
		e.encodeField(f.Key, f.Value, depth, keys, rootLiteral, prefix, flatten)
	}
}

// encodeField writes one key/value pair. A nil siblings slice disables key folding.
func (e *encoder) encodeField(key string, value any, depth int, siblings []string, rootLiteral map[string]bool, prefix string, flatten int) {
	if e.opts.KeyFolding == FoldingSafe && siblings != nil {
		if fold, ok := tryFold(key, value, siblings, rootLiteral, prefix, flatten); ok {
			e.encodeFolded(fold, depth, rootLiteral, prefix, flatten)
			return
		}
	}

	encodedKey := encodeKey(key)
	switch val := value.(type) {
	case []any:
		e.encodeArray(key, true, val, depth, false)
	case *Object:
		e.push(depth, encodedKey+":")
		if val.Len() > 0 {
			e.encodeObject(val, depth+1, rootLiteral, joinPath(prefix, key), flatten)
		}
	default:
		e.push(depth, encodedKey+": "+encodePrimitive(value, e.opts.Delimiter))
	}
}

func (e *encoder) encodeFolded(fold foldResult, depth int, rootLiteral map[string]bool, prefix string, flatten int) {
	encodedKey := encodeKey(fold.key)
	if fold.remainder == nil {
		switch leaf := fold.leaf.(type) {
		case []any:
			e.encodeArray(fold.key, true, leaf, depth, false)
		case *Object:
			e.push(depth, encodedKey+":")
		default:
			e.push(depth, encodedKey+": "+encodePrimitive(leaf, e.opts.Delimiter))
		}
		return
	}

	e.push(depth, encodedKey+":")
	e.encodeObject(fold.remainder, depth+1, rootLiteral, joinPath(prefix, fold.key), flatten-fold.segments)
}

// encodeArray writes arr under key. When asItem is set the header line becomes a list
// item ("- key[N]:") and the children stay one level below it.
func (e *encoder) encodeArray(key string, hasKey bool, arr []any, depth int, asItem bool) {
	head := e.push
	if asItem {
		head = e.pushListItem
	}

	switch ArrayLayout(arr) {
	case LayoutEmpty, LayoutInline:
		head(depth, e.inlineLine(arr, key, hasKey))
	case LayoutArrays:
		head(depth, e.header(len(arr), key, hasKey, nil))
		for _, item := range arr {
			e.pushListItem(depth+1, e.inlineLine(item.([]any), "", false))
		}
	case LayoutTabular:
		fields := TabularFields(arr)
		head(depth, e.header(len(arr), key, hasKey, fields))
		e.writeRows(arr, fields, depth+1)
	default:
		head(depth, e.header(len(arr), key, hasKey, nil))
		for _, item := range arr {
			e.encodeListItem(item, depth+1)
		}
	}
}

func (e *encoder) header(length int, key string, hasKey bool, fields []string) string {
	var b strings.Builder
	if hasKey {
		b.WriteString(encodeKey(key))
	}
	b.WriteByte('[')
	b.WriteString(strconv.Itoa(length))
	if e.opts.Delimiter != Comma {
		b.WriteString(string(e.opts.Delimiter))
	}
	b.WriteByte(']')
	if fields != nil {
		b.WriteByte('{')
		for i, f := range fields {
			if i > 0 {
				b.WriteString(string(e.opts.Delimiter))
			}
			b.WriteString(encodeKey(f))
		}
		b.WriteByte('}')
	}
	b.WriteByte(':')
	return b.String()
}

func (e *encoder) inlineLine(arr []any, key string, hasKey bool) string {
	header := e.header(len(arr), key, hasKey, nil)
	if len(arr) == 0 {
		return header
	}
	return header + " " + e.joinPrimitives(arr)
}

func (e *encoder) joinPrimitives(values []any) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteString(string(e.opts.Delimiter))
		}
		b.WriteString(encodePrimitive(v, e.opts.Delimiter))
	}
	return b.String()
}

func (e *encoder) writeRows(rows []any, fields []string, depth int) {
	values := make([]any, len(fields))
	for _, item := range rows {
		row := item.(*Object)
		for i, f := range fields {
			values[i], _ = row.Get(f)
		}
		e.push(depth, e.joinPrimitives(values))
	}
}

func (e *encoder) encodeListItem(item any, depth int) {
	switch val := item.(type) {
	case *Object:
		e.encodeObjectAsListItem(val, depth)
	case []any:
		e.encodeArray("", false, val, depth, true)
	default:
		e.pushListItem(depth, encodePrimitive(item, e.opts.Delimiter))
	}
}

// encodeObjectAsListItem puts the first field on the hyphen line and the rest one level
// deeper. A nested object in the first field sits two levels below the hyphen.
func (e *encoder) encodeObjectAsListItem(obj *Object, depth int) {
	if obj.Len() == 0 {
		e.push(depth, "-")
		return
	}

	fields := obj.Fields()
	first := fields[0]
	encodedKey := encodeKey(first.Key)
	switch val := first.Value.(type) {
	case []any:
		e.encodeArray(first.Key, true, val, depth, true)
	case *Object:
		e.pushListItem(depth, encodedKey+":")
		if val.Len() > 0 {
			e.encodeObject(val, depth+2, nil, "", e.opts.FlattenDepth)
		}
	default:
		e.pushListItem(depth, encodedKey+": "+encodePrimitive(val, e.opts.Delimiter))
	}

	for _, f := range fields[1:] {
		e.encodeField(f.Key, f.Value, depth+1, nil, nil, "", e.opts.FlattenDepth)
	}
}

type foldResult struct {
	key       string
	segments  int
	leaf      any
	remainder *Object
}

// tryFold collapses a chain of single-key objects starting at key into a dotted key.
func tryFold(key string, value any, siblings []string, rootLiteral map[string]bool, prefix string, flatten int) (foldResult, bool) {
	if _, ok := value.(*Object); !ok {
		return foldResult{}, false
	}

	segments := []string{key}
	current := value
	for len(segments) < flatten {
		obj, ok := current.(*Object)
		if !ok || obj.Len() != 1 {
			break
		}
		f := obj.Fields()[0]
		segments = append(segments, f.Key)
		current = f.Value
	}
	if len(segments) < 2 {
		return foldResult{}, false
	}
	for _, s := range segments {
		if !isIdentifierSegment(s) {
			return foldResult{}, false
		}
	}

	folded := strings.Join(segments, ".")
	if slices.Contains(siblings, folded) || rootLiteral[joinPath(prefix, folded)] {
		return foldResult{}, false
	}

	result := foldResult{key: folded, segments: len(segments), leaf: current}
	if obj, ok := current.(*Object); ok && obj.Len() > 0 {
		result.remainder = obj
	}
	return result, true
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
