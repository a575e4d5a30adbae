package toon

import "strings"

// expandPaths rewrites unquoted dotted keys such as a.b.c into nested objects.
// Keys whose segments are not all identifiers are left alone.
func expandPaths(value any, strict bool) (any, error) {
	switch val := value.(type) {
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			expanded, err := expandPaths(item, strict)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	case *Object:
		return expandObject(val, strict)
	}
	return value, nil
}

func expandObject(obj *Object, strict bool) (*Object, error) {
	out := NewObject()
	for _, f := range obj.Fields() {
		value, err := expandPaths(f.Value, strict)
		if err != nil {
			return nil, err
		}

		if segments, ok := expandableKey(obj, f.Key); ok {
			if err := insertPath(out, segments, value, strict); err != nil {
				return nil, err
			}
			continue
		}
		if err := setMerged(out, f.Key, value, strict); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func expandableKey(obj *Object, key string) ([]string, bool) {
	if !strings.Contains(key, ".") || obj.isQuoted(key) {
		return nil, false
	}
	segments := strings.Split(key, ".")
	for _, s := range segments {
		if !isIdentifierSegment(s) {
			return nil, false
		}
	}
	return segments, true
}

func insertPath(target *Object, segments []string, value any, strict bool) error {
	current := target
	for i, seg := range segments[:len(segments)-1] {
		existing, ok := current.Get(seg)
		if !ok {
			next := NewObject()
			current.Set(seg, next)
			current = next
			continue
		}
		if next, isObj := existing.(*Object); isObj {
			current = next
			continue
		}
		if strict {
			return syntaxErrorf(0, ErrPathConflict, "cannot expand %q: %q already holds a %s",
				strings.Join(segments, "."), strings.Join(segments[:i+1], "."), kindOf(existing))
		}
		next := NewObject()
		current.Set(seg, next)
		current = next
	}
	return setMerged(current, segments[len(segments)-1], value, strict)
}

// setMerged stores value under key, deep-merging when both sides are objects.
// Any other collision is an error in strict mode and last-write-wins otherwise.
func setMerged(target *Object, key string, value any, strict bool) error {
	existing, ok := target.Get(key)
	if !ok {
		target.Set(key, value)
		return nil
	}

	dst, dstObj := existing.(*Object)
	src, srcObj := value.(*Object)
	if dstObj && srcObj {
		return mergeObjects(dst, src, strict)
	}
	if strict {
		return syntaxErrorf(0, ErrPathConflict, "key %q is assigned a %s and a %s", key, kindOf(existing), kindOf(value))
	}
	target.Set(key, value)
	return nil
}

func mergeObjects(dst, src *Object, strict bool) error {
	for _, f := range src.Fields() {
		if err := setMerged(dst, f.Key, f.Value, strict); err != nil {
			return err
		}
	}
	return nil
}
