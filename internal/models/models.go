package models

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mcncl/gotoon/toon"
)

// Format is the syntax of an input document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatTOON Format = "toon"
)

// Document holds a parsed input document in the TOON data model:
// nil, bool, string, int64, uint64, float64, []any and *toon.Object.
type Document struct {
	Root   any
	Format Format
}

// RootIsArray reports whether the document root is an array.
func (d Document) RootIsArray() bool {
	_, ok := d.Root.([]any)
	return ok
}

// ParseFormat maps a user supplied format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "toon":
		return FormatTOON, nil
	}
	return "", fmt.Errorf("unknown format '%s'", name)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// KeyRules renames or drops object keys.
type KeyRules interface {
	KeyName(key string) string
	ShouldSkipKey(key string) bool
}

// RewriteKeys returns a copy of v with every object key passed through rules.
// Skipped keys are dropped along with their values; when two keys map to the
// same name the later one wins.
func RewriteKeys(v any, rules KeyRules) any {
	switch val := v.(type) {
	case *toon.Object:
		out := toon.NewObject()
		for _, f := range val.Fields() {
			if rules.ShouldSkipKey(f.Key) {
				continue
			}
			out.Set(rules.KeyName(f.Key), RewriteKeys(f.Value, rules))
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = RewriteKeys(item, rules)
		}
		return out
	}
	return v
}
