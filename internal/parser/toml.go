package parser

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	stderrors "errors"

	"github.com/BurntSushi/toml"
	"github.com/mcncl/gotoon/internal/errors"
	"github.com/mcncl/gotoon/toon"
)

// Zone names BurntSushi/toml attaches to local date and time values.
const (
	tomlLocalDatetime = "datetime-local"
	tomlLocalDate     = "date-local"
	tomlLocalTime     = "time-local"
)

// parseTOML decodes a TOML document. The decoded map loses ordering, so keys are
// re-ordered with the sequence reported by MetaData.Keys.
func parseTOML(data []byte) (any, error) {
	var raw map[string]any
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw)
	if err != nil {
		var parseErr toml.ParseError
		if stderrors.As(err, &parseErr) {
			return nil, errors.NewParsingError(fmt.Sprintf("TOML syntax error: %s", parseErr.Error()), errors.ErrInvalidTOML)
		}
		return nil, errors.NewParsingError("failed to decode TOML", err)
	}

	order := make(map[string][]string)
	seen := make(map[string]bool)
	for _, key := range md.Keys() {
		if len(key) == 0 {
			continue
		}
		full := key.String()
		if seen[full] {
			continue
		}
		seen[full] = true
		parent := strings.Join(key[:len(key)-1], ".")
		order[parent] = append(order[parent], key[len(key)-1])
	}

	return convertTOMLValue(raw, "", order)
}

func convertTOMLValue(v any, path string, order map[string][]string) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		return convertTOMLTable(val, path, order)
	case []map[string]any:
		arr := make([]any, len(val))
		for i, table := range val {
			obj, err := convertTOMLTable(table, path, order)
			if err != nil {
				return nil, err
			}
			arr[i] = obj
		}
		return arr, nil
	case []any:
		arr := make([]any, len(val))
		for i, item := range val {
			converted, err := convertTOMLValue(item, path, order)
			if err != nil {
				return nil, err
			}
			arr[i] = converted
		}
		return arr, nil
	case time.Time:
		return formatTOMLTime(val), nil
	}
	return toon.Normalize(v)
}

func convertTOMLTable(table map[string]any, path string, order map[string][]string) (*toon.Object, error) {
	obj := toon.NewObject()
	add := func(key string) error {
		value, ok := table[key]
		if !ok || obj.Has(key) {
			return nil
		}
		converted, err := convertTOMLValue(value, joinTOMLPath(path, key), order)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		obj.Set(key, converted)
		return nil
	}

	for _, key := range order[path] {
		if err := add(key); err != nil {
			return nil, err
		}
	}

	// Keys MetaData did not report (e.g. inside inline tables) follow in sorted order.
	var rest []string
	for key := range table {
		if !obj.Has(key) {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if err := add(key); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func joinTOMLPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func formatTOMLTime(t time.Time) string {
	switch t.Location().String() {
	case tomlLocalDate:
		return t.Format("2006-01-02")
	case tomlLocalTime:
		return t.Format("15:04:05.999999999")
	case tomlLocalDatetime:
		return t.Format("2006-01-02T15:04:05.999999999")
	}
	return t.Format(time.RFC3339Nano)
}
