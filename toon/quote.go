package toon

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numericLikeRegex = regexp.MustCompile(`(?i)^-?\d+(?:\.\d+)?(?:e[+-]?\d+)?$`)
	octalLikeRegex   = regexp.MustCompile(`^0\d+$`)
	unquotedKeyRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	identifierRegex  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// formatPrimitive renders a scalar without quoting. Strings are returned as-is.
func formatPrimitive(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return formatFloat(val)
	case string:
		return val
	}
	return ""
}

func formatFloat(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func encodePrimitive(v any, delimiter Delimiter) string {
	if s, ok := v.(string); ok {
		return encodeString(s, delimiter)
	}
	return formatPrimitive(v)
}

func encodeString(s string, delimiter Delimiter) string {
	if isSafeUnquoted(s, delimiter) {
		return s
	}
	return quoteString(s)
}

// isSafeUnquoted reports whether s reads back as the same string without quotes.
func isSafeUnquoted(s string, delimiter Delimiter) bool {
	if s == "" {
		return false
	}
	if s != strings.TrimSpace(s) {
		return false
	}
	switch s {
	case "true", "false", "null":
		return false
	}
	if numericLikeRegex.MatchString(s) || octalLikeRegex.MatchString(s) {
		return false
	}
	if strings.ContainsAny(s, ":\"\\[]{}\n\r\t") {
		return false
	}
	if strings.Contains(s, string(delimiter)) {
		return false
	}
	return s[0] != '-'
}

func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func encodeKey(key string) string {
	if unquotedKeyRegex.MatchString(key) {
		return key
	}
	return quoteString(key)
}

func isIdentifierSegment(s string) bool {
	return identifierRegex.MatchString(s)
}

// unescapeString reverses quoteString on the content between the quotes.
func unescapeString(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return "", ErrInvalidEscape
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		default:
			return "", ErrInvalidEscape
		}
		i++
	}
	return b.String(), nil
}

// findClosingQuote returns the index of the quote closing the one at start, or -1.
func findClosingQuote(s string, start int) int {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
			}
		case '"':
			return i
		}
	}
	return -1
}

// findUnquoted returns the index of the first c outside quoted sections, or -1.
func findUnquoted(s string, c byte, start int) int {
	inQuotes := false
	for i := start; i < len(s); i++ {
		switch {
		case inQuotes && s[i] == '\\' && i+1 < len(s):
			i++
		case s[i] == '"':
			inQuotes = !inQuotes
		case s[i] == c && !inQuotes:
			return i
		}
	}
	return -1
}
