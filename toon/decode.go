package toon

import (
	"strconv"
	"strings"
)

type decoder struct {
	strict     bool
	indentSize int
	expand     PathExpansion
}

func newDecoder(opts DecodeOptions) *decoder {
	return &decoder{
		strict:     opts.Strict,
		indentSize: opts.Indent,
		expand:     opts.ExpandPaths,
	}
}

func (d *decoder) decode(data string) (any, error) {
	c, err := scan(data, d.indentSize, d.strict)
	if err != nil {
		return nil, err
	}
	if c.atEnd() {
		return NewObject(), nil
	}

	value, err := d.decodeRoot(c)
	if err != nil {
		return nil, err
	}
	if d.strict && !c.atEnd() {
		ln := c.peek()
		return nil, syntaxErrorf(ln.number, ErrUnexpectedLine, "%q is not part of any value", ln.content)
	}

	if d.expand == ExpansionSafe {
		return expandPaths(value, d.strict)
	}
	return value, nil
}

func (d *decoder) decodeRoot(c *cursor) (any, error) {
	first := c.peek()
	if isArrayHeaderAfterHyphen(first.content) {
		h, ok, err := parseHeader(first.content, first.number)
		if err != nil {
			return nil, err
		}
		if ok && !h.hasKey {
			c.advance()
			return d.decodeArrayFromHeader(h, c, first.depth, first.number)
		}
	}

	if len(c.lines) == 1 && !isKeyValueLine(first.content) {
		c.advance()
		return d.parsePrimitive(first.content, first.number)
	}
	return d.decodeObject(c, 0)
}

func (d *decoder) decodeObject(c *cursor, baseDepth int) (*Object, error) {
	obj := NewObject()
	depth := -1
	for !c.atEnd() {
		ln := c.peek()
		if ln.depth < baseDepth {
			break
		}
		if depth < 0 {
			depth = ln.depth
		}
		if ln.depth != depth {
			break
		}

		c.advance()
		key, value, quoted, err := d.decodeKeyValue(ln, ln.content, c, depth, depth+1)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
		if quoted && strings.Contains(key, ".") {
			obj.markQuoted(key)
		}
	}
	return obj, nil
}

// decodeKeyValue parses "key: value", "key:" followed by a nested object whose lines are
// at least childDepth deep, or a keyed array header.
func (d *decoder) decodeKeyValue(ln *line, content string, c *cursor, baseDepth, childDepth int) (string, any, bool, error) {
	h, ok, err := parseHeader(content, ln.number)
	if err != nil {
		return "", nil, false, err
	}
	if ok && h.hasKey {
		value, err := d.decodeArrayFromHeader(h, c, baseDepth, ln.number)
		return h.key, value, h.quotedKey, err
	}

	key, rest, quoted, err := parseKeyToken(content, ln.number)
	if err != nil {
		return "", nil, false, err
	}
	if rest == "" {
		if next := c.peek(); next != nil && next.depth >= childDepth {
			nested, err := d.decodeObject(c, childDepth)
			return key, nested, quoted, err
		}
		return key, NewObject(), quoted, nil
	}

	value, err := d.parsePrimitive(rest, ln.number)
	return key, value, quoted, err
}

func (d *decoder) decodeArrayFromHeader(h header, c *cursor, baseDepth, lineNo int) (any, error) {
	if h.hasInline && len(h.fields) > 0 {
		return nil, syntaxErrorf(lineNo, ErrInvalidHeader, "tabular header cannot carry inline values")
	}
	if h.hasInline {
		return d.decodeInlineArray(h, lineNo)
	}
	if len(h.fields) > 0 {
		return d.decodeTabularArray(h, c, baseDepth, lineNo)
	}
	return d.decodeListArray(h, c, baseDepth, lineNo)
}

func (d *decoder) decodeInlineArray(h header, lineNo int) (any, error) {
	values := splitDelimited(h.inline, h.delimiter)
	result := make([]any, len(values))
	for i, v := range values {
		p, err := d.parsePrimitive(v, lineNo)
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	if d.strict && len(result) != h.length {
		return nil, syntaxErrorf(lineNo, ErrCountMismatch, "expected %d inline array items, got %d", h.length, len(result))
	}
	return result, nil
}

func (d *decoder) decodeListArray(h header, c *cursor, baseDepth, lineNo int) (any, error) {
	items := []any{}
	itemDepth := baseDepth + 1
	start, end := 0, 0

	for !c.atEnd() && len(items) < h.length {
		ln := c.peek()
		if ln.depth != itemDepth || !isListItem(ln.content) {
			break
		}
		if start == 0 {
			start = ln.number
		}
		item, err := d.decodeListItem(c, itemDepth)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		end = c.current().number
	}

	if d.strict {
		if len(items) != h.length {
			return nil, syntaxErrorf(lineNo, ErrCountMismatch, "expected %d list array items, got %d", h.length, len(items))
		}
		if n := c.blankBetween(start, end); n > 0 {
			return nil, syntaxErrorf(n, ErrBlankLine, "blank lines inside list array are not allowed in strict mode")
		}
		if next := c.peek(); next != nil && next.depth == itemDepth && isListItem(next.content) {
			return nil, syntaxErrorf(next.number, ErrCountMismatch, "expected %d list array items, but found more", h.length)
		}
	}
	return items, nil
}

func (d *decoder) decodeTabularArray(h header, c *cursor, baseDepth, lineNo int) (any, error) {
	rows := []any{}
	rowDepth := baseDepth + 1
	start, end := 0, 0

	for !c.atEnd() && len(rows) < h.length {
		ln := c.peek()
		if ln.depth != rowDepth || isListItem(ln.content) || !isDataRow(ln.content, h.delimiter) {
			break
		}
		c.advance()
		if start == 0 {
			start = ln.number
		}
		end = ln.number

		values := splitDelimited(ln.content, h.delimiter)
		if d.strict && len(values) != len(h.fields) {
			return nil, syntaxErrorf(ln.number, ErrCountMismatch, "expected %d tabular row values, got %d", len(h.fields), len(values))
		}
		row := NewObject()
		for i, field := range h.fields {
			if i >= len(values) {
				break
			}
			v, err := d.parsePrimitive(values[i], ln.number)
			if err != nil {
				return nil, err
			}
			row.Set(field, v)
		}
		rows = append(rows, row)
	}

	if d.strict {
		if len(rows) != h.length {
			return nil, syntaxErrorf(lineNo, ErrCountMismatch, "expected %d tabular rows, got %d", h.length, len(rows))
		}
		if n := c.blankBetween(start, end); n > 0 {
			return nil, syntaxErrorf(n, ErrBlankLine, "blank lines inside tabular array are not allowed in strict mode")
		}
		if next := c.peek(); next != nil && next.depth == rowDepth && !isListItem(next.content) && isDataRow(next.content, h.delimiter) {
			return nil, syntaxErrorf(next.number, ErrCountMismatch, "expected %d tabular rows, but found more", h.length)
		}
	}
	return rows, nil
}

func (d *decoder) decodeListItem(c *cursor, baseDepth int) (any, error) {
	ln := c.next()
	if ln.content == "-" {
		return NewObject(), nil
	}
	after := strings.TrimPrefix(ln.content, "- ")
	if strings.TrimSpace(after) == "" {
		return NewObject(), nil
	}

	if isArrayHeaderAfterHyphen(after) {
		h, ok, err := parseHeader(strings.TrimLeft(after, " "), ln.number)
		if err != nil {
			return nil, err
		}
		if ok && !h.hasKey {
			return d.decodeArrayFromHeader(h, c, baseDepth, ln.number)
		}
	}
	if findUnquoted(after, ':', 0) >= 0 {
		return d.decodeObjectFromListItem(ln, after, c, baseDepth)
	}
	return d.parsePrimitive(after, ln.number)
}

// decodeObjectFromListItem reads an object whose first field shares the hyphen line.
// The remaining fields sit one level below the hyphen.
func (d *decoder) decodeObjectFromListItem(ln *line, first string, c *cursor, baseDepth int) (any, error) {
	obj := NewObject()
	key, value, quoted, err := d.decodeKeyValue(ln, first, c, baseDepth, baseDepth+2)
	if err != nil {
		return nil, err
	}
	obj.Set(key, value)
	if quoted && strings.Contains(key, ".") {
		obj.markQuoted(key)
	}

	fieldDepth := baseDepth + 1
	for !c.atEnd() {
		next := c.peek()
		if next.depth != fieldDepth || isListItem(next.content) {
			break
		}
		c.advance()
		key, value, quoted, err := d.decodeKeyValue(next, next.content, c, fieldDepth, fieldDepth+1)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
		if quoted && strings.Contains(key, ".") {
			obj.markQuoted(key)
		}
	}
	return obj, nil
}

func (d *decoder) parsePrimitive(token string, lineNo int) (any, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return "", nil
	}
	if t[0] == '"' {
		return parseStringLiteral(t, lineNo)
	}
	switch t {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}
	if isNumericLiteral(t) {
		if n, err := ParseNumber(t); err == nil && n != nil {
			return n, nil
		}
	}
	return t, nil
}

func isNumericLiteral(s string) bool {
	return numberLiteralRegex.MatchString(s) && !leadingZeroRegex.MatchString(s)
}

func parseStringLiteral(t string, lineNo int) (string, error) {
	t = strings.TrimSpace(t)
	if !strings.HasPrefix(t, `"`) {
		return t, nil
	}
	end := findClosingQuote(t, 0)
	if end < 0 {
		return "", syntaxErrorf(lineNo, ErrUnterminatedString, "missing closing quote in %s", t)
	}
	if end != len(t)-1 {
		return "", syntaxErrorf(lineNo, ErrTrailingCharacters, "after closing quote in %s", t)
	}
	s, err := unescapeString(t[1:end])
	if err != nil {
		return "", syntaxErrorf(lineNo, err, "in %s", t)
	}
	return s, nil
}

func parseKeyToken(content string, lineNo int) (key, rest string, quoted bool, err error) {
	if strings.HasPrefix(content, `"`) {
		end := findClosingQuote(content, 0)
		if end < 0 {
			return "", "", false, syntaxErrorf(lineNo, ErrUnterminatedString, "unterminated quoted key")
		}
		key, err := unescapeString(content[1:end])
		if err != nil {
			return "", "", false, syntaxErrorf(lineNo, err, "in key %s", content[:end+1])
		}
		if end+1 >= len(content) || content[end+1] != ':' {
			return "", "", false, syntaxErrorf(lineNo, ErrMissingColon, "after key %s", content[:end+1])
		}
		return key, strings.TrimSpace(content[end+2:]), true, nil
	}

	idx := strings.IndexByte(content, ':')
	if idx < 0 {
		return "", "", false, syntaxErrorf(lineNo, ErrMissingColon, "in %q", content)
	}
	return strings.TrimSpace(content[:idx]), strings.TrimSpace(content[idx+1:]), false, nil
}

type header struct {
	key       string
	hasKey    bool
	quotedKey bool
	length    int
	delimiter Delimiter
	fields    []string
	inline    string
	hasInline bool
}

// parseHeader recognises key[N<delim>]{fields}: lines. ok is false when content is not
// an array header; err is set only for malformed quoting inside a header.
func parseHeader(content string, lineNo int) (h header, ok bool, err error) {
	s := content
	pos := 0
	if strings.HasPrefix(s, `"`) {
		end := findClosingQuote(s, 0)
		if end < 0 || end+1 >= len(s) || s[end+1] != '[' {
			return h, false, nil
		}
		key, err := unescapeString(s[1:end])
		if err != nil {
			return h, false, syntaxErrorf(lineNo, err, "in key %s", s[:end+1])
		}
		h.key, h.hasKey, h.quotedKey = key, true, true
		pos = end + 1
	} else {
		pos = strings.IndexByte(s, '[')
		if pos < 0 {
			return h, false, nil
		}
		rawKey := s[:pos]
		if strings.ContainsAny(rawKey, ":\"") {
			return h, false, nil
		}
		h.key = strings.TrimSpace(rawKey)
		h.hasKey = h.key != ""
	}

	closing := strings.IndexByte(s[pos:], ']')
	if closing < 0 {
		return h, false, nil
	}
	closing += pos
	length, delimiter, valid := parseBracket(s[pos+1 : closing])
	if !valid {
		return h, false, nil
	}
	h.length, h.delimiter = length, delimiter

	rest := s[closing+1:]
	if strings.HasPrefix(rest, "{") {
		end := findUnquoted(rest, '}', 0)
		if end < 0 {
			return h, false, nil
		}
		for _, f := range splitDelimited(rest[1:end], delimiter) {
			name, err := parseStringLiteral(f, lineNo)
			if err != nil {
				return h, false, err
			}
			h.fields = append(h.fields, name)
		}
		rest = rest[end+1:]
	}
	if !strings.HasPrefix(rest, ":") {
		return h, false, nil
	}

	h.inline = strings.TrimSpace(rest[1:])
	h.hasInline = h.inline != ""
	return h, true, nil
}

func parseBracket(seg string) (int, Delimiter, bool) {
	delimiter := Comma
	switch {
	case strings.HasSuffix(seg, string(Tab)):
		delimiter = Tab
		seg = strings.TrimSuffix(seg, string(Tab))
	case strings.HasSuffix(seg, string(Pipe)):
		delimiter = Pipe
		seg = strings.TrimSuffix(seg, string(Pipe))
	}
	n, err := strconv.Atoi(seg)
	if err != nil || n < 0 {
		return 0, "", false
	}
	return n, delimiter, true
}

// splitDelimited splits s on delimiter outside quoted sections. Quotes are kept so that
// each value can be parsed as a primitive token.
func splitDelimited(s string, delimiter Delimiter) []string {
	var values []string
	var buf strings.Builder
	inQuotes := false
	delim := delimiter[0]

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case inQuotes && ch == '\\' && i+1 < len(s):
			buf.WriteByte(ch)
			buf.WriteByte(s[i+1])
			i++
		case ch == '"':
			inQuotes = !inQuotes
			buf.WriteByte(ch)
		case ch == delim && !inQuotes:
			values = append(values, strings.TrimSpace(buf.String()))
			buf.Reset()
		default:
			buf.WriteByte(ch)
		}
	}
	if buf.Len() > 0 || len(values) > 0 {
		values = append(values, strings.TrimSpace(buf.String()))
	}
	return values
}

func isListItem(content string) bool {
	return content == "-" || strings.HasPrefix(content, "- ")
}

func isArrayHeaderAfterHyphen(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "[") && findUnquoted(content, ':', 0) >= 0
}

func isKeyValueLine(content string) bool {
	if strings.HasPrefix(content, `"`) {
		end := findClosingQuote(content, 0)
		return end >= 0 && strings.Contains(content[end+1:], ":")
	}
	return strings.Contains(content, ":")
}

// isDataRow tells a tabular row apart from a key/value line that follows the table.
func isDataRow(content string, delimiter Delimiter) bool {
	colon := findUnquoted(content, ':', 0)
	if colon < 0 {
		return true
	}
	delim := findUnquoted(content, delimiter[0], 0)
	return delim >= 0 && delim < colon
}
