package toon

import "strings"

type line struct {
	number  int
	indent  int
	depth   int
	content string
}

type cursor struct {
	lines  []line
	blanks []int
	pos    int
}

func (c *cursor) peek() *line {
	if c.pos >= len(c.lines) {
		return nil
	}
	return &c.lines[c.pos]
}

func (c *cursor) next() *line {
	ln := c.peek()
	if ln != nil {
		c.pos++
	}
	return ln
}

// current returns the most recently consumed line.
func (c *cursor) current() *line {
	if c.pos == 0 {
		return nil
	}
	return &c.lines[c.pos-1]
}

func (c *cursor) advance() {
	c.pos++
}

func (c *cursor) atEnd() bool {
	return c.pos >= len(c.lines)
}

// blankBetween returns the first blank line strictly between start and end, or 0.
func (c *cursor) blankBetween(start, end int) int {
	for _, n := range c.blanks {
		if n > start && n < end {
			return n
		}
	}
	return 0
}

// scan splits data into indented lines. Blank lines are recorded separately so that
// strict mode can reject them inside arrays.
func scan(data string, indentSize int, strict bool) (*cursor, error) {
	c := &cursor{}
	if strings.TrimSpace(data) == "" {
		return c, nil
	}

	for i, raw := range strings.Split(data, "\n") {
		raw = strings.TrimSuffix(raw, "\r")
		number := i + 1

		indent := 0
		for indent < len(raw) && raw[indent] == ' ' {
			indent++
		}
		content := raw[indent:]
		if strings.TrimSpace(content) == "" {
			c.blanks = append(c.blanks, number)
			continue
		}

		if strict {
			ws := indent
			for ws < len(raw) && (raw[ws] == ' ' || raw[ws] == '\t') {
				ws++
			}
			if strings.ContainsRune(raw[:ws], '\t') {
				return nil, syntaxErrorf(number, ErrIndentation, "tabs are not allowed in indentation")
			}
			if indent%indentSize != 0 {
				return nil, syntaxErrorf(number, ErrIndentation, "indentation must be a multiple of %d spaces, found %d", indentSize, indent)
			}
		}

		c.lines = append(c.lines, line{
			number:  number,
			indent:  indent,
			depth:   indent / indentSize,
			content: content,
		})
	}
	return c, nil
}
