package toon

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType    = errors.New("toon: unsupported type")
	ErrInvalidNumber      = errors.New("toon: invalid number")
	ErrInvalidOptions     = errors.New("toon: invalid options")
	ErrCountMismatch      = errors.New("count mismatch")
	ErrIndentation        = errors.New("invalid indentation")
	ErrBlankLine          = errors.New("blank line inside array")
	ErrInvalidEscape      = errors.New("invalid escape sequence")
	ErrUnterminatedString = errors.New("unterminated string")
	ErrMissingColon       = errors.New("missing colon after key")
	ErrInvalidHeader      = errors.New("invalid array header")
	ErrPathConflict       = errors.New("path expansion conflict")
	ErrUnexpectedLine     = errors.New("unexpected line")
	ErrTrailingCharacters = errors.New("unexpected characters")
)

// SyntaxError describes a problem in a TOON document. Line is 1-based, or 0 when the
// problem is not tied to a single line.
type SyntaxError struct {
	Line int
	Msg  string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("toon: line %d: %v: %s", e.Line, e.Err, e.Msg)
	}
	return fmt.Sprintf("toon: %v: %s", e.Err, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

func syntaxErrorf(line int, err error, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Err: err, Msg: fmt.Sprintf(format, args...)}
}

func (o EncodeOptions) validate() error {
	switch o.Delimiter {
	case Comma, Tab, Pipe:
	default:
		return fmt.Errorf("%w: delimiter %q", ErrInvalidOptions, string(o.Delimiter))
	}
	switch o.KeyFolding {
	case FoldingOff, FoldingSafe:
	default:
		return fmt.Errorf("%w: key folding %q", ErrInvalidOptions, string(o.KeyFolding))
	}
	return nil
}

func (o DecodeOptions) validate() error {
	switch o.ExpandPaths {
	case ExpansionOff, ExpansionSafe:
		return nil
	}
	return fmt.Errorf("%w: path expansion %q", ErrInvalidOptions, string(o.ExpandPaths))
}
