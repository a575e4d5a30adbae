package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/gotoon/internal/errors" // Custom errors package
	"github.com/mcncl/gotoon/internal/models"
	"github.com/mcncl/gotoon/toon"
)

// Parse reads one document in the given format from reader. An empty format means JSON.
func Parse(reader io.Reader, format models.Format) (models.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read input", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Document{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	if format == "" {
		format = models.FormatJSON
	}

	var root any
	switch format {
	case models.FormatJSON:
		root, err = parseJSON(data)
	case models.FormatYAML:
		root, err = parseYAML(data)
	case models.FormatTOML:
		root, err = parseTOML(data)
	case models.FormatTOON:
		root, err = ParseTOON(string(data), toon.DefaultDecodeOptions())
	default:
		return models.Document{}, errors.NewInputError(fmt.Sprintf("cannot parse format '%s'", format), errors.ErrUnsupportedFormat)
	}
	if err != nil {
		return models.Document{}, err
	}

	return models.Document{Root: root, Format: format}, nil
}

// parseJSON reads a single JSON value keeping object key order
func parseJSON(data []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // Keep integers exact until they are normalized

	root, err := toon.ReadJSON(decoder)
	if err != nil {
		return nil, jsonError(err)
	}

	// Anything other than EOF after the first value is either a second value or garbage.
	tok, err := decoder.Token()
	if err == nil {
		return nil, errors.NewParsingError(fmt.Sprintf("multiple JSON values found at the root (next token %v)", tok), errors.ErrMultipleJSON)
	}
	if !stderrors.Is(err, io.EOF) {
		return nil, errors.NewParsingError("invalid trailing data after first JSON value", err)
	}

	return root, nil
}

func jsonError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	return errors.NewParsingError("failed to decode JSON", err)
}

// ParseTOON decodes a TOON document with the given options
func ParseTOON(data string, opts toon.DecodeOptions) (any, error) {
	root, err := toon.DecodeWithOptions(data, &opts)
	if err != nil {
		var syntaxErr *toon.SyntaxError
		if stderrors.As(err, &syntaxErr) && syntaxErr.Line > 0 {
			return nil, errors.NewDecodeError(fmt.Sprintf("TOON error on line %d", syntaxErr.Line), err)
		}
		return nil, errors.NewDecodeError("failed to decode TOON", err)
	}
	return root, nil
}

// ParseString parses a document from a string
func ParseString(input string, format models.Format) (models.Document, error) {
	if strings.TrimSpace(input) == "" {
		return models.Document{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(input), format)
}

// ParseFile parses a document from a file path. An empty format is taken from the
// file extension, falling back to JSON.
func ParseFile(filePath string, format models.Format) (models.Document, error) {
	if format == "" {
		if guessed, ok := models.FormatFromPath(filePath); ok {
			format = guessed
		}
	}

	data, err := ReadFile(filePath)
	if err != nil {
		return models.Document{}, err
	}
	return Parse(bytes.NewReader(data), format)
}

// ReadFile reads a whole input file. Missing and empty files are input errors.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	// Check for empty file before reading
	stat, err := file.Stat()
	if err != nil {
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to read file '%s'", filePath), err)
	}
	return data, nil
}
