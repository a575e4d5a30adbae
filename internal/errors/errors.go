package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput         = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON        = errors.New("invalid JSON format")
	ErrInvalidYAML        = errors.New("invalid YAML format")
	ErrInvalidTOML        = errors.New("invalid TOML format")
	ErrMultipleJSON       = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrMultipleDocuments  = errors.New("multiple YAML documents found, only one is allowed")
	ErrUnsupportedFormat  = errors.New("unsupported input format")
	ErrFileNotFound       = errors.New("file not found")
	ErrFileEmpty          = errors.New("file is empty")
	ErrNoInput            = errors.New("no input provided: please specify a file with -i or pipe data to stdin")
	ErrInvalidFilePath    = errors.New("invalid file path")
	ErrVerificationFailed = errors.New("decoded data does not match the original")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput   ErrorType = "input"
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeEncode  ErrorType = "encode"
	ErrorTypeDecode  ErrorType = "decode"
	ErrorTypeVerify  ErrorType = "verify"
	ErrorTypeOutput  ErrorType = "output"
	ErrorTypeUnknown ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to reading input
func NewInputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInput, Message: message, Err: err}
}

// NewParsingError creates a new error related to parsing an input document
func NewParsingError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeParsing, Message: message, Err: err}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeConfig, Message: message, Err: err}
}

// NewEncodeError creates a new error related to TOON encoding
func NewEncodeError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeEncode, Message: message, Err: err}
}

// NewDecodeError creates a new error related to TOON decoding
func NewDecodeError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeDecode, Message: message, Err: err}
}

// NewVerifyError creates a new error raised when a round trip does not match
func NewVerifyError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeVerify, Message: message, Err: err}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeOutput, Message: message, Err: err}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		detail := appErr.Message
		if appErr.Err != nil {
			detail = fmt.Sprintf("%s (%v)", appErr.Message, appErr.Err)
		}
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", detail)
		case ErrorTypeParsing:
			return fmt.Sprintf("Parsing error: %s", detail)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", detail)
		case ErrorTypeEncode:
			return fmt.Sprintf("TOON encoding error: %s", detail)
		case ErrorTypeDecode:
			return fmt.Sprintf("TOON decoding error: %s", detail)
		case ErrorTypeVerify:
			return fmt.Sprintf("Verification failed: %s", detail)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", detail)
		default:
			return fmt.Sprintf("Error: %s", detail)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide a JSON, YAML, TOML or TOON document."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrInvalidYAML) {
		return "Error: The input contains invalid YAML. Please check your YAML syntax."
	}
	if errors.Is(err, ErrInvalidTOML) {
		return "Error: The input contains invalid TOML. Please check your TOML syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON object or array."
	}
	if errors.Is(err, ErrUnsupportedFormat) {
		return "Error: Unsupported input format. Use one of json, yaml, toml or toon."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrVerificationFailed) {
		return "Error: The decoded data does not match the original."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
