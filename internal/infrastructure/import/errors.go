package csvimport

import (
	"errors"
	"fmt"
)

// Import error codes
const (
	ErrCodeImportInvalidFile       = "ERR_IMPORT_INVALID_FILE"
	ErrCodeImportEmptyFile         = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeImportFileTooLarge      = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeImportUnsupportedFormat = "ERR_IMPORT_UNSUPPORTED_FORMAT"
	ErrCodeImportMissingHeader     = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeImportValidation        = "ERR_IMPORT_VALIDATION"
)

// Common import errors
var (
	// ErrEmptyInput is returned when the upload has zero bytes
	ErrEmptyInput = errors.New("uploaded file is empty")

	// ErrUnsupportedFormat is returned when the file extension is neither .csv nor .xlsx
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("file missing header row")

	// ErrFileTooLarge is returned when the file exceeds maximum size
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
)

// InputError reports a file that could not be read as rows, such as a
// malformed CSV quote or a corrupt workbook.
type InputError struct {
	Line int
	Err  error
}

// Error implements the error interface
func (e *InputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *InputError) Unwrap() error {
	return e.Err
}

// IsInputError reports whether err is one of the input error kinds.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrMissingHeader) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.As(err, &ie)
}

// ErrorCode returns the import error code for an input error
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return ErrCodeImportEmptyFile
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrCodeImportUnsupportedFormat
	case errors.Is(err, ErrMissingHeader):
		return ErrCodeImportMissingHeader
	case errors.Is(err, ErrFileTooLarge):
		return ErrCodeImportFileTooLarge
	default:
		return ErrCodeImportInvalidFile
	}
}
