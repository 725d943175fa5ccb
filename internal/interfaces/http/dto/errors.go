package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
	// ErrCodeValidationLength is used when a field length is invalid
	ErrCodeValidationLength = "ERR_VALIDATION_LENGTH"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeInvalidOrder is used when an order breaks a domain invariant
	ErrCodeInvalidOrder = "ERR_INVALID_ORDER"
)

// Import error codes
const (
	// ErrCodeImportInvalidFile is used when the upload cannot be parsed
	ErrCodeImportInvalidFile = "ERR_IMPORT_INVALID_FILE"
	// ErrCodeImportEmptyFile is used for a zero-byte upload
	ErrCodeImportEmptyFile = "ERR_IMPORT_EMPTY_FILE"
	// ErrCodeImportFileTooLarge is used when the upload exceeds the size limit
	ErrCodeImportFileTooLarge = "ERR_IMPORT_FILE_TOO_LARGE"
	// ErrCodeImportUnsupportedFormat is used for extensions other than csv/xlsx
	ErrCodeImportUnsupportedFormat = "ERR_IMPORT_UNSUPPORTED_FORMAT"
	// ErrCodeImportMissingHeader is used when the first row holds no header
	ErrCodeImportMissingHeader = "ERR_IMPORT_MISSING_HEADER"
	// ErrCodeImportValidation is used when at least one record is invalid
	ErrCodeImportValidation = "ERR_IMPORT_VALIDATION"
	// ErrCodeDuplicateSubmission is used when an Idempotency-Key was already processed
	ErrCodeDuplicateSubmission = "ERR_DUPLICATE_SUBMISSION"
	// ErrCodeArchiveNotFound is used when an import has no archived upload
	ErrCodeArchiveNotFound = "ERR_ARCHIVE_NOT_FOUND"
	// ErrCodeArchiveUnavailable is used when archiving is disabled
	ErrCodeArchiveUnavailable = "ERR_ARCHIVE_UNAVAILABLE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeTooManyRequests is an alias for rate limiting
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// Availability error codes
const (
	// ErrCodeServiceUnavailable is used when a dependency is down
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,
	ErrCodeInvalidOrder: http.StatusUnprocessableEntity,

	// Import errors
	ErrCodeImportInvalidFile:       http.StatusBadRequest,
	ErrCodeImportEmptyFile:         http.StatusBadRequest,
	ErrCodeImportFileTooLarge:      http.StatusRequestEntityTooLarge,
	ErrCodeImportUnsupportedFormat: http.StatusBadRequest,
	ErrCodeImportMissingHeader:     http.StatusBadRequest,
	ErrCodeImportValidation:        http.StatusUnprocessableEntity,
	ErrCodeDuplicateSubmission:     http.StatusConflict,
	ErrCodeArchiveNotFound:         http.StatusNotFound,
	ErrCodeArchiveUnavailable:      http.StatusServiceUnavailable,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,

	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps old error codes to new standardized codes
// This is for backward compatibility with existing domain errors
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
	"RATE_LIMIT_EXCEEDED":  ErrCodeRateLimited,
	"REQUEST_TOO_LARGE":    ErrCodeRequestTooLarge,
	"INVALID_ORDER":        ErrCodeInvalidOrder,
	"DUPLICATE_SUBMISSION": ErrCodeDuplicateSubmission,
	"ARCHIVE_NOT_FOUND":    ErrCodeArchiveNotFound,
	"ARCHIVE_UNAVAILABLE":  ErrCodeArchiveUnavailable,
}

// NormalizeErrorCode converts a legacy error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
