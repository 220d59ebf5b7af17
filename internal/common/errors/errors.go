// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidJobVariables ErrorCode = "INVALID_JOB_VARIABLES"

	ErrCodeExtractionFailed     ErrorCode = "EXTRACTION_FAILED"
	ErrCodeExtractionTimeout    ErrorCode = "EXTRACTION_TIMEOUT"
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"

	ErrCodeFinancialDataUnavailable ErrorCode = "FINANCIAL_DATA_UNAVAILABLE"

	ErrCodeRecordPersistFailed ErrorCode = "RECORD_PERSIST_FAILED"
	ErrCodeRecordNotFound      ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeSearchIndexFailed   ErrorCode = "SEARCH_INDEX_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeRecipientNotFound      ErrorCode = "RECIPIENT_NOT_FOUND"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError unwraps err looking for a *StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidJobVariablesError is returned when job variables fail schema validation.
func NewInvalidJobVariablesError(details string) *StandardError {
	return newError(ErrCodeInvalidJobVariables, "Job variables failed validation", details, false)
}

// NewExtractionFailedError covers backend failures while analyzing a document.
func NewExtractionFailedError(documentType string, err error) *StandardError {
	return newError(ErrCodeExtractionFailed, "Document field extraction failed",
		fmt.Sprintf("documentType: %s, error: %v", documentType, err), true)
}

func NewExtractionTimeoutError(documentType string) *StandardError {
	return newError(ErrCodeExtractionTimeout, "Document field extraction timed out",
		fmt.Sprintf("documentType: %s", documentType), true)
}

func NewClassificationFailedError(err error) *StandardError {
	return newError(ErrCodeClassificationFailed, "Document classification failed", err.Error(), true)
}

// NewFinancialDataUnavailableError is used when every financial source failed for an applicant.
func NewFinancialDataUnavailableError(applicantID string, err error) *StandardError {
	return newError(ErrCodeFinancialDataUnavailable, "Financial data services unavailable",
		fmt.Sprintf("applicantId: %s, error: %v", applicantID, err), true)
}

func NewRecordPersistFailedError(recordID string, err error) *StandardError {
	return newError(ErrCodeRecordPersistFailed, "Failed to persist record",
		fmt.Sprintf("recordId: %s, error: %v", recordID, err), true)
}

func NewRecordNotFoundError(recordID string) *StandardError {
	return newError(ErrCodeRecordNotFound, "Record not found",
		fmt.Sprintf("recordId: %s", recordID), false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' failed", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the error codes caught by boundary events.
// Codes missing from the map are thrown as-is.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidJobVariables:      "INVALID_JOB_VARIABLES",
	ErrCodeExtractionFailed:         "EXTRACTION_FAILED",
	ErrCodeExtractionTimeout:        "EXTRACTION_FAILED",
	ErrCodeClassificationFailed:     "CLASSIFICATION_FAILED",
	ErrCodeFinancialDataUnavailable: "FINANCIAL_DATA_UNAVAILABLE",
	ErrCodeRecordPersistFailed:      "RECORD_PERSIST_FAILED",
	ErrCodeRecordNotFound:           "RECORD_NOT_FOUND",
	ErrCodeSearchIndexFailed:        "RECORD_PERSIST_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeRecipientNotFound:        "RECIPIENT_NOT_FOUND",
}

// IsBPMNErrorCode reports whether code can be thrown to a boundary event.
func IsBPMNErrorCode(code string) bool {
	for _, bpmn := range BPMNErrorMapping {
		if bpmn == code {
			return true
		}
	}
	return false
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeExtractionFailed,
		ErrCodeFinancialDataUnavailable,
		ErrCodeRecordPersistFailed,
		ErrCodeSearchIndexFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeExtractionTimeout,
		ErrCodeClassificationFailed,
		ErrCodeTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns a coarse grouping used as a log/metric label.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "EXTRACTION") || strings.Contains(codeStr, "CLASSIFICATION"):
		return "DOCUMENT"
	case strings.Contains(codeStr, "FINANCIAL"):
		return "FINANCIAL"
	case strings.Contains(codeStr, "RECORD") || strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "RECIPIENT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "EXTERNAL"):
		return "EXTERNAL"
	default:
		return "UNKNOWN"
	}
}
