package model

import "fmt"

// ErrorCode is one of the machine-readable codes in the receiving pipeline's
// error taxonomy. Never inspect error strings to branch on outcome — switch
// on PipelineError.Code.
type ErrorCode string

const (
	ErrFileTooLarge        ErrorCode = "FILE_TOO_LARGE"
	ErrInvalidFileType     ErrorCode = "INVALID_FILE_TYPE"
	ErrImageTooSmall       ErrorCode = "IMAGE_TOO_SMALL"
	ErrImageQualityTooLow  ErrorCode = "IMAGE_QUALITY_TOO_LOW"
	ErrInvalidImage        ErrorCode = "INVALID_IMAGE"
	ErrRateLimitExceeded   ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrOCRFailed           ErrorCode = "OCR_FAILED"
	ErrLLMBudgetExceeded   ErrorCode = "LLM_BUDGET_EXCEEDED"
	ErrNormalizationFailed ErrorCode = "NORMALIZATION_FAILED"
	ErrSessionNotFound     ErrorCode = "SESSION_NOT_FOUND"
	ErrUnverifiedLines     ErrorCode = "UNVERIFIED_LINES"
	ErrSessionAlreadyCommitted ErrorCode = "SESSION_ALREADY_COMMITTED"
	ErrInsufficientStock   ErrorCode = "INSUFFICIENT_STOCK"
	ErrForbiddenPrivileged ErrorCode = "FORBIDDEN_PRIVILEGED_ACTION"
	ErrSignatureMismatch   ErrorCode = "SIGNATURE_MISMATCH"
	ErrInternal            ErrorCode = "INTERNAL_ERROR"
)

// PipelineError is the typed error every layer of the pipeline returns;
// handlers map it to the HTTP error envelope via Code.
type PipelineError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a PipelineError with optional detail fields.
func NewError(code ErrorCode, message string, details map[string]interface{}) *PipelineError {
	return &PipelineError{Code: code, Message: message, Details: details}
}

// AsPipelineError unwraps err into a *PipelineError, or maps it to INTERNAL_ERROR.
func AsPipelineError(err error) *PipelineError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PipelineError); ok {
		return pe
	}
	return &PipelineError{Code: ErrInternal, Message: err.Error()}
}
