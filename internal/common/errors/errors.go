// internal/common/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	// Dataset loading
	ErrCodeDatasetLoadFailed ErrorCode = "DATASET_LOAD_FAILED"
	ErrCodeDatasetEmpty      ErrorCode = "DATASET_EMPTY"
	ErrCodeCacheUnavailable  ErrorCode = "CACHE_UNAVAILABLE"

	// Query handling
	ErrCodeInvalidPreferences ErrorCode = "INVALID_PREFERENCES"
	ErrCodeListingNotFound    ErrorCode = "LISTING_NOT_FOUND"
	ErrCodeRankingFailed      ErrorCode = "RANKING_FAILED"

	ErrCodeParseError ErrorCode = "PARSE_ERROR"
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// BPMNError is the shape thrown back to the process engine.
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

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewDatasetLoadFailedError(source string, err error) *StandardError {
	return newError(ErrCodeDatasetLoadFailed, "Housing dataset could not be loaded",
		fmt.Sprintf("source: %s, error: %v", source, err), true, err)
}

func NewDatasetEmptyError(source string) *StandardError {
	return newError(ErrCodeDatasetEmpty, "Housing dataset contains no listings",
		fmt.Sprintf("source: %s", source), false, nil)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Dataset snapshot cache unavailable", err.Error(), true, err)
}

func NewInvalidPreferencesError(details string) *StandardError {
	return newError(ErrCodeInvalidPreferences, "Preference set failed validation", details, false, nil)
}

func NewListingNotFoundError(name string) *StandardError {
	return newError(ErrCodeListingNotFound, "Listing not found in dataset",
		fmt.Sprintf("name: %s", name), false, nil)
}

func NewRankingFailedError(err error) *StandardError {
	return newError(ErrCodeRankingFailed, "Ranking could not be computed", err.Error(), false, err)
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be decoded", err.Error(), false, err)
}

// AsStandard returns err as a *StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// HasCode reports whether any StandardError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatasetLoadFailed:
		return 3
	case ErrCodeCacheUnavailable:
		return 1
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}
	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "DATASET") || strings.HasPrefix(codeStr, "CACHE"):
		return "DATASET"
	case strings.Contains(codeStr, "PREFERENCES") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "LISTING") || strings.Contains(codeStr, "RANKING"):
		return "MATCHING"
	default:
		return "OTHER"
	}
}
