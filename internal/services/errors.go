package services

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidation       ErrorCode = "VALIDATION_ERROR"
	CodeConfiguration    ErrorCode = "CONFIGURATION_ERROR"
	CodeTimeout          ErrorCode = "TIMEOUT"
	CodeInvalidJSON      ErrorCode = "INVALID_JSON"
	CodeSchemaViolation  ErrorCode = "SCHEMA_VIOLATION"
	CodeAIAPI            ErrorCode = "AI_API_ERROR"
	CodeEvaluationFailed ErrorCode = "EVALUATION_FAILED"
)

// EvalError is the terminal error of an evaluation run. Every failure path
// carries a code so callers can distinguish "backend misbehaved" from
// "backend too slow" from data problems.
type EvalError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *EvalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

func newEvalError(code ErrorCode, message string) *EvalError {
	return &EvalError{Code: code, Message: message}
}

func wrapEvalError(code ErrorCode, message string, err error) *EvalError {
	return &EvalError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the error code, defaulting to EVALUATION_FAILED for
// anything untyped.
func CodeOf(err error) ErrorCode {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Code
	}
	return CodeEvaluationFailed
}

// MessageOf extracts the caller-facing message of an error.
func MessageOf(err error) string {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Message
	}
	return "evaluation failed"
}

// HTTPStatusOf maps an error code to its HTTP status.
func HTTPStatusOf(code ErrorCode) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
