package apperrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies an error class independent of its message.
type ErrorCode string

// AppError is the application error carried across service boundaries.
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: httpCode,
	}
}

func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Predefined errors.
var (
	// Auth
	ErrInvalidCredentials = New(CodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
	ErrUnauthorized       = New(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
	ErrForbidden          = New(CodeForbidden, "Access denied", http.StatusForbidden)
	ErrInvalidToken       = New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
	ErrEmailAlreadyExists = New(CodeEmailAlreadyExists, "Email already exists", http.StatusConflict)

	// Users and resources
	ErrUserNotFound     = New(CodeUserNotFound, "User not found", http.StatusNotFound)
	ErrResumeNotFound   = New(CodeResumeNotFound, "Resume not found", http.StatusNotFound)
	ErrTemplateNotFound = New(CodeTemplateNotFound, "Template not found", http.StatusNotFound)

	// Validation
	ErrValidationFailed = New(CodeValidationFailed, "Validation failed", http.StatusBadRequest)
	ErrInvalidAmount    = New(CodeInvalidAmount, "Amount must be greater than zero", http.StatusBadRequest)
	ErrUnknownFeature   = New(CodeUnknownFeature, "Unknown usage feature", http.StatusBadRequest)

	// Discounts
	ErrDiscountNotFound = New(CodeDiscountNotFound, "Discount code not found", http.StatusNotFound)
	ErrDiscountExpired  = New(CodeDiscountExpired, "Discount code has expired", http.StatusBadRequest)
	ErrPlanMismatch     = New(CodePlanMismatch, "Discount code is not valid for this plan", http.StatusBadRequest)
	ErrUsageExceeded    = New(CodeUsageExceeded, "Discount code usage limit reached", http.StatusBadRequest)

	// Subscriptions
	ErrTrialAlreadyActive = New(CodeTrialAlreadyActive, "An active trial already exists", http.StatusConflict)
	ErrLimitReached       = New(CodeLimitReached, "Plan usage limit reached", http.StatusForbidden)

	// Rendering
	ErrRenderFailure       = New(CodeRenderFailure, "Failed to render resume", http.StatusInternalServerError)
	ErrRenderEngineFailure = New(CodeRenderEngineFailure, "PDF engine failed", http.StatusInternalServerError)
	ErrWatermarkFailure    = New(CodeWatermarkFailure, "Failed to watermark document", http.StatusInternalServerError)

	// System
	ErrRateLimited = New(CodeRateLimited, "Too many requests", http.StatusTooManyRequests)
)

// Helpers for errors built with details at the call site.

func ValidationError(details interface{}) *AppError {
	return ErrValidationFailed.WithDetails(details)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "Internal server error", http.StatusInternalServerError)
}

func UpstreamError(service string, err error) *AppError {
	return Wrap(err, CodeUpstreamError, fmt.Sprintf("%s request failed", service), http.StatusInternalServerError)
}

func NewBadRequestError(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}

func NewUnauthorizedError(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func NewConflictError(message string) *AppError {
	return New(CodeEmailAlreadyExists, message, http.StatusConflict)
}
