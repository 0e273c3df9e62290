package apperrors

// Error codes grouped by domain.
const (
	// Auth
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"

	// Validation
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	CodeUnknownFeature   ErrorCode = "UNKNOWN_FEATURE"

	// Resources
	CodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	CodeResumeNotFound   ErrorCode = "RESUME_NOT_FOUND"
	CodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	CodeDiscountNotFound ErrorCode = "DISCOUNT_NOT_FOUND"
	CodeNotFound         ErrorCode = "NOT_FOUND"

	// Discounts
	CodeDiscountExpired ErrorCode = "DISCOUNT_EXPIRED"
	CodePlanMismatch    ErrorCode = "PLAN_MISMATCH"
	CodeUsageExceeded   ErrorCode = "USAGE_EXCEEDED"

	// Subscriptions
	CodeTrialAlreadyActive ErrorCode = "TRIAL_ALREADY_ACTIVE"
	CodeLimitReached       ErrorCode = "LIMIT_REACHED"
	CodeEmailAlreadyExists ErrorCode = "EMAIL_ALREADY_EXISTS"

	// Rendering
	CodeRenderFailure       ErrorCode = "RENDER_FAILURE"
	CodeRenderEngineFailure ErrorCode = "RENDER_ENGINE_FAILURE"
	CodeWatermarkFailure    ErrorCode = "WATERMARK_FAILURE"

	// System
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeUpstreamError ErrorCode = "UPSTREAM_SERVICE_ERROR"
	CodeRateLimited   ErrorCode = "RATE_LIMITED"
)
