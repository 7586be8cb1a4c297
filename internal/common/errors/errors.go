// Package errors provides the error taxonomy shared by the HTTP surface, the
// CLI and the workflow workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfiguration        ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeUpstream             ErrorCode = "UPSTREAM_ERROR"
	ErrCodeQuotaExhausted       ErrorCode = "QUOTA_EXHAUSTED"
	ErrCodePlanValidationFailed ErrorCode = "PLAN_VALIDATION_FAILED"
	ErrCodeInvalidProfile       ErrorCode = "INVALID_PROFILE"
	ErrCodeExportFailed         ErrorCode = "EXPORT_FAILED"
	ErrCodeNotificationFailed   ErrorCode = "NOTIFICATION_FAILED"
	ErrCodeStorageFailed        ErrorCode = "STORAGE_FAILED"
	ErrCodePlanNotFound         ErrorCode = "PLAN_NOT_FOUND"
	ErrCodeProductNotFound      ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// User-facing messages. These are the only strings shown to end users.
const (
	MsgCredentialInvalid = "AI 服务密钥缺失或无效，请联系管理员检查配置。"
	MsgQuotaExhausted    = "AI 服务额度已用尽，请稍后再试或联系管理员充值。"
	MsgGenerationFailed  = "生成规划时发生错误，请稍后重试。"
	MsgPDFExportFailed   = "PDF导出失败，请尝试截图保存"
	MsgSlideExportFailed = "PPT导出失败，请稍后重试"
	MsgInvalidProfile    = "请完整填写必填信息后再提交。"
	MsgPlanNotFound      = "未找到该规划，请重新生成。"
	MsgProductNotFound   = "未找到该产品。"
	MsgInternal          = "系统繁忙，请稍后重试。"
)

// StandardError represents a structured application error.
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
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e after attaching a metadata entry.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
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

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewConfigurationError reports a missing or rejected generation credential.
func NewConfigurationError(details string) *StandardError {
	e := newError(ErrCodeConfiguration, MsgCredentialInvalid, nil, false)
	e.Details = details
	return e
}

// NewUpstreamError wraps a failed or malformed generation call. Generation
// failures are never retried automatically; the user resubmits.
func NewUpstreamError(err error) *StandardError {
	return newError(ErrCodeUpstream, MsgGenerationFailed, err, false)
}

// NewUpstreamStatusError records the upstream HTTP status in metadata.
func NewUpstreamStatusError(status int, body string) *StandardError {
	e := newError(ErrCodeUpstream, MsgGenerationFailed, fmt.Errorf("upstream status %d: %s", status, truncate(body, 256)), false)
	return e.WithMetadata("status", status)
}

// NewQuotaExhaustedError reports an exhausted upstream balance or rate limit.
func NewQuotaExhaustedError(details string) *StandardError {
	e := newError(ErrCodeQuotaExhausted, MsgQuotaExhausted, nil, false)
	e.Details = details
	return e
}

// NewPlanValidationError reports a parsed body that does not satisfy the plan
// shape. It is shown to users as a generic generation failure.
func NewPlanValidationError(violations []string) *StandardError {
	e := newError(ErrCodePlanValidationFailed, MsgGenerationFailed, nil, false)
	e.Details = strings.Join(violations, "; ")
	return e.WithMetadata("violations", violations)
}

func NewInvalidProfileError(fields []string) *StandardError {
	e := newError(ErrCodeInvalidProfile, MsgInvalidProfile, nil, false)
	e.Details = "invalid fields: " + strings.Join(fields, ", ")
	return e.WithMetadata("fields", fields)
}

// NewExportError wraps a document export failure. format is "pdf" or "pptx".
func NewExportError(format string, err error) *StandardError {
	msg := MsgSlideExportFailed
	if format == "pdf" {
		msg = MsgPDFExportFailed
	}
	return newError(ErrCodeExportFailed, msg, err, true).WithMetadata("format", format)
}

func NewNotificationError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationFailed, "Lead notification delivery failed", err, false).
		WithMetadata("channel", channel)
}

func NewStorageError(op string, err error) *StandardError {
	return newError(ErrCodeStorageFailed, MsgInternal, err, true).WithMetadata("op", op)
}

func NewPlanNotFoundError(id string) *StandardError {
	e := newError(ErrCodePlanNotFound, MsgPlanNotFound, nil, false)
	e.Details = fmt.Sprintf("planId: %s", id)
	return e
}

func NewProductNotFoundError(key string) *StandardError {
	e := newError(ErrCodeProductNotFound, MsgProductNotFound, nil, false)
	e.Details = fmt.Sprintf("product: %s", key)
	return e
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the retry count requested for a failed workflow job.
// Every generation outcome (upstream, quota, validation) gets zero so the
// engine never re-runs a billed call.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStorageFailed:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
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
			"errorCategory":     GetErrorCategory(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err to a StandardError. Anything else becomes an
// INTERNAL_ERROR carrying the original text in Details.
func AsStandardError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, MsgInternal, err, false)
}

// CodeOf returns the code of err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	return AsStandardError(err).Code
}

// UserMessage returns the single display string for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return AsStandardError(err).Message
}

// HTTPStatus maps an error code onto a response status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidProfile:
		return http.StatusBadRequest
	case ErrCodePlanNotFound, ErrCodeProductNotFound:
		return http.StatusNotFound
	case ErrCodeConfiguration:
		return http.StatusServiceUnavailable
	case ErrCodeQuotaExhausted:
		return http.StatusTooManyRequests
	case ErrCodeUpstream, ErrCodePlanValidationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory returns the taxonomy kind of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeConfiguration:
		return "CONFIGURATION"
	case ErrCodeUpstream, ErrCodeQuotaExhausted:
		return "UPSTREAM"
	case ErrCodePlanValidationFailed:
		return "VALIDATION"
	case ErrCodeInvalidProfile:
		return "INPUT"
	case ErrCodeExportFailed:
		return "EXPORT"
	case ErrCodeNotificationFailed:
		return "NOTIFICATION"
	case ErrCodeStorageFailed, ErrCodePlanNotFound:
		return "STORAGE"
	default:
		return "OTHER"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
