package script

import (
	"fmt"
	"strings"

	"video-script-api/pkg/errors"
)

// FailureKind 生成流程的失败类别
type FailureKind string

const (
	FailureInvalidRequest    FailureKind = "invalid_request"
	FailureAuthentication    FailureKind = "authentication_failure"
	FailureQuotaExceeded     FailureKind = "quota_exceeded"
	FailureRateLimited       FailureKind = "rate_limited"
	FailureEmptyResponse     FailureKind = "upstream_empty_response"
	FailureMalformedResponse FailureKind = "upstream_malformed_response"
	FailureUnknown           FailureKind = "upstream_unknown_failure"
)

// ValidationError 结构校验失败，Issues 按字段路径列出
type ValidationError struct {
	Target string
	Issues []errors.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("%s validation failed", e.Target)
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Message)
	}
	return fmt.Sprintf("%s validation failed: %s", e.Target, strings.Join(parts, "; "))
}

// GenerationError 生成失败。Raw 为后端原始输出（仅用于服务端日志）
type GenerationError struct {
	Kind    FailureKind
	Message string
	Raw     string
	Err     error
}

func (e *GenerationError) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return string(e.Kind)
	}
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func newGenerationError(kind FailureKind, msg string, err error) *GenerationError {
	return &GenerationError{Kind: kind, Message: msg, Err: err}
}
