package service

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"
)

// Completion 一次结构化生成调用的输入。
// Messages 为渲染后的提示词；Schema 为期望输出的 JSON Schema，后端只读不改。
type Completion struct {
	Messages   []*schema.Message
	SchemaName string
	Schema     *jsonschema.Schema

	Temperature *float32
	MaxTokens   *int
}

// CompletionResult 后端返回的原始文本及用量信息
type CompletionResult struct {
	Text             string
	Model            string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// ContentBackend 生成式模型后端（port）。实现必须是单次同步调用，不做内部重试。
type ContentBackend interface {
	// Provider 返回提供商名称（用于日志和指标）
	Provider() string
	// Model 返回默认模型名
	Model() string
	// Complete 发起一次调用。失败时应返回 *BackendError 以便上层按类型映射
	Complete(ctx context.Context, in *Completion) (*CompletionResult, error)
}

// BackendErrorKind 后端失败类别，由后端错误响应中的结构化字段决定
type BackendErrorKind string

const (
	BackendErrorAuthentication BackendErrorKind = "authentication"
	BackendErrorQuotaExceeded  BackendErrorKind = "quota_exceeded"
	BackendErrorRateLimited    BackendErrorKind = "rate_limited"
	BackendErrorUnknown        BackendErrorKind = "unknown"
)

// BackendError 后端调用失败
type BackendError struct {
	Kind       BackendErrorKind
	Provider   string
	StatusCode int
	// Code 后端错误码（如 OpenAI 的 insufficient_quota）
	Code string
	// Status 后端状态字符串（如 Gemini 的 RESOURCE_EXHAUSTED）
	Status  string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s backend error (%s, http %d): %s", e.Provider, e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s backend error (%s): %s", e.Provider, e.Kind, msg)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
