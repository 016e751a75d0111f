package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/meguminnnnnnnnn/go-openai"
	"google.golang.org/genai"

	"video-script-api/internal/domain/service"
)

const (
	googleErrorInfoType    = "type.googleapis.com/google.rpc.ErrorInfo"
	googleQuotaFailureType = "type.googleapis.com/google.rpc.QuotaFailure"
)

// classifyGeminiError 依据 genai.APIError 的 HTTP 状态码、google.rpc.Status 与 details 中的结构化字段归类
func classifyGeminiError(provider string, err error) *service.BackendError {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return &service.BackendError{Kind: service.BackendErrorUnknown, Provider: provider, Message: "gemini request failed", Err: err}
	}

	be := &service.BackendError{
		Kind:       service.BackendErrorUnknown,
		Provider:   provider,
		StatusCode: apiErr.Code,
		Status:     apiErr.Status,
		Message:    strings.TrimSpace(apiErr.Message),
		Err:        err,
	}

	var reason string
	var quotaIDs []string
	for _, d := range apiErr.Details {
		switch d["@type"] {
		case googleErrorInfoType:
			reason, _ = d["reason"].(string)
		case googleQuotaFailureType:
			violations, _ := d["violations"].([]any)
			for _, v := range violations {
				if vm, ok := v.(map[string]any); ok {
					if id, ok := vm["quotaId"].(string); ok {
						quotaIDs = append(quotaIDs, id)
					}
				}
			}
		}
	}
	be.Code = reason

	switch {
	case reason == "API_KEY_INVALID" || reason == "API_KEY_EXPIRED" || reason == "API_KEY_SERVICE_BLOCKED":
		be.Kind = service.BackendErrorAuthentication
	case apiErr.Status == "UNAUTHENTICATED" || apiErr.Status == "PERMISSION_DENIED":
		be.Kind = service.BackendErrorAuthentication
	case reason == "BILLING_DISABLED":
		be.Kind = service.BackendErrorQuotaExceeded
	case apiErr.Status == "RESOURCE_EXHAUSTED" || apiErr.Code == http.StatusTooManyRequests:
		be.Kind = service.BackendErrorRateLimited
		for _, id := range quotaIDs {
			// 按天计的配额耗尽不会在短时间内恢复
			if strings.Contains(id, "PerDay") {
				be.Kind = service.BackendErrorQuotaExceeded
				be.Code = id
				break
			}
		}
	default:
		be.Kind = kindFromStatusCode(apiErr.Code)
	}
	return be
}

func kindFromStatusCode(statusCode int) service.BackendErrorKind {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return service.BackendErrorAuthentication
	case http.StatusPaymentRequired:
		return service.BackendErrorQuotaExceeded
	case http.StatusTooManyRequests:
		return service.BackendErrorRateLimited
	default:
		return service.BackendErrorUnknown
	}
}

// classifyOpenAIError 依据 OpenAI 兼容接口返回的 APIError/RequestError 归类
func classifyOpenAIError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var be *service.BackendError
	if errors.As(err, &be) {
		return be
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.Code != nil {
			code = fmt.Sprint(apiErr.Code)
		}
		out := &service.BackendError{
			Kind:       kindFromStatusCode(apiErr.HTTPStatusCode),
			Provider:   provider,
			StatusCode: apiErr.HTTPStatusCode,
			Code:       code,
			Status:     apiErr.Type,
			Message:    apiErr.Message,
			Err:        err,
		}
		switch {
		case code == "invalid_api_key":
			out.Kind = service.BackendErrorAuthentication
		case code == "insufficient_quota" || apiErr.Type == "insufficient_quota":
			out.Kind = service.BackendErrorQuotaExceeded
		case code == "rate_limit_exceeded":
			out.Kind = service.BackendErrorRateLimited
		}
		return out
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &service.BackendError{
			Kind:       kindFromStatusCode(reqErr.HTTPStatusCode),
			Provider:   provider,
			StatusCode: reqErr.HTTPStatusCode,
			Err:        err,
		}
	}

	return &service.BackendError{Kind: service.BackendErrorUnknown, Provider: provider, Err: err}
}

// isResponseFormatUnsupportedError 判断是否为后端不支持 response_format=json_schema 导致的 400
func isResponseFormatUnsupportedError(err error) bool {
	var apiErr *goopenai.APIError
	if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode != http.StatusBadRequest {
		return false
	}
	if apiErr.Param != nil {
		p := *apiErr.Param
		if strings.HasPrefix(p, "response_format") {
			return true
		}
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "response_format") || strings.Contains(msg, "json_schema")
}
