package llm

import (
	"context"
	"strings"

	"video-script-api/internal/domain/service"
	"video-script-api/pkg/metrics"
)

// MetricsUsageRecorder 将 LLM 用量写入 Prometheus 指标
type MetricsUsageRecorder struct{}

func NewMetricsUsageRecorder() *MetricsUsageRecorder {
	return &MetricsUsageRecorder{}
}

var _ service.LLMUsageRecorder = (*MetricsUsageRecorder)(nil)

func (r *MetricsUsageRecorder) Record(ctx context.Context, in service.LLMUsageInput) error {
	provider := labelOr(in.Provider, "unknown")
	modelName := labelOr(in.Model, "unknown")
	status := labelOr(in.Status, "unknown")

	metrics.LLMCallTotal.WithLabelValues(provider, modelName, status).Inc()
	if in.DurationMs > 0 {
		metrics.LLMCallDuration.WithLabelValues(provider, modelName).Observe(float64(in.DurationMs) / 1000)
	}
	if in.PromptTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "prompt").Add(float64(in.PromptTokens))
	}
	if in.CompletionTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "completion").Add(float64(in.CompletionTokens))
	}
	return nil
}

func labelOr(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
