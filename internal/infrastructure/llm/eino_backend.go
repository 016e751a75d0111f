package llm

import (
	"context"
	"fmt"
	"strings"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"video-script-api/internal/config"
	"video-script-api/internal/domain/service"
	"video-script-api/pkg/logger"
)

// EinoBackend 基于 Eino ChatModel 的 OpenAI 兼容后端
type EinoBackend struct {
	name      string
	model     string
	chatModel model.BaseChatModel
}

// NewEinoBackend 创建 OpenAI 兼容后端（不发起网络调用）
func NewEinoBackend(ctx context.Context, name string, cfg config.ProviderConfig) (*EinoBackend, error) {
	chatModel, err := openaiopts.NewChatModel(ctx, &openaiopts.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   ptrInt(cfg.MaxTokens),
		Temperature: ptrFloat32(float32(cfg.Temperature)),
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}
	return newEinoBackendWithModel(name, cfg.Model, chatModel), nil
}

func newEinoBackendWithModel(name, modelName string, chatModel model.BaseChatModel) *EinoBackend {
	return &EinoBackend{name: name, model: modelName, chatModel: chatModel}
}

func (b *EinoBackend) Provider() string { return b.name }
func (b *EinoBackend) Model() string    { return b.model }

func (b *EinoBackend) Complete(ctx context.Context, in *service.Completion) (*service.CompletionResult, error) {
	if in == nil {
		return nil, fmt.Errorf("completion input is nil")
	}

	outMsg, err := b.chatModel.Generate(ctx, in.Messages, buildModelOptions(in, true)...)
	if err != nil && in.Schema != nil && isResponseFormatUnsupportedError(err) {
		logger.Warn(ctx, "llm json_schema not supported, fallback to prompt-only",
			"provider", b.name,
			"model", b.model,
			"error", err.Error(),
		)
		outMsg, err = b.chatModel.Generate(ctx, in.Messages, buildModelOptions(in, false)...)
	}
	if err != nil {
		return nil, classifyOpenAIError(b.name, err)
	}

	res := &service.CompletionResult{Model: b.model}
	if outMsg == nil {
		return res, nil
	}
	res.Text = strings.TrimSpace(outMsg.Content)
	if outMsg.ResponseMeta != nil {
		res.FinishReason = outMsg.ResponseMeta.FinishReason
		if outMsg.ResponseMeta.Usage != nil {
			res.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
			res.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
		}
	}
	return res, nil
}

func buildModelOptions(in *service.Completion, enableSchema bool) []model.Option {
	opts := make([]model.Option, 0, 3)
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if enableSchema && in.Schema != nil {
		// 优先使用 response_format=json_schema 强约束；不支持时降级为纯提示词约束
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{
				"type": "json_schema",
				"json_schema": map[string]any{
					"name":   in.SchemaName,
					"strict": false,
					"schema": in.Schema,
				},
			},
		}))
	}
	return opts
}

func ptrFloat32(f float32) *float32 {
	return &f
}

func ptrInt(i int) *int {
	if i <= 0 {
		return nil
	}
	return &i
}
