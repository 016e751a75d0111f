package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"video-script-api/internal/config"
	"video-script-api/internal/domain/service"
)

const (
	defaultGeminiBaseURL    = "https://generativelanguage.googleapis.com/"
	defaultGeminiAPIVersion = "v1beta"
)

// GeminiBackend 通过 genai SDK 调用 Gemini generateContent，使用 responseSchema 约束输出
type GeminiBackend struct {
	name        string
	model       string
	maxTokens   int
	temperature float64
	client      *genai.Client
}

// NewGeminiBackend 创建 Gemini 后端（不发起网络调用）。apiKey 为空时返回错误
func NewGeminiBackend(ctx context.Context, name string, cfg config.ProviderConfig, httpClient *http.Client) (*GeminiBackend, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	baseURL, version := splitGeminiBaseURL(cfg.BaseURL, cfg.APIVersion)
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     strings.TrimSpace(cfg.APIKey),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    baseURL,
			APIVersion: version,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client for %s: %w", name, err)
	}
	return &GeminiBackend{
		name:        name,
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      client,
	}, nil
}

// splitGeminiBaseURL 兼容 base_url 中直接带版本号的写法（.../v1beta）
func splitGeminiBaseURL(baseURL, version string) (string, string) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	version = strings.Trim(strings.TrimSpace(version), "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	} else {
		if i := strings.LastIndexByte(baseURL, '/'); i > len("https://") && strings.HasPrefix(baseURL[i+1:], "v1") {
			if version == "" {
				version = baseURL[i+1:]
			}
			baseURL = baseURL[:i]
		}
		baseURL += "/"
	}
	if version == "" {
		version = defaultGeminiAPIVersion
	}
	return baseURL, version
}

func (b *GeminiBackend) Provider() string { return b.name }
func (b *GeminiBackend) Model() string    { return b.model }

func (b *GeminiBackend) Complete(ctx context.Context, in *service.Completion) (*service.CompletionResult, error) {
	if in == nil {
		return nil, fmt.Errorf("completion input is nil")
	}

	scope := service.GenerationScopeFromContext(ctx)
	attrs := []attribute.KeyValue{
		attribute.String("llm.workflow", scope.Workflow),
		attribute.String("llm.provider", b.name),
		attribute.String("llm.model", b.model),
	}
	if scope.RequestTopic != "" {
		attrs = append(attrs, attribute.String("script.topic", scope.RequestTopic))
	}
	ctx, span := otel.Tracer("llm").Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
	defer span.End()
	start := time.Now()

	contents, cfg := b.buildRequest(in)
	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, cfg)
	span.SetAttributes(attribute.Int64("llm.duration_ms", time.Since(start).Milliseconds()))
	if err != nil {
		be := classifyGeminiError(b.name, err)
		span.RecordError(be)
		span.SetStatus(codes.Error, string(be.Kind))
		return nil, be
	}

	res := &service.CompletionResult{Model: b.model}
	if resp == nil {
		return res, nil
	}
	if resp.ModelVersion != "" {
		res.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		res.PromptTokens = int(u.PromptTokenCount)
		res.CompletionTokens = int(u.CandidatesTokenCount)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		c := resp.Candidates[0]
		res.FinishReason = string(c.FinishReason)
		if c.Content != nil {
			var sb strings.Builder
			for _, p := range c.Content.Parts {
				if p != nil && !p.Thought {
					sb.WriteString(p.Text)
				}
			}
			res.Text = sb.String()
		}
	} else if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		res.FinishReason = string(resp.PromptFeedback.BlockReason)
	}

	span.SetAttributes(
		attribute.String("llm.response_model", res.Model),
		attribute.Int("llm.prompt_tokens", res.PromptTokens),
		attribute.Int("llm.completion_tokens", res.CompletionTokens),
	)
	return res, nil
}

func (b *GeminiBackend) buildRequest(in *service.Completion) ([]*genai.Content, *genai.GenerateContentConfig) {
	var contents []*genai.Content
	var system []*genai.Part
	for _, m := range in.Messages {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			system = append(system, genai.NewPartFromText(m.Content))
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{MaxOutputTokens: int32(b.maxTokens)}
	if len(system) > 0 {
		cfg.SystemInstruction = &genai.Content{Parts: system}
	}
	if in.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*in.MaxTokens)
	}
	temp := float32(b.temperature)
	if in.Temperature != nil {
		temp = *in.Temperature
	}
	cfg.Temperature = &temp
	if in.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGeminiSchema(in.Schema)
	}
	return contents, cfg
}

// toGeminiSchema 将 JSON Schema 转换为 Gemini 的 OpenAPI 子集：
// type 大写，丢弃 additionalProperties 等不支持的关键字，propertyOrdering 按字段声明顺序
func toGeminiSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genai.Type(strings.ToUpper(s.Type)),
		Description: s.Description,
		Format:      s.Format,
		Items:       toGeminiSchema(s.Items),
	}
	if s.Properties != nil && s.Properties.Len() > 0 {
		out.Properties = make(map[string]*genai.Schema, s.Properties.Len())
		for p := s.Properties.Oldest(); p != nil; p = p.Next() {
			out.Properties[p.Key] = toGeminiSchema(p.Value)
			out.PropertyOrdering = append(out.PropertyOrdering, p.Key)
		}
		out.Required = append([]string(nil), s.Required...)
	}
	if s.Minimum != "" {
		if f, err := s.Minimum.Float64(); err == nil {
			out.Minimum = &f
		}
	}
	for _, e := range s.Enum {
		if v, ok := e.(string); ok {
			out.Enum = append(out.Enum, v)
		}
	}
	return out
}
