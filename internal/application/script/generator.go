package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"video-script-api/internal/domain/entity"
	"video-script-api/internal/domain/service"
	workflowprompt "video-script-api/internal/workflow/prompt"
	"video-script-api/pkg/logger"
	"video-script-api/pkg/metrics"
	"video-script-api/pkg/tracer"
)

const workflowName = "video_script_generate"

// BackendFactory 按提供商名称提供生成后端（port）
type BackendFactory interface {
	// Resolve 返回实际使用的提供商名称（name 为空时取默认）以及凭证是否已配置，不发起网络调用
	Resolve(name string) (provider string, hasCredential bool, err error)
	// Get 返回提供商对应的后端实例
	Get(ctx context.Context, name string) (service.ContentBackend, error)
}

// Client 视频脚本生成客户端：渲染提示词、调用一次后端、解析并校验输出。
// 不做重试，也不缓存结果。
type Client struct {
	factory  BackendFactory
	prompts  *workflowprompt.Registry
	usage    service.LLMUsageRecorder
	provider string

	chainOnce sync.Once
	chain     compose.Runnable[*generateState, *entity.VideoScriptArtifact]
	chainErr  error
}

// ClientOption Client 可选配置
type ClientOption func(*Client)

// WithProvider 指定提供商，留空使用默认提供商
func WithProvider(name string) ClientOption {
	return func(c *Client) { c.provider = strings.TrimSpace(name) }
}

// WithUsageRecorder 注入用量记录器
func WithUsageRecorder(r service.LLMUsageRecorder) ClientOption {
	return func(c *Client) { c.usage = r }
}

// WithPromptRegistry 替换提示词注册表
func WithPromptRegistry(r *workflowprompt.Registry) ClientOption {
	return func(c *Client) { c.prompts = r }
}

func NewClient(factory BackendFactory, opts ...ClientOption) *Client {
	c := &Client{
		factory: factory,
		prompts: workflowprompt.NewRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateState struct {
	req      *entity.GenerationRequest
	provider string
	backend  service.ContentBackend
	messages []*schema.Message
	result   *service.CompletionResult
	failure  *GenerationError
}

func (st *generateState) fail(ge *GenerationError) error {
	st.failure = ge
	return ge
}

// Generate 生成视频脚本。失败时返回 *GenerationError
func (c *Client) Generate(ctx context.Context, req *entity.GenerationRequest) (*entity.VideoScriptArtifact, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "script.generate",
		trace.WithAttributes(attribute.Int("script.topic_length", len(topicOf(req)))),
	)
	defer span.End()

	artifact, err := c.generate(ctx, req)

	status := "success"
	if err != nil {
		status = string(FailureKindOf(err))
		tracer.Fail(span, err)
	} else {
		metrics.ScriptSceneCount.Observe(float64(len(artifact.Scenes)))
		span.SetAttributes(attribute.Int("script.scene_count", len(artifact.Scenes)))
	}
	metrics.ScriptGenerationTotal.WithLabelValues(status).Inc()
	metrics.ScriptGenerationDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return artifact, err
}

func (c *Client) generate(ctx context.Context, req *entity.GenerationRequest) (*entity.VideoScriptArtifact, error) {
	if req == nil {
		return nil, newGenerationError(FailureUnknown, "request is nil", nil)
	}
	if c == nil || c.factory == nil {
		return nil, newGenerationError(FailureUnknown, "generation backend not configured", nil)
	}

	// 凭证缺失时立即失败，不发起任何调用
	provider, hasCredential, err := c.factory.Resolve(c.provider)
	if err != nil {
		return nil, newGenerationError(FailureUnknown, "generation backend not configured", err)
	}
	if !hasCredential {
		return nil, newGenerationError(FailureAuthentication, fmt.Sprintf("credential for %s backend is not configured", provider), nil)
	}

	chain, err := c.getChain()
	if err != nil {
		return nil, newGenerationError(FailureUnknown, "failed to build generation chain", err)
	}

	ctx = service.WithGenerationScope(ctx, service.GenerationScope{
		Workflow:     workflowName,
		Provider:     provider,
		RequestTopic: req.Topic,
	})
	st := &generateState{req: req, provider: provider}
	artifact, err := chain.Invoke(ctx, st)
	if err != nil {
		if st.failure != nil {
			return nil, st.failure
		}
		var ge *GenerationError
		if errors.As(err, &ge) {
			return nil, ge
		}
		return nil, newGenerationError(FailureUnknown, "generation chain failed", err)
	}
	return artifact, nil
}

func (c *Client) getChain() (compose.Runnable[*generateState, *entity.VideoScriptArtifact], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *Client) buildChain(ctx context.Context) (compose.Runnable[*generateState, *entity.VideoScriptArtifact], error) {
	chain := compose.NewChain[*generateState, *entity.VideoScriptArtifact]()

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *generateState) (*generateState, error) {
			if st == nil || st.req == nil {
				return nil, fmt.Errorf("state is nil")
			}
			msgs, err := c.formatMessages(ctx, st.req)
			if err != nil {
				return nil, st.fail(newGenerationError(FailureUnknown, "failed to render prompt", err))
			}
			st.messages = msgs
			return st, nil
		}),
		compose.WithNodeName("video_script.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *generateState) (*generateState, error) {
			backend, err := c.factory.Get(ctx, st.provider)
			if err != nil {
				return nil, st.fail(newGenerationError(FailureUnknown, "failed to create generation backend", err))
			}
			st.backend = backend

			started := time.Now()
			res, err := backend.Complete(ctx, &service.Completion{
				Messages:   st.messages,
				SchemaName: ArtifactSchemaName,
				Schema:     ArtifactJSONSchema(),
			})
			c.recordUsage(ctx, st, res, err, time.Since(started))
			if err != nil {
				return nil, st.fail(classifyBackendError(err))
			}
			if res == nil {
				return nil, st.fail(newGenerationError(FailureEmptyResponse, "backend returned no result", nil))
			}
			st.result = res
			return st, nil
		}),
		compose.WithNodeName("video_script.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *generateState) (*entity.VideoScriptArtifact, error) {
			artifact, err := ParseArtifact(st.result.Text)
			if err != nil {
				var ge *GenerationError
				if errors.As(err, &ge) {
					return nil, st.fail(ge)
				}
				return nil, st.fail(newGenerationError(FailureMalformedResponse, "failed to parse response", err))
			}
			return artifact, nil
		}),
		compose.WithNodeName("video_script.finalize"),
	)

	return chain.Compile(ctx, compose.WithGraphName("video_script_generate_chain"))
}

func (c *Client) formatMessages(ctx context.Context, req *entity.GenerationRequest) ([]*schema.Message, error) {
	tpl, err := c.prompts.ChatTemplate(workflowprompt.PromptVideoScriptV1)
	if err != nil {
		return nil, err
	}
	audience := strings.TrimSpace(req.TargetAudience)
	if audience == "" {
		audience = entity.DefaultTargetAudience
	}
	vars := map[string]any{
		"topic":            strings.TrimSpace(req.Topic),
		"video_length":     orDefault(req.VideoLength, entity.DefaultVideoLength),
		"content_style":    orDefault(req.ContentStyle, entity.DefaultContentStyle),
		"target_audience":  audience,
		"output_structure": OutputStructure(),
	}
	return tpl.Format(ctx, vars)
}

func (c *Client) recordUsage(ctx context.Context, st *generateState, res *service.CompletionResult, callErr error, d time.Duration) {
	if c.usage == nil {
		return
	}
	in := service.LLMUsageInput{
		Workflow:   workflowName,
		Provider:   st.provider,
		Status:     "success",
		DurationMs: int(d.Milliseconds()),
	}
	if st.backend != nil {
		in.Model = st.backend.Model()
	}
	if callErr != nil {
		in.Status = "error"
	}
	if res != nil {
		if res.Model != "" {
			in.Model = res.Model
		}
		in.PromptTokens = res.PromptTokens
		in.CompletionTokens = res.CompletionTokens
	}
	if err := c.usage.Record(ctx, in); err != nil {
		logger.Warn(ctx, "failed to record llm usage", "error", err.Error())
	}
}

// classifyBackendError 依据后端错误的结构化字段归类
func classifyBackendError(err error) *GenerationError {
	var be *service.BackendError
	if errors.As(err, &be) {
		switch be.Kind {
		case service.BackendErrorAuthentication:
			return newGenerationError(FailureAuthentication, "backend rejected the credential", err)
		case service.BackendErrorQuotaExceeded:
			return newGenerationError(FailureQuotaExceeded, "backend quota exceeded", err)
		case service.BackendErrorRateLimited:
			return newGenerationError(FailureRateLimited, "backend rate limit reached", err)
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newGenerationError(FailureUnknown, "backend call timed out", err)
	case errors.Is(err, context.Canceled):
		return newGenerationError(FailureUnknown, "backend call canceled", err)
	}
	return newGenerationError(FailureUnknown, "backend call failed", err)
}

// FailureKindOf 返回错误对应的失败类别
func FailureKindOf(err error) FailureKind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return FailureInvalidRequest
	}
	return FailureUnknown
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}

func topicOf(req *entity.GenerationRequest) string {
	if req == nil {
		return ""
	}
	return req.Topic
}
