package script

import (
	"context"
	stderrors "errors"
	"strings"

	"video-script-api/internal/domain/entity"
	"video-script-api/internal/domain/repository"
	"video-script-api/internal/domain/service"
	"video-script-api/pkg/errors"
	"video-script-api/pkg/logger"
)

// 上游失败对调用方只返回通用提示，细节只写日志
const genericGenerationMessage = "failed to generate video script, please try again later"

// Generator 生成端口，*Client 为默认实现
type Generator interface {
	Generate(ctx context.Context, req *entity.GenerationRequest) (*entity.VideoScriptArtifact, error)
}

// GenerateResult 生成成功的返回值
type GenerateResult struct {
	ID      string                      `json:"id"`
	Content *entity.VideoScriptArtifact `json:"content"`
}

// Service 编排 校验 -> 生成 -> 存储，返回 *errors.AppError 供接口层直接映射
type Service struct {
	generator Generator
	repo      repository.ScriptRepository
	limits    repository.ListLimit
	events    service.ScriptEventPublisher
}

// ServiceOption Service 可选配置
type ServiceOption func(*Service)

// WithEventPublisher 存储成功后发布生成事件
func WithEventPublisher(p service.ScriptEventPublisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

func NewService(generator Generator, repo repository.ScriptRepository, limits repository.ListLimit, opts ...ServiceOption) *Service {
	s := &Service{generator: generator, repo: repo, limits: limits}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle 处理原始请求体
func (s *Service) Handle(ctx context.Context, body []byte) (*GenerateResult, error) {
	req, err := DecodeRequest(body)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return s.Generate(ctx, req)
}

// Generate 处理已校验的请求。生成失败时不写入存储。
// 调用方断开不取消进行中的生成与存储，后端调用时长由后端客户端超时约束。
func (s *Service) Generate(ctx context.Context, req *entity.GenerationRequest) (*GenerateResult, error) {
	ctx = context.WithoutCancel(ctx)
	artifact, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	rec, err := s.repo.Create(ctx, req, artifact)
	if err != nil {
		logger.Error(ctx, "failed to store video script", err, "topic", req.Topic)
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to save video script")
	}
	ctx = logger.WithContext(ctx, logger.ScriptIDKey, rec.ID)
	logger.Info(ctx, "video script generated",
		"scene_count", len(rec.Content.Scenes),
		"video_length", rec.VideoLength,
		"content_style", rec.ContentStyle,
	)
	if s.events != nil {
		if err := s.events.PublishScriptGenerated(ctx, rec); err != nil {
			logger.Warn(ctx, "failed to publish video script event", "error", err.Error())
		}
	}
	return &GenerateResult{ID: rec.ID, Content: rec.Content}, nil
}

// FetchByID 按 ID 查询，不存在时返回 CodeScriptNotFound
func (s *Service) FetchByID(ctx context.Context, id string) (*entity.StoredScript, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New(errors.CodeScriptNotFound, "video script not found")
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.Error(ctx, "failed to load video script", err, "script_id", id)
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to load video script")
	}
	if rec == nil {
		return nil, errors.New(errors.CodeScriptNotFound, "video script not found").WithDetail("id=" + id)
	}
	return rec, nil
}

// FetchRecent 按创建时间倒序返回最近的记录，limit 非正数时取默认值
func (s *Service) FetchRecent(ctx context.Context, limit int) ([]*entity.StoredScript, error) {
	items, err := s.repo.ListRecent(ctx, s.limits.Normalize(limit))
	if err != nil {
		logger.Error(ctx, "failed to list video scripts", err, "limit", limit)
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to list video scripts")
	}
	if items == nil {
		items = []*entity.StoredScript{}
	}
	return items, nil
}

// mapError 将校验/生成失败映射为 AppError，并为每条失败路径记录一行日志
func (s *Service) mapError(ctx context.Context, err error) *errors.AppError {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		logger.Warn(ctx, "invalid generation request", "error", ve.Error())
		return errors.New(errors.CodeInvalidParam, "invalid request").WithFields(ve.Issues)
	}

	var ge *GenerationError
	if !stderrors.As(err, &ge) {
		ge = &GenerationError{Kind: FailureUnknown, Err: err}
	}

	args := []any{"kind", string(ge.Kind)}
	if ge.Raw != "" {
		args = append(args, "raw_response", truncate(ge.Raw, 2000))
	}
	logger.Error(ctx, "video script generation failed", err, args...)

	switch ge.Kind {
	case FailureAuthentication:
		return errors.Wrap(err, errors.CodeLLMAuthFailed,
			"generation backend credential is missing or invalid, check the server configuration")
	case FailureQuotaExceeded:
		return errors.Wrap(err, errors.CodeLLMQuotaExceeded, genericGenerationMessage)
	case FailureRateLimited:
		return errors.Wrap(err, errors.CodeLLMRateLimited, genericGenerationMessage)
	case FailureEmptyResponse:
		return errors.Wrap(err, errors.CodeLLMEmptyResponse, genericGenerationMessage)
	case FailureMalformedResponse:
		return errors.Wrap(err, errors.CodeLLMMalformedResponse, genericGenerationMessage)
	default:
		return errors.Wrap(err, errors.CodeLLMProviderError, genericGenerationMessage)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
