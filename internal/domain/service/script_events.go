package service

import (
	"context"

	"video-script-api/internal/domain/entity"
)

// ScriptEventPublisher 脚本生成事件发布（port）。发布失败不影响生成结果
type ScriptEventPublisher interface {
	PublishScriptGenerated(ctx context.Context, s *entity.StoredScript) error
}
